package update

import (
	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/fields"
	"github.com/pthm-cable/cellsand/grid"
)

// StackingSweepPeriod default cadence, overridable via
// config.Solver.StackingSweepPeriod (spec.md §4.E "Stacking sweep at
// configurable cadence (every N ticks, default 20)").
const defaultStackingSweepPeriod = 20

// ambientHeatDiffusion is the decay-toward-ambient rate used by the air
// solver's fifth step (fields.Air.Step's diffusion argument); spec.md §6
// doesn't number this one either, so it's picked small enough that a
// heated cell cools back to ambient over tens of ticks rather than one.
const ambientHeatDiffusion = 0.01

func airModeFrom(m config.AirMode) fields.AirMode {
	switch m {
	case config.AirPressureOff:
		return fields.AirPressureOff
	case config.AirVelocityOff:
		return fields.AirVelocityOff
	case config.AirOff:
		return fields.AirOff
	case config.AirNoUpdate:
		return fields.AirNoUpdate
	default:
		return fields.AirOn
	}
}

func edgeModeFrom(m config.EdgeMode) fields.EdgeMode {
	switch m {
	case config.EdgeSolid:
		return fields.EdgeSolid
	case config.EdgeLoop:
		return fields.EdgeLoop
	default:
		return fields.EdgeVoid
	}
}

// Step runs one full tick and returns the new tick counter, in the order
// spec.md §4.E prescribes: before-sim hook, gravity handoff, air solve,
// particle update scan, stacking sweep, after-sim hook. Named distinctly
// from the Context.Tick() read-only accessor, following the same split the
// teacher's Game keeps between state accessors and its Update method.
func (s *Sim) Step() int64 {
	s.beforeSim()

	if s.Cfg.Applied.Runtime.NewtonianGravity && !s.externalGravity {
		s.grav.Solve()
	}

	rt := s.Cfg.Applied.Runtime
	airMode := airModeFrom(rt.AirMode)
	edgeMode := edgeModeFrom(rt.EdgeMode)
	s.air.Step(airMode, edgeMode, s.airBlocked, rt.AmbientTemp, rt.AmbientHeat, ambientHeatDiffusion)

	s.updateParticles()

	period := s.Cfg.Applied.Solver.StackingSweepPeriod
	if period <= 0 {
		period = defaultStackingSweepPeriod
	}
	if s.tick%int64(period) == 0 {
		s.runStackingSweep()
	}

	s.afterSim()

	s.tick++
	return s.tick
}

func (s *Sim) beforeSim() {
	s.walls.EmapTick()
	s.ensureWorldTables()
	s.wireless.Clear()
}

func (s *Sim) afterSim() {
	s.runGameOfLife()
}

func (s *Sim) airBlocked(cx, cy int) bool { return s.walls.AirBlocked(cx, cy) }

// updateParticles implements "scan particles in order of increasing pool
// index ... for each live particle call PlanMove ... and the element's
// Update callback" (spec.md §4.E step 4). Each particle's Update runs at
// most once per tick even if PlanMove or an earlier particle's callback
// moved it, since the scan only reads pool index, not position.
func (s *Sim) updateParticles() {
	last := s.pool.LastActiveIndex()
	for i := s.nextToUpdate; i <= last; i++ {
		s.scanning = i
		p := s.pool.Particle(i)
		if p.IsVacant() {
			continue
		}
		s.stepOneParticle(i, p)
	}
	s.nextToUpdate = 0
}

// stepOneParticle runs PlanMove, the energy-collision check, the
// pressure/temperature transition check, and the element's Update callback
// for a single live particle — the per-particle body of spec.md §4.E step 4,
// shared by the normal full-tick scan and DebugStepParticles.
func (s *Sim) stepOneParticle(i int, p *grid.Particle) {
	fromX, fromY := p.PX(), p.PY()
	plan := s.planMove(i)
	p.VX, p.VY = plan.VX, plan.VY

	if fromX != plan.ClearX || fromY != plan.ClearY {
		s.pool.DoMove(i, fromX, fromY, plan.ClearX, plan.ClearY, s.wallAt())
	}

	nx, ny := p.PX(), p.PY()
	s.applyEnergyCollision(i, fromX, fromY, nx, ny)

	e := s.reg.Get(p.Type)
	if e == nil {
		return
	}

	ambient := s.tempAt(nx, ny)
	p.Temp += (ambient - p.Temp) * e.HeatConductivity

	if tr := e.CheckTransition(s.pressureAt(nx, ny), p.Temp); tr != nil {
		s.applyTransition(i, nx, ny, tr)
		return // a transition replaces the particle; its own Update does not also run this tick
	}

	if e.Callbacks.Update != nil {
		surroundings := s.surroundingsAt(nx, ny)
		result := e.Callbacks.Update(s, i, nx, ny, surroundings)
		if result.DestroySelf {
			s.pool.KillPart(i)
		}
	}
}

// DebugStepParticles runs the particle-update scan for at most n particles
// starting from the resumable cursor spec.md §4.E calls debug_nextToUpdate,
// without running the rest of Step's tick order. Intended for cmd/tune and
// interactive single-stepping, not the normal per-frame path.
func (s *Sim) DebugStepParticles(n int) {
	last := s.pool.LastActiveIndex()
	end := s.nextToUpdate + n
	if end > last+1 {
		end = last + 1
	}
	for i := s.nextToUpdate; i < end; i++ {
		s.scanning = i
		p := s.pool.Particle(i)
		if p.IsVacant() {
			continue
		}
		s.stepOneParticle(i, p)
	}
	s.nextToUpdate = end
	if s.nextToUpdate > last {
		s.nextToUpdate = 0
	}
}

func (s *Sim) applyTransition(i, x, y int, tr *element.Transition) {
	switch tr.To {
	case element.TransitionDestroy:
		s.pool.KillPart(i)
	case element.TransitionNone, element.TransitionSpecial:
		// TransitionSpecial defers to the element's own Update callback,
		// which already ran via the normal path below when no transition
		// fired; a transition entry set to Special with no further handling
		// is a no-op by convention.
	default:
		s.ChangeType(i, x, y, tr.To)
	}
}

func (s *Sim) pressureAt(x, y int) float32 {
	cx, cy := x/s.cellSize(), y/s.cellSize()
	if !s.air.InBounds(cx, cy) {
		return 0
	}
	return s.air.Pv[cy*s.air.Cx+cx]
}

func (s *Sim) tempAt(x, y int) float32 {
	cx, cy := x/s.cellSize(), y/s.cellSize()
	if !s.air.InBounds(cx, cy) {
		return s.Cfg.Applied.Runtime.AmbientTemp
	}
	return s.air.Hv[cy*s.air.Cx+cx]
}

func (s *Sim) surroundingsAt(x, y int) element.Surroundings {
	cx, cy := x/s.cellSize(), y/s.cellSize()
	sur := element.Surroundings{
		Pressure:    s.pressureAt(x, y),
		AmbientTemp: s.tempAt(x, y),
	}
	if s.air.InBounds(cx, cy) {
		idx := cy*s.air.Cx + cx
		sur.VelX, sur.VelY = s.air.Vx[idx], s.air.Vy[idx]
	}
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nt, nidx, ok := s.pool.PmapAt(x+dx, y+dy)
			sur.Neighbors8[n] = element.NeighborCell{Type: nt, Index: nidx, Present: ok}
			n++
		}
	}
	return sur
}

// MarkStackingOverflow records that a bulk edit (package edit) created more
// than one non-energy occupant at (x,y), bypassing CreatePart's usual
// single-owner-per-cell invariant. The next stacking sweep will resolve it.
func (s *Sim) MarkStackingOverflow(x, y int) {
	s.stackingOverflow[[2]int{x, y}]++
}

func (s *Sim) runStackingSweep() {
	if len(s.stackingOverflow) == 0 {
		return
	}
	exploded := s.pool.StackingSweep(s.stackingOverflow)
	for _, cell := range exploded {
		x, y := cell%s.pool.X, cell/s.pool.X
		s.CreatePart(-2, x, y, element.IDVibr)
	}
	s.stackingOverflow = make(map[[2]int]int)
}
