// Package update implements the per-tick dispatcher of spec.md §4.E: tick
// ordering, PlanMove, energy/non-energy collision handling, and the
// Game-of-Life second pass. It is built around a Sim struct that wires
// together grid.Pool, grid.Walls, fields.Air, fields.Gravity and
// element.Registry and implements element.Context, the dependency-inversion
// seam those packages declare to stay import-cycle-free from this one.
package update

import (
	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/fields"
	"github.com/pthm-cable/cellsand/grid"
)

// Sim owns one running simulation's full mutable state and is the thing a
// frontend (package engine, cmd/sandbox) drives one tick at a time.
type Sim struct {
	Cfg *config.Sim

	pool  *grid.Pool
	walls *grid.Walls
	air   *fields.Air
	grav  *fields.Gravity
	reg   *element.Registry

	tick             int64
	nextToUpdate     int // resumable scan cursor (spec.md §4.E "debug_nextToUpdate")
	scanning         int // pool index the current Update callback belongs to
	stackingOverflow map[[2]int]int

	// externalGravity, when set, tells Step to skip its own synchronous
	// Gravity().Solve() call because package engine's dedicated gravity
	// goroutine (spec.md §4.C, §5) is driving the solver with the
	// intentional one-tick lag instead. Headless callers (tests, cmd/tune)
	// leave this false and get the synchronous fallback the spec permits.
	externalGravity bool

	rngSeed int64

	signs    *grid.Signs
	portals  *grid.Portals
	wireless *grid.Wireless
	stickmen *grid.Stickmen
	author   string
}

// NewSim constructs a Sim over a freshly allocated pool/walls/air/gravity
// set sized from cfg.Applied.Grid, following the config package's two-phase
// Applied/Pending pattern: grid size is fixed for Sim's lifetime.
func NewSim(cfg *config.Sim, reg *element.Registry, seed int64) *Sim {
	g := cfg.Applied.Grid
	capacity := g.Cx * g.Cy // one non-energy particle per cell is the ceiling
	pool := grid.NewPool(capacity, g.Cx*g.Cell, g.Cy*g.Cell, reg, cfg.Applied.Solver.StackingThreshold)
	walls := grid.NewWalls(g.Cx, g.Cy)
	walls.RecomputeGravMask()
	air := fields.NewAir(g.Cx, g.Cy, cfg.Applied.Runtime.AmbientTemp)
	applySolverConstants(air, cfg.Applied.Solver)
	grav := fields.NewGravity(g.Cx, g.Cy, float32(g.Cell), walls.GravMask)

	return &Sim{
		Cfg:              cfg,
		pool:             pool,
		walls:            walls,
		air:              air,
		grav:             grav,
		reg:              reg,
		stackingOverflow: make(map[[2]int]int),
		rngSeed:          seed,
	}
}

// --- element.Context ---

func (s *Sim) Pool() *grid.Pool         { return s.pool }
func (s *Sim) Walls() *grid.Walls       { return s.walls }
func (s *Sim) Tick() int64              { return s.tick }
func (s *Sim) Registry() *element.Registry { return s.reg }
func (s *Sim) Air() *fields.Air         { return s.air }
func (s *Sim) Gravity() *fields.Gravity { return s.grav }

// NextToUpdate exposes the resumable scan cursor (spec.md §4.E
// "debug_nextToUpdate") for save/snapshot round-tripping.
func (s *Sim) NextToUpdate() int     { return s.nextToUpdate }
func (s *Sim) SetNextToUpdate(i int) { s.nextToUpdate = i }
func (s *Sim) SetTick(t int64)       { s.tick = t }
func (s *Sim) RNGSeed() int64        { return s.rngSeed }
func (s *Sim) SetRNGSeed(seed int64) { s.rngSeed = seed }

// SetExternalGravityDriver tells Step whether a caller (package engine) is
// running the Newtonian gravity solver on its own dedicated goroutine with
// the spec.md §4.C/§5 one-tick lag. When true, Step leaves Gravity()'s mass
// and force fields untouched; the driver is responsible for calling Solve
// and publishing the result before the next Step so PlanMove's read of
// ForceX/ForceY sees the previous tick's solution.
func (s *Sim) SetExternalGravityDriver(external bool) { s.externalGravity = external }

// Rand returns a per-particle RNG seeded from the shared tick state; calls
// from inside an Update callback always resolve to the particle currently
// being scanned, via particleRand, so two calls for the same particle in
// the same tick draw the same sequence regardless of callback structure.
func (s *Sim) Rand() element.Rand { return s.particleRand(s.scanning) }

func (s *Sim) particleRand(index int) element.Rand {
	return newParticleRand(s.rngSeed^s.tick, index)
}

func (s *Sim) CreatePart(hint, x, y int, t grid.ElementID) (int, error) {
	e := s.reg.Get(t)
	temp := s.Cfg.Applied.Runtime.AmbientTemp
	if e != nil {
		temp = e.DefaultTemp
	}
	if e != nil && e.Callbacks.CreateAllowed != nil && !e.Callbacks.CreateAllowed(s, -1, x, y, t) {
		return -1, grid.PoolExhausted{}
	}
	idx, err := s.pool.CreatePart(hint, x, y, t, temp)
	if err != nil {
		return idx, err
	}
	if e != nil && e.Callbacks.Create != nil {
		e.Callbacks.Create(s, idx, x, y, t, 0)
	}
	return idx, nil
}

func (s *Sim) KillPart(i int) { s.pool.KillPart(i) }

func (s *Sim) ChangeType(i, x, y int, to grid.ElementID) bool {
	from := s.pool.Particle(i).Type
	ok := s.pool.PartChangeType(i, x, y, to, s.changeAllowed)
	if ok {
		if e := s.reg.Get(to); e != nil && e.Callbacks.ChangeType != nil {
			e.Callbacks.ChangeType(s, i, x, y, from, to)
		}
	}
	return ok
}

func (s *Sim) changeAllowed(i, x, y int, from, to grid.ElementID) bool {
	e := s.reg.Get(to)
	if e == nil || e.Callbacks.CreateAllowed == nil {
		return true
	}
	return e.Callbacks.CreateAllowed(s, i, x, y, to)
}

// applySolverConstants overrides Air's default advection/loss constants
// with the user/cmd-tune-configured values (config.Solver exists precisely
// so cmd/tune's optimizer search can move these; NewAir's defaults are just
// the spec.md §6 reference values).
func applySolverConstants(air *fields.Air, s config.Solver) {
	if s.AirVadv != 0 {
		air.Constants.Vadv = s.AirVadv
	}
	if s.AirPLoss != 0 {
		air.Constants.PLoss = s.AirPLoss
	}
	if s.AirTStepP != 0 {
		air.Constants.TStepP = s.AirTStepP
	}
	if s.AirVLoss != 0 {
		air.Constants.VLoss = s.AirVLoss
	}
	if s.AirTStepV != 0 {
		air.Constants.TStepV = s.AirTStepV
	}
}

var _ element.Context = (*Sim)(nil)
