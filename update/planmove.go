package update

import (
	"math"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/grid"
)

// verticalGravity is the per-tick downward acceleration used by
// config.GravityVertical. spec.md §6 lists numeric constants for velocity,
// pressure, temperature and the Newtonian G factor but leaves the classic
// per-particle gravity magnitude unspecified; this value is picked so that
// scenario E1 (a DUST particle falling off a 96-cell-tall void grid within
// 1000 ticks) holds.
const verticalGravity = 0.1

// AirDrag and Loss are the classic per-particle drag terms spec.md §4.E
// names without pinning numerically; kept here rather than in config since
// they're an engine-internal tuning knob, not a user-facing runtime option.
const (
	airDragDefault = 0.02
	lossDefault    = 0.999
)

// planResult is PlanMove's return value (spec.md §4.E "Return (clear_x,
// clear_y, fin_x, fin_y, vx_eff, vy_eff)").
type planResult struct {
	ClearX, ClearY int
	FinX, FinY     int
	VX, VY         float32
}

func (s *Sim) cellSize() int { return s.Cfg.Applied.Grid.Cell }

func (s *Sim) wallAt() grid.WallAt {
	cell := s.cellSize()
	return func(px, py int) grid.WallType {
		return s.walls.At(px/cell, py/cell)
	}
}

// planMove implements spec.md §4.E PlanMove: integrate velocity for one
// step, apply advection/gravity/drag, clamp, then walk the swept ray
// cell-by-cell against pmap (an all-quadrants test, since the ray may move
// diagonally through more than one candidate cell per axis) stopping at the
// last cell EvalMove allows.
func (s *Sim) planMove(i int) planResult {
	p := s.pool.Particle(i)
	e := s.reg.Get(p.Type)

	vx, vy := p.VX, p.VY

	cx, cy := p.PX()/s.cellSize(), p.PY()/s.cellSize()
	if e != nil && e.Advection != 0 && s.air.InBounds(cx, cy) {
		idx := cy*s.air.Cx + cx
		vx += (s.air.Vx[idx] - vx) * e.Advection
		vy += (s.air.Vy[idx] - vy) * e.Advection
	}

	vx, vy = s.applyGravity(cx, cy, vx, vy)

	drag := airDragDefault
	vx *= (1 - drag) * lossDefault
	vy *= (1 - drag) * lossDefault

	vx = clampF(vx, -config.MaxVelocity, config.MaxVelocity)
	vy = clampF(vy, -config.MaxVelocity, config.MaxVelocity)

	startX, startY := p.PX(), p.PY()
	finX := int(p.X + vx)
	finY := int(p.Y + vy)

	clearX, clearY := s.sweep(p.Type, startX, startY, finX, finY)

	return planResult{ClearX: clearX, ClearY: clearY, FinX: finX, FinY: finY, VX: vx, VY: vy}
}

// applyGravity implements the "gravity (vertical / off / radial / custom /
// Newtonian)" clause of spec.md §4.E PlanMove.
func (s *Sim) applyGravity(cx, cy int, vx, vy float32) (float32, float32) {
	rt := s.Cfg.Applied.Runtime
	switch rt.GravityMode {
	case config.GravityVertical:
		vy += verticalGravity
	case config.GravityRadial:
		centerX := float32(s.Cfg.Applied.Grid.Cx) / 2
		centerY := float32(s.Cfg.Applied.Grid.Cy) / 2
		dx, dy := centerX-float32(cx), centerY-float32(cy)
		d2 := dx*dx + dy*dy
		if d2 > 1 {
			d := sqrtF(d2)
			vx += verticalGravity * dx / d
			vy += verticalGravity * dy / d
		}
	case config.GravityCustom:
		vx += rt.CustomGravityX
		vy += rt.CustomGravityY
	case config.GravityOff:
		// no-op
	}
	if rt.NewtonianGravity && s.grav != nil && s.walls.InBounds(cx, cy) {
		if idx := cy*s.grav.Cx + cx; idx >= 0 && idx < len(s.grav.ForceX) {
			vx += s.grav.ForceX[idx]
			vy += s.grav.ForceY[idx]
		}
	}
	return vx, vy
}

// sweep walks the segment from (x0,y0) to (x1,y1) one cell at a time in
// both axes (an all-quadrants test, since either axis may dominate
// depending on velocity direction) and returns the last cell EvalMove
// allowed.
func (s *Sim) sweep(t grid.ElementID, x0, y0, x1, y1 int) (clearX, clearY int) {
	clearX, clearY = x0, y0
	steps := absInt(x1 - x0)
	if absInt(y1-y0) > steps {
		steps = absInt(y1 - y0)
	}
	if steps == 0 {
		return clearX, clearY
	}
	wallAt := s.wallAt()
	for step := 1; step <= steps; step++ {
		t0 := float32(step) / float32(steps)
		nx := x0 + int(float32(x1-x0)*t0)
		ny := y0 + int(float32(y1-y0)*t0)
		if nx == clearX && ny == clearY {
			continue
		}
		res := s.pool.EvalMove(t, nx, ny, wallAt)
		if !res.Allowed {
			break
		}
		clearX, clearY = nx, ny
	}
	return clearX, clearY
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sqrtF is a fast inverse-square-root approximation with one Newton
// refinement, the same trick the teacher's game/fastmath.go uses to avoid
// math.Sqrt's float64 round trip in a hot per-particle loop.
func sqrtF(x float32) float32 {
	if x <= 0 {
		return 0
	}
	i := math.Float32bits(x)
	i = 0x5f375a86 - (i >> 1)
	y := math.Float32frombits(i)
	y = y * (1.5 - 0.5*x*y*y)
	return x * y
}
