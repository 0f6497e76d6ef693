// Package fields implements the cell-resolution air/ambient-heat solver
// (spec.md §4.B) and the optional Newtonian gravity solver (spec.md §4.C).
// Both operate on flat []float32 grids the way the teacher's
// systems/resource_field.go animates its capacity/resource/detritus grids:
// plain slices, row-sharded across goroutines, no external math dependency
// for the stencil work.
package fields

import (
	"runtime"
	"sync"
)

// AirMode controls which parts of the solver run each tick (spec.md §4.B).
type AirMode int

const (
	AirOn AirMode = iota
	AirPressureOff
	AirVelocityOff
	AirOff
	AirNoUpdate
)

// EdgeMode controls border handling.
type EdgeMode int

const (
	EdgeVoid EdgeMode = iota
	EdgeSolid
	EdgeLoop
)

// Numeric constants from spec.md §4.B / §6.
const (
	AirVadv   = 0.3
	AirPLoss  = 0.9999
	AirTStepP = 0.3
	AirVLoss  = 0.999
	AirTStepV = 0.4
	MaxVelocity = 1e4
	MaxPressure = 256
)

// Blocked reports whether the air solver should treat a cell as a wall.
type Blocked func(cx, cy int) bool

// Air holds the pressure/velocity/ambient-heat field grids.
type Air struct {
	Cx, Cy int

	Pv       []float32
	Vx, Vy   []float32
	Hv       []float32 // ambient temperature
	heatIn   []float32 // per-tick heating contribution scratch

	Constants struct {
		Vadv, PLoss, TStepP, VLoss, TStepV float32
	}
}

// NewAir allocates field grids for a Cx×Cy cell grid, seeded with the
// given ambient temperature.
func NewAir(cx, cy int, ambientTemp float32) *Air {
	n := cx * cy
	a := &Air{
		Cx: cx, Cy: cy,
		Pv:     make([]float32, n),
		Vx:     make([]float32, n),
		Vy:     make([]float32, n),
		Hv:     make([]float32, n),
		heatIn: make([]float32, n),
	}
	a.Constants.Vadv = AirVadv
	a.Constants.PLoss = AirPLoss
	a.Constants.TStepP = AirTStepP
	a.Constants.VLoss = AirVLoss
	a.Constants.TStepV = AirTStepV
	for i := range a.Hv {
		a.Hv[i] = ambientTemp
	}
	return a
}

func (a *Air) idx(cx, cy int) int { return cy*a.Cx + cx }

func (a *Air) InBounds(cx, cy int) bool {
	return cx >= 0 && cx < a.Cx && cy >= 0 && cy < a.Cy
}

// AddHeat accumulates a per-cell ambient heat contribution for the next
// Step call (spec.md §4.B step 5 "add per-cell contributions").
func (a *Air) AddHeat(cx, cy int, amount float32) {
	if a.InBounds(cx, cy) {
		a.heatIn[a.idx(cx, cy)] += amount
	}
}

// the 3x3 kernel shared by advection and ambient-heat diffusion, matching
// the source's fixed gauss-like kernel (center-weighted, normalized).
var kernel3x3 = [3][3]float32{
	{0.0625, 0.125, 0.0625},
	{0.125, 0.25, 0.125},
	{0.0625, 0.125, 0.0625},
}

func parallelRows(rows int, fn func(y0, y1 int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > rows {
		workers = rows
	}
	if workers < 1 {
		workers = 1
	}
	rowsPer := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		y0 := w * rowsPer
		y1 := y0 + rowsPer
		if y1 > rows {
			y1 = rows
		}
		if y0 >= rows {
			break
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}

func (a *Air) wrap(edge EdgeMode, cx, cy int) (int, int, bool) {
	switch edge {
	case EdgeLoop:
		cx = ((cx % a.Cx) + a.Cx) % a.Cx
		cy = ((cy % a.Cy) + a.Cy) % a.Cy
		return cx, cy, true
	case EdgeSolid:
		if cx < 0 {
			cx = 0
		}
		if cx >= a.Cx {
			cx = a.Cx - 1
		}
		if cy < 0 {
			cy = 0
		}
		if cy >= a.Cy {
			cy = a.Cy - 1
		}
		return cx, cy, true
	default: // EdgeVoid
		return cx, cy, a.InBounds(cx, cy)
	}
}

func (a *Air) sampleKernel(grid []float32, cx, cy int, edge EdgeMode, blocked Blocked) float32 {
	var sum float32
	for oy := -1; oy <= 1; oy++ {
		for ox := -1; ox <= 1; ox++ {
			sx, sy, ok := a.wrap(edge, cx+ox, cy+oy)
			if !ok || (blocked != nil && blocked(sx, sy)) {
				sx, sy = cx, cy
			}
			sum += grid[a.idx(sx, sy)] * kernel3x3[oy+1][ox+1]
		}
	}
	return sum
}

// Step advances pressure/velocity/ambient-heat by one tick following
// spec.md §4.B's five-step pipeline.
func (a *Air) Step(mode AirMode, edge EdgeMode, blocked Blocked, ambientTemp float32, ambientHeatOn bool, diffusion float32) {
	if mode == AirNoUpdate {
		return
	}

	n := a.Cx * a.Cy
	newVx := make([]float32, n)
	newVy := make([]float32, n)
	newPv := make([]float32, n)

	if mode != AirOff && mode != AirVelocityOff {
		// Step 1: advect velocity through the 3x3 kernel.
		parallelRows(a.Cy, func(y0, y1 int) {
			for cy := y0; cy < y1; cy++ {
				for cx := 0; cx < a.Cx; cx++ {
					i := a.idx(cx, cy)
					if blocked != nil && blocked(cx, cy) {
						newVx[i], newVy[i] = 0, 0
						continue
					}
					avx := a.sampleKernel(a.Vx, cx, cy, edge, blocked)
					avy := a.sampleKernel(a.Vy, cx, cy, edge, blocked)
					newVx[i] = a.Vx[i] + (avx-a.Vx[i])*a.Constants.Vadv
					newVy[i] = a.Vy[i] + (avy-a.Vy[i])*a.Constants.Vadv
				}
			}
		})
		copy(a.Vx, newVx)
		copy(a.Vy, newVy)
	}

	if mode != AirOff && mode != AirPressureOff {
		// Step 2: diffuse pressure using divergence of velocity.
		parallelRows(a.Cy, func(y0, y1 int) {
			for cy := y0; cy < y1; cy++ {
				for cx := 0; cx < a.Cx; cx++ {
					i := a.idx(cx, cy)
					if blocked != nil && blocked(cx, cy) {
						newPv[i] = 0
						continue
					}
					div := a.divergenceAt(cx, cy, edge, blocked)
					newPv[i] = a.Constants.PLoss*a.Pv[i] + a.Constants.TStepP*div
				}
			}
		})
		copy(a.Pv, newPv)
	}

	if mode != AirOff && mode != AirVelocityOff {
		// Step 3: accelerate velocity against the pressure gradient.
		parallelRows(a.Cy, func(y0, y1 int) {
			for cy := y0; cy < y1; cy++ {
				for cx := 0; cx < a.Cx; cx++ {
					i := a.idx(cx, cy)
					if blocked != nil && blocked(cx, cy) {
						continue
					}
					gx, gy := a.gradientAt(cx, cy, edge, blocked)
					a.Vx[i] = a.Constants.VLoss*a.Vx[i] - a.Constants.TStepV*gx
					a.Vy[i] = a.Constants.VLoss*a.Vy[i] - a.Constants.TStepV*gy
				}
			}
		})
	}

	// Step 4: clip.
	for i := range a.Vx {
		a.Vx[i] = clamp(a.Vx[i], -MaxVelocity, MaxVelocity)
		a.Vy[i] = clamp(a.Vy[i], -MaxVelocity, MaxVelocity)
		a.Pv[i] = clamp(a.Pv[i], -MaxPressure, MaxPressure)
	}

	// Step 5: ambient heat diffusion, decay to ambient, add contributions.
	if ambientHeatOn {
		newHv := make([]float32, n)
		parallelRows(a.Cy, func(y0, y1 int) {
			for cy := y0; cy < y1; cy++ {
				for cx := 0; cx < a.Cx; cx++ {
					i := a.idx(cx, cy)
					diffused := a.sampleKernel(a.Hv, cx, cy, edge, blocked)
					decayed := diffused + (ambientTemp-diffused)*diffusion
					newHv[i] = decayed + a.heatIn[i]
				}
			}
		})
		copy(a.Hv, newHv)
	}
	for i := range a.heatIn {
		a.heatIn[i] = 0
	}
}

func (a *Air) divergenceAt(cx, cy int, edge EdgeMode, blocked Blocked) float32 {
	l := a.neighbor(a.Vx, cx-1, cy, edge, blocked, cx, cy)
	r := a.neighbor(a.Vx, cx+1, cy, edge, blocked, cx, cy)
	u := a.neighbor(a.Vy, cx, cy-1, edge, blocked, cx, cy)
	d := a.neighbor(a.Vy, cx, cy+1, edge, blocked, cx, cy)
	return (r - l + d - u) * 0.5
}

func (a *Air) gradientAt(cx, cy int, edge EdgeMode, blocked Blocked) (gx, gy float32) {
	l := a.neighbor(a.Pv, cx-1, cy, edge, blocked, cx, cy)
	r := a.neighbor(a.Pv, cx+1, cy, edge, blocked, cx, cy)
	u := a.neighbor(a.Pv, cx, cy-1, edge, blocked, cx, cy)
	d := a.neighbor(a.Pv, cx, cy+1, edge, blocked, cx, cy)
	return (r - l) * 0.5, (d - u) * 0.5
}

func (a *Air) neighbor(grid []float32, cx, cy int, edge EdgeMode, blocked Blocked, fallbackX, fallbackY int) float32 {
	sx, sy, ok := a.wrap(edge, cx, cy)
	if !ok || (blocked != nil && blocked(sx, sy)) {
		sx, sy = fallbackX, fallbackY
	}
	return grid[a.idx(sx, sy)]
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
