package engine

import (
	"github.com/pthm-cable/cellsand/fields"
	"github.com/pthm-cable/cellsand/update"
)

// gravityWorker implements spec.md §4.C's dedicated Newtonian-gravity
// goroutine: "the main thread hands over the mass map and receives the
// force map one tick later". It owns its own *fields.Gravity instance
// rather than sharing the Sim's, so the handoff is a pair of slice copies
// over channels instead of mutex-guarded access to the Sim's field grids —
// the same copy-then-background-compute shape as the teacher's
// startAsyncFlowGeneration (pthm-soup/systems/particle_resource.go), traded
// here for channels instead of atomic-bool-plus-mutex since the handoff is
// naturally request/response rather than continuous streaming.
type gravityWorker struct {
	solver *fields.Gravity

	massCh  chan []float32
	forceCh chan gravityResult

	pending bool
}

type gravityResult struct {
	fx, fy []float32
}

// newGravityWorker builds a worker solving over the same grid dimensions,
// cell size, and gravmask as sim's own Gravity field.
func newGravityWorker(cx, cy int, cellSize float32, gravMask []bool) *gravityWorker {
	return &gravityWorker{
		solver:  fields.NewGravity(cx, cy, cellSize, gravMask),
		massCh:  make(chan []float32, 1),
		forceCh: make(chan gravityResult, 1),
	}
}

// StartGravityThread launches the dedicated gravity-solver goroutine and
// tells sim to stop solving gravity synchronously inside Step (spec.md §5
// "one main thread ... a dedicated thread runs the Newtonian gravity
// solver"). cellSize and gravMask must match the Sim's own grid.
func (o *Orchestrator) StartGravityThread(cx, cy int, cellSize float32, gravMask []bool) {
	if o.grav != nil {
		return
	}
	w := newGravityWorker(cx, cy, cellSize, gravMask)
	o.grav = w
	o.Sim.SetExternalGravityDriver(true)
	go w.run()
}

// StopGravityThread closes the gravity goroutine's mass channel and hands
// solving back to Step's synchronous fallback. It does not wait for the
// goroutine to exit.
func (o *Orchestrator) StopGravityThread() {
	if o.grav == nil {
		return
	}
	close(o.grav.massCh)
	o.Sim.SetExternalGravityDriver(false)
	o.grav = nil
}

func (w *gravityWorker) run() {
	for mass := range w.massCh {
		copy(w.solver.Mass, mass)
		w.solver.Solve()
		fx := make([]float32, len(w.solver.ForceX))
		fy := make([]float32, len(w.solver.ForceY))
		copy(fx, w.solver.ForceX)
		copy(fy, w.solver.ForceY)
		w.forceCh <- gravityResult{fx: fx, fy: fy}
	}
}

// exchange implements the one-tick-lag handoff of spec.md §4.C: collect
// last tick's solved forces into sim's gravity field (blocking until the
// worker delivers them, when a request is outstanding), then hand
// over the current mass map for the *next* tick's result. Called once per
// Orchestrator.Tick before Sim.Step runs.
func (w *gravityWorker) exchange(sim *update.Sim) {
	grav := sim.Gravity()
	if grav == nil {
		return
	}

	if w.pending {
		res := <-w.forceCh
		copy(grav.ForceX, res.fx)
		copy(grav.ForceY, res.fy)
		w.pending = false
	}

	massCopy := make([]float32, len(grav.Mass))
	copy(massCopy, grav.Mass)
	select {
	case w.massCh <- massCopy:
		w.pending = true
	default:
		// Worker still busy with the previous request; skip this tick's
		// handoff rather than block the sim thread (spec.md §5 "suspension
		// points" does not list the gravity handoff as an unbounded wait).
	}
}
