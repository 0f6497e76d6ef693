// Package engine implements spec.md §4.K, the pipeline orchestrator: it
// owns the renderer thread and the Newtonian gravity solver thread, couples
// the sim tick to frame production, and exposes the BeforeFrame/Tick/
// BeforeGui/AfterFrame protocol a UI frontend (cmd/sandbox) drives once per
// frame. Modeled on the teacher's async-worker handoff
// (pthm-soup/systems/particle_resource.go's startAsyncFlowGeneration: an
// atomic ready flag plus a background goroutine filling a buffer the main
// loop later swaps in) rather than its single-threaded ECS Update/Draw
// split, since spec.md §5 calls for a dedicated renderer thread.
package engine

import (
	"sync"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/history"
	"github.com/pthm-cable/cellsand/renderer"
	"github.com/pthm-cable/cellsand/update"
)

// RendererState is one of the four states spec.md §4.K enumerates for the
// renderer thread.
type RendererState int32

const (
	RendererAbsent RendererState = iota
	RendererRunning
	RendererPaused
	RendererStopping
)

// Orchestrator couples a Sim, its Renderer, and the History ring, and owns
// the renderer and gravity goroutines. The zero value is not usable;
// construct with New.
type Orchestrator struct {
	Sim     *update.Sim
	Reg     *element.Registry
	Render  *renderer.Renderer
	History *history.History

	// editMu is the "logical lock on the grid for edits" of spec.md §4.K
	// step 1: BeforeFrame acquires it as a pause request, AfterFrame
	// releases it. PushHistory/Undo/Redo take it for the duration of the
	// history operation; package edit's primitives do not lock, so their
	// callers frame them with PauseSim/ResumeSim (spec.md §4.F).
	editMu     sync.Mutex
	pauseCount int

	state    RendererState
	stateMu  sync.Mutex
	viewCh   chan renderer.View
	frameCh  chan *renderer.Frame
	wg       sync.WaitGroup
	pending  bool // a view was handed to the renderer goroutine and its frame hasn't been collected yet

	grav *gravityWorker
}

// New builds an Orchestrator around sim, reg, and an undo/redo ring sized
// from cfg's history limit. The renderer and gravity goroutines are not
// started until StartRendererThread / StartGravityThread are called.
func New(sim *update.Sim, reg *element.Registry, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		Sim:     sim,
		Reg:     reg,
		Render:  renderer.New(reg),
		History: history.New(cfg.History.UndoHistoryLimit),
		state:   RendererAbsent,
	}
}

// PauseSim acquires the edit lock, blocking until any frame currently being
// produced by Tick has returned. Calls do not nest: editMu is a plain
// sync.Mutex, so a second PauseSim before the matching ResumeSim blocks.
func (o *Orchestrator) PauseSim() {
	o.editMu.Lock()
	o.pauseCount++
}

// ResumeSim releases the edit lock taken by PauseSim.
func (o *Orchestrator) ResumeSim() {
	o.pauseCount--
	o.editMu.Unlock()
}

// BeforeFrame implements spec.md §4.K step 1.
func (o *Orchestrator) BeforeFrame() { o.PauseSim() }

// AfterFrame implements spec.md §4.K step 5.
func (o *Orchestrator) AfterFrame() { o.ResumeSim() }

// Tick implements spec.md §4.K step 2: advances the sim by one step unless
// paused, handling the one-tick-lag Newtonian gravity handoff described in
// spec.md §4.C/§5 when the gravity thread is running.
func (o *Orchestrator) Tick(paused bool) {
	if paused {
		return
	}
	if o.grav != nil {
		o.grav.exchange(o.Sim)
	}
	o.Sim.Step()
}

// StartRendererThread launches the dedicated renderer goroutine (spec.md
// §4.K, §5 "the renderer thread never holds the sim lock; it works off a
// private copy of the RenderableSimulation struct"). Safe to call once;
// a second call is a no-op.
func (o *Orchestrator) StartRendererThread() {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	if o.state != RendererAbsent {
		return
	}
	o.viewCh = make(chan renderer.View, 1)
	o.frameCh = make(chan *renderer.Frame, 1)
	o.state = RendererRunning
	o.wg.Add(1)
	go o.renderLoop()
}

func (o *Orchestrator) renderLoop() {
	defer o.wg.Done()
	for view := range o.viewCh {
		frame := o.Render.Render(view)
		o.frameCh <- frame
	}
}

// PauseRendererThread marks the renderer thread paused so BeforeGui will
// render synchronously on the caller's goroutine instead of handing work to
// it. It does not wait for an in-flight view request; a frame already
// requested stays queued and is returned by the first BeforeGui after
// ResumeRendererThread
// (spec.md §4.J "if a caller requires a synchronously rendered frame ...
// it pauses the renderer thread first and renders on the caller thread").
func (o *Orchestrator) PauseRendererThread() {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	if o.state == RendererRunning {
		o.state = RendererPaused
	}
}

// ResumeRendererThread undoes PauseRendererThread.
func (o *Orchestrator) ResumeRendererThread() {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	if o.state == RendererPaused {
		o.state = RendererRunning
	}
}

// StopRendererThread implements spec.md §4.K "Cancellation": sets the
// state to stopping and joins. Mid-frame cancellation is not supported —
// the goroutine finishes whatever Render call is in flight.
func (o *Orchestrator) StopRendererThread() {
	o.stateMu.Lock()
	if o.state == RendererAbsent {
		o.stateMu.Unlock()
		return
	}
	o.state = RendererStopping
	ch := o.viewCh
	o.stateMu.Unlock()

	close(ch)
	o.wg.Wait()

	o.stateMu.Lock()
	o.state = RendererAbsent
	o.stateMu.Unlock()
}

// BeforeGui implements spec.md §4.K step 3: the renderer thread finishes
// painting the previous frame, the UI thread waits for it and collects the
// result, then hands the renderer a fresh snapshot of the current sim and
// signals it to paint the next frame in the background. The frame returned
// is always the most recently *completed* paint, which lags the sim by
// exactly one BeforeGui call — the same one-step pipelining spec.md §2's
// data-flow paragraph describes ("renderer snapshot-and-renders the
// previous simulation state while the UI thread advances simulation").
func (o *Orchestrator) BeforeGui() *renderer.Frame {
	view := renderer.Snapshot(o.Sim, o.Reg)

	o.stateMu.Lock()
	state := o.state
	o.stateMu.Unlock()

	if state != RendererRunning {
		// No background thread (or it's paused for a synchronous render,
		// e.g. thumbnail export): render here and return immediately.
		return o.Render.Render(view)
	}

	var out *renderer.Frame
	if o.pending {
		out = <-o.frameCh
	}
	o.viewCh <- view
	o.pending = true
	if out == nil {
		// First call since the thread started: nothing painted yet to
		// present, so wait for this request's own result once.
		out = <-o.frameCh
		o.pending = false
	}
	return out
}
