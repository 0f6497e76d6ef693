package history

import (
	"testing"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/update"
)

func newTestSim(t *testing.T) *update.Sim {
	t.Helper()
	cfg := &config.Config{
		Grid: config.GridConfig{Cell: 4, Cx: 40, Cy: 20},
		Runtime: config.RuntimeConfig{
			EdgeMode:    config.EdgeVoid,
			GravityMode: config.GravityOff,
			AirMode:     config.AirOn,
			AmbientTemp: 295,
		},
		Solver: config.Solver{
			AirVadv: 0.3, AirPLoss: 0.9999, AirTStepP: 0.3, AirVLoss: 0.999, AirTStepV: 0.4,
			StackingThreshold: 3, StackingSweepPeriod: 20,
		},
	}
	reg := element.NewRegistry()
	element.RegisterBuiltins(reg)
	return update.NewSim(config.NewSim(cfg), reg, 7)
}

// TestUndoRedoMatchesE4 reproduces spec.md §8 scenario E4: with
// undoHistoryLimit=3, Push(A) on an empty sim, place DUST, Push(B), place
// WATR, Push(C), then Undo/Undo should reach A and Redo/Redo/Redo (the
// third being the "final Ctrl+Y" case) should reach C with beforeRestore
// cleared.
func TestUndoRedoMatchesE4(t *testing.T) {
	s := newTestSim(t)
	h := New(3)

	h.Push(s) // A: empty
	hashA := h.Current().Hash()

	if _, err := s.CreatePart(-2, 10, 4, element.IDDust); err != nil {
		t.Fatalf("create dust: %v", err)
	}
	h.Push(s) // B: + dust
	hashB := h.Current().Hash()

	if _, err := s.CreatePart(-2, 20, 8, element.IDWatr); err != nil {
		t.Fatalf("create watr: %v", err)
	}
	h.Push(s) // C: + watr
	hashC := h.Current().Hash()

	if err := h.Undo(s); err != nil {
		t.Fatalf("undo 1: %v", err)
	}
	if err := h.Undo(s); err != nil {
		t.Fatalf("undo 2: %v", err)
	}
	if got := h.Current().Hash(); got != hashA {
		t.Fatalf("after 2 undos hash = %d, want A's hash %d", got, hashA)
	}

	if err := h.Redo(s); err != nil {
		t.Fatalf("redo 1: %v", err)
	}
	if got := h.Current().Hash(); got != hashB {
		t.Fatalf("after redo 1 hash = %d, want B's hash %d", got, hashB)
	}
	if err := h.Redo(s); err != nil {
		t.Fatalf("redo 2: %v", err)
	}
	if got := h.Current().Hash(); got != hashC {
		t.Fatalf("after redo 2 hash = %d, want C's hash %d", got, hashC)
	}
	if err := h.Redo(s); err != nil {
		t.Fatalf("redo 3 (final Ctrl+Y case): %v", err)
	}
	if got := h.Current().Hash(); got != hashC {
		t.Fatalf("after redo 3 hash = %d, want C's hash %d", got, hashC)
	}
	if h.beforeRestore != nil {
		t.Fatalf("expected beforeRestore to be cleared after the final redo")
	}
}

func TestUndoAtOldestReturnsHistoryEmpty(t *testing.T) {
	s := newTestSim(t)
	h := New(3)
	h.Push(s)

	if err := h.Undo(s); err == nil {
		t.Fatalf("expected HistoryEmpty undoing past the only entry")
	} else if _, ok := err.(HistoryEmpty); !ok {
		t.Fatalf("expected HistoryEmpty, got %T", err)
	}
}

func TestRedoWithNothingPushedReturnsHistoryEmpty(t *testing.T) {
	s := newTestSim(t)
	h := New(3)
	h.Push(s)

	if err := h.Redo(s); err == nil {
		t.Fatalf("expected HistoryEmpty redoing with nothing undone")
	}
}

func TestPushPastLimitDropsOldestEntry(t *testing.T) {
	s := newTestSim(t)
	h := New(2)

	h.Push(s)
	h.Push(s)
	h.Push(s)

	if h.Len() != 2 {
		t.Fatalf("expected ring capped at 2 entries, got %d", h.Len())
	}
}

func TestPushAfterUndoDropsRedoBranch(t *testing.T) {
	s := newTestSim(t)
	h := New(5)

	h.Push(s) // A
	if _, err := s.CreatePart(-2, 10, 4, element.IDDust); err != nil {
		t.Fatalf("create dust: %v", err)
	}
	h.Push(s) // B
	if _, err := s.CreatePart(-2, 20, 8, element.IDWatr); err != nil {
		t.Fatalf("create watr: %v", err)
	}
	h.Push(s) // C

	if err := h.Undo(s); err != nil {
		t.Fatalf("undo: %v", err)
	} // back to B

	if _, err := s.CreatePart(-2, 30, 12, element.IDStne); err != nil {
		t.Fatalf("create stone: %v", err)
	}
	h.Push(s) // D, discarding C

	if err := h.Redo(s); err == nil {
		t.Fatalf("expected HistoryEmpty: C was dropped by the Push at B")
	}
}
