package grid

import "testing"

func TestGravMaskExcludesGravWalls(t *testing.T) {
	w := NewWalls(10, 10)
	for cx := 3; cx < 7; cx++ {
		for cy := 3; cy < 7; cy++ {
			w.Set(cx, cy, WallGrav)
		}
	}
	w.RecomputeGravMask()

	if w.GravMask[w.idx(5, 5)] {
		t.Fatal("expected interior grav-walled cell to be excluded from gravmask")
	}
	if !w.GravMask[w.idx(0, 0)] {
		t.Fatal("expected border cell reachable from edge to be included")
	}
}

func TestEmapDecay(t *testing.T) {
	w := NewWalls(4, 4)
	w.Spark(1, 1, 5)
	if w.EmapAt(1, 1) != 5 {
		t.Fatalf("expected spark to set emap, got %d", w.EmapAt(1, 1))
	}
	for i := 0; i < 5; i++ {
		w.EmapTick()
	}
	if w.EmapAt(1, 1) != 0 {
		t.Fatalf("expected emap to decay to 0, got %d", w.EmapAt(1, 1))
	}
}
