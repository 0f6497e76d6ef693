package snapshot

import (
	"testing"

	"github.com/pthm-cable/cellsand/element"
)

func TestDeltaForwardRoundTrip(t *testing.T) {
	s := newTestSim(t)
	if _, err := s.CreatePart(-2, 10, 4, element.IDDust); err != nil {
		t.Fatalf("create dust: %v", err)
	}

	a := From(s)
	s.Step()
	s.Step()
	b := From(s)

	delta := Diff(a, b)
	forwarded := delta.Forward(a)

	if forwarded.Hash() != b.Hash() {
		t.Fatalf("diff(A,B).forward(A).hash() = %d, want B.hash() = %d", forwarded.Hash(), b.Hash())
	}
}

func TestDeltaRestoreRoundTrip(t *testing.T) {
	s := newTestSim(t)
	if _, err := s.CreatePart(-2, 10, 4, element.IDDust); err != nil {
		t.Fatalf("create dust: %v", err)
	}

	a := From(s)
	s.Step()
	s.Step()
	b := From(s)

	delta := Diff(a, b)
	restored := delta.Restore(b)

	if restored.Hash() != a.Hash() {
		t.Fatalf("diff(A,B).restore(B).hash() = %d, want A.hash() = %d", restored.Hash(), a.Hash())
	}
}

func TestDeltaOfIdenticalSnapshotsIsEmpty(t *testing.T) {
	s := newTestSim(t)
	if _, err := s.CreatePart(-2, 10, 4, element.IDDust); err != nil {
		t.Fatalf("create dust: %v", err)
	}

	a := From(s)
	b := From(s)

	delta := Diff(a, b)
	if !delta.Empty() {
		t.Fatalf("expected diff of two snapshots of unchanged state to be empty")
	}
}
