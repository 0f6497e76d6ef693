package snapshot

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
			GravityMode: config.GravityVertical,
			AirMode:     config.AirOn,
			AmbientTemp: 295,
			AmbientHeat: true,
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

func TestHashDeterministic(t *testing.T) {
	s := newTestSim(t)
	if _, err := s.CreatePart(-2, 10, 4, element.IDDust); err != nil {
		t.Fatalf("create dust: %v", err)
	}

	snapA := From(s)
	snapB := From(s)

	if snapA.Hash() != snapB.Hash() {
		t.Fatalf("two snapshots of the same state hashed differently")
	}
}

func TestHashChangesAfterTick(t *testing.T) {
	s := newTestSim(t)
	if _, err := s.CreatePart(-2, 10, 4, element.IDDust); err != nil {
		t.Fatalf("create dust: %v", err)
	}

	before := From(s)
	s.Step()
	after := From(s)

	if before.Hash() == after.Hash() {
		t.Fatalf("expected hash to change once DUST starts falling")
	}
}

func TestRestoreIntoReproducesHash(t *testing.T) {
	s := newTestSim(t)
	if _, err := s.CreatePart(-2, 10, 4, element.IDDust); err != nil {
		t.Fatalf("create dust: %v", err)
	}
	snap := From(s)
	want := snap.Hash()

	for i := 0; i < 5; i++ {
		s.Step()
	}

	snap.RestoreInto(s)
	got := From(s).Hash()

	if got != want {
		t.Fatalf("hash after restore = %d, want %d", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := newTestSim(t)
	if _, err := s.CreatePart(-2, 10, 4, element.IDDust); err != nil {
		t.Fatalf("create dust: %v", err)
	}
	snap := From(s)
	clone := snap.Clone()

	s.Step()
	live := From(s)

	if clone.Hash() == live.Hash() {
		t.Fatalf("expected clone taken before Step to differ from state after Step")
	}
	if clone.Hash() != snap.Hash() {
		t.Fatalf("clone's hash changed even though clone was never restored into a live sim")
	}
}
