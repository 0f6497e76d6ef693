package update

import (
	"testing"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
)

func newTestSim(t *testing.T, mutate func(*config.Config)) *Sim {
	t.Helper()
	cfg := &config.Config{
		Grid: config.GridConfig{Cell: 4, Cx: 80, Cy: 20},
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
	if mutate != nil {
		mutate(cfg)
	}
	reg := element.NewRegistry()
	element.RegisterBuiltins(reg)
	return NewSim(config.NewSim(cfg), reg, 1)
}

func TestDustFallsUnderVerticalGravity(t *testing.T) {
	s := newTestSim(t, nil)
	idx, err := s.CreatePart(-2, 160, 4, element.IDDust)
	if err != nil {
		t.Fatalf("create dust: %v", err)
	}
	startY := s.Pool().Particle(idx).PY()

	for tick := 0; tick < 2000; tick++ {
		s.Step()
		if s.Pool().Particle(idx).IsVacant() {
			break
		}
	}

	// Either the particle fell off the bottom (killed by DoMove's bounds
	// rejection leaving it stuck at the floor is also acceptable — the
	// invariant under test is downward displacement, not exact exit).
	p := s.Pool().Particle(idx)
	if !p.IsVacant() {
		if p.PY() <= startY {
			t.Fatalf("expected DUST to fall, started y=%d ended y=%d", startY, p.PY())
		}
	}
}

func TestWaterExtinguishesFireDuringTick(t *testing.T) {
	s := newTestSim(t, nil)
	fireIdx, err := s.CreatePart(-2, 40, 10, element.IDFire)
	if err != nil {
		t.Fatalf("create fire: %v", err)
	}
	s.Pool().Particle(fireIdx).Life = 50
	_, err = s.CreatePart(-2, 39, 10, element.IDWatr)
	if err != nil {
		t.Fatalf("create watr: %v", err)
	}

	s.Step()

	if typ, _, ok := s.Pool().PmapAt(39, 10); !ok || typ != element.IDStem {
		t.Fatalf("expected water cell to convert to steam after one tick, got %v ok=%v", typ, ok)
	}
}

func TestGolBlockSurvives(t *testing.T) {
	s := newTestSim(t, func(c *config.Config) { c.Runtime.GravityMode = config.GravityOff })
	rule := element.GolRule{
		Born:    [9]bool{3: true},
		Survive: [9]bool{2: true, 3: true},
		Colour1: 0xFFFFFFFF,
	}
	golID := s.reg.RegisterGol("block", rule)

	// A 2x2 block is stable under B3/S23 (Conway's rule) — classic still life.
	cells := [][2]int{{10, 10}, {11, 10}, {10, 11}, {11, 11}}
	for _, c := range cells {
		if _, err := s.CreatePart(-2, c[0], c[1], golID); err != nil {
			t.Fatalf("create gol cell: %v", err)
		}
	}

	s.runGameOfLife()

	for _, c := range cells {
		if typ, _, ok := s.Pool().PmapAt(c[0], c[1]); !ok || typ != golID {
			t.Fatalf("expected stable block to survive at %v, got %v ok=%v", c, typ, ok)
		}
	}
}

func TestGolBirthFromThreeNeighbors(t *testing.T) {
	s := newTestSim(t, func(c *config.Config) { c.Runtime.GravityMode = config.GravityOff })
	rule := element.GolRule{
		Born:    [9]bool{3: true},
		Survive: [9]bool{2: true, 3: true},
	}
	golID := s.reg.RegisterGol("blinker-seed", rule)

	// Horizontal three-in-a-row blinker: the middle cell has 2 neighbors
	// (survives), the empty cells directly above/below the center have
	// exactly 3 neighbors (born), producing the vertical blinker phase.
	for _, x := range []int{9, 10, 11} {
		if _, err := s.CreatePart(-2, x, 10, golID); err != nil {
			t.Fatalf("create gol cell: %v", err)
		}
	}

	s.runGameOfLife()

	if typ, _, ok := s.Pool().PmapAt(10, 9); !ok || typ != golID {
		t.Fatalf("expected birth above blinker center, got %v ok=%v", typ, ok)
	}
	if typ, _, ok := s.Pool().PmapAt(10, 11); !ok || typ != golID {
		t.Fatalf("expected birth below blinker center, got %v ok=%v", typ, ok)
	}
	if _, _, ok := s.Pool().PmapAt(9, 10); ok {
		t.Fatalf("expected blinker tip to die from only 1 neighbor")
	}
}
