package edit

import (
	"testing"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/update"
)

func newTestSim(t *testing.T) *update.Sim {
	t.Helper()
	cfg := &config.Config{
		Grid: config.GridConfig{Cell: 4, Cx: 40, Cy: 40},
		Runtime: config.RuntimeConfig{
			EdgeMode: config.EdgeVoid, GravityMode: config.GravityOff,
			AirMode: config.AirOn, AmbientTemp: 295,
		},
		Solver: config.Solver{StackingThreshold: 3, StackingSweepPeriod: 20},
	}
	reg := element.NewRegistry()
	element.RegisterBuiltins(reg)
	return update.NewSim(config.NewSim(cfg), reg, 1)
}

func TestCreatePartSkipsOccupiedCellByDefault(t *testing.T) {
	s := newTestSim(t)
	if err := CreatePart(s, 10, 10, element.IDDust, Flags{}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := CreatePart(s, 10, 10, element.IDWatr, Flags{}); err != nil {
		t.Fatalf("second create: %v", err)
	}
	if typ, _, _ := s.Pool().PmapAt(10, 10); typ != element.IDDust {
		t.Fatalf("expected DUST to remain, got %v", typ)
	}
}

func TestCreatePartReplaceModeOnlyMatchesSelected(t *testing.T) {
	s := newTestSim(t)
	CreatePart(s, 10, 10, element.IDDust, Flags{})
	flags := Flags{ReplaceMode: true, ReplaceModeSelected: element.IDWatr}
	CreatePart(s, 10, 10, element.IDGlas, flags)
	if typ, _, _ := s.Pool().PmapAt(10, 10); typ != element.IDDust {
		t.Fatalf("expected replace to skip non-matching occupant, got %v", typ)
	}

	flags.ReplaceModeSelected = element.IDDust
	CreatePart(s, 10, 10, element.IDGlas, flags)
	if typ, _, _ := s.Pool().PmapAt(10, 10); typ != element.IDGlas {
		t.Fatalf("expected replace to overwrite matching occupant, got %v", typ)
	}
}

func TestCreateBoxFillsRectangle(t *testing.T) {
	s := newTestSim(t)
	if err := CreateBox(s, 5, 5, 8, 7, element.IDDust, Flags{}); err != nil {
		t.Fatalf("CreateBox: %v", err)
	}
	for y := 5; y <= 7; y++ {
		for x := 5; x <= 8; x++ {
			if typ, _, ok := s.Pool().PmapAt(x, y); !ok || typ != element.IDDust {
				t.Fatalf("expected DUST at (%d,%d), got %v ok=%v", x, y, typ, ok)
			}
		}
	}
}

func TestFloodPartsFillsConnectedVacantRegion(t *testing.T) {
	s := newTestSim(t)
	// ring a 5x5 vacant island with DUST so the flood has a bounded component
	if err := CreateRect(s, 0, 0, 6, 6, element.IDDust, Flags{}); err != nil {
		t.Fatalf("CreateRect: %v", err)
	}

	if err := FloodParts(s, 5, 3, element.IDWatr, Flags{}); err != nil {
		t.Fatalf("FloodParts: %v", err)
	}
	if typ, _, ok := s.Pool().PmapAt(1, 1); !ok || typ != element.IDWatr {
		t.Fatalf("expected flood to reach (1,1), got %v ok=%v", typ, ok)
	}
}

func TestApplyDecorationSetAndClear(t *testing.T) {
	s := newTestSim(t)
	CreatePart(s, 3, 3, element.IDDust, Flags{})
	ApplyDecoration(s, 3, 3, 0x80FF0000, BlendSet, config.ColorSRGB)
	_, idx, _ := s.Pool().PmapAt(3, 3)
	if s.Pool().Particle(idx).Dcolour != 0x80FF0000 {
		t.Fatalf("expected decoration set, got %#x", s.Pool().Particle(idx).Dcolour)
	}
	ApplyDecoration(s, 3, 3, 0, BlendClear, config.ColorSRGB)
	if s.Pool().Particle(idx).Dcolour != 0 {
		t.Fatalf("expected decoration cleared, got %#x", s.Pool().Particle(idx).Dcolour)
	}
}

func TestClearAreaRemovesParticles(t *testing.T) {
	s := newTestSim(t)
	CreateBox(s, 10, 10, 12, 12, element.IDDust, Flags{})
	ClearArea(s, 10, 10, 3, 3)
	for y := 10; y <= 12; y++ {
		for x := 10; x <= 12; x++ {
			if _, _, ok := s.Pool().PmapAt(x, y); ok {
				t.Fatalf("expected (%d,%d) cleared", x, y)
			}
		}
	}
}
