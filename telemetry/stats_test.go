package telemetry

import (
	"os"
	"path/filepath"
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
	return update.NewSim(config.NewSim(cfg), reg, 1)
}

func TestCollectCountsParticles(t *testing.T) {
	sim := newTestSim(t)
	for i := 0; i < 5; i++ {
		if _, err := sim.CreatePart(-2, 8+i, 4, element.IDDust); err != nil {
			t.Fatalf("create dust: %v", err)
		}
	}
	stats := Collect(sim, 0)
	if stats.TotalParticles != 5 {
		t.Fatalf("expected 5 particles, got %d", stats.TotalParticles)
	}
	if stats.Tick != sim.Tick() {
		t.Fatalf("expected stats.Tick == sim.Tick()")
	}
}

func TestElementBreakdown(t *testing.T) {
	sim := newTestSim(t)
	sim.CreatePart(-2, 4, 4, element.IDDust)
	sim.CreatePart(-2, 5, 4, element.IDWatr)
	sim.CreatePart(-2, 6, 4, element.IDWatr)

	counts := ElementBreakdown(sim)
	if counts[element.IDDust] != 1 || counts[element.IDWatr] != 2 {
		t.Fatalf("unexpected breakdown: %+v", counts)
	}
}

func TestBookmarkDetectorPopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(5)
	for tick := int64(0); tick < 6; tick++ {
		bd.Check(TickStats{Tick: tick, TotalParticles: 100})
	}
	found := bd.Check(TickStats{Tick: 6, TotalParticles: 10})
	crashed := false
	for _, b := range found {
		if b.Type == BookmarkPopulationCrash {
			crashed = true
		}
	}
	if !crashed {
		t.Fatalf("expected a population crash bookmark, got %+v", found)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	if err := om.WriteStats(TickStats{Tick: 1, TotalParticles: 3}); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkPressureSpike, Tick: 1, Description: "test"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "stats.csv")); err != nil {
		t.Fatalf("stats.csv missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bookmarks.csv")); err != nil {
		t.Fatalf("bookmarks.csv missing: %v", err)
	}
}

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil, nil for empty dir, got %v, %v", om, err)
	}
}
