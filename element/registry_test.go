package element

import (
	"testing"

	"github.com/pthm-cable/cellsand/grid"
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

func TestRegisterBuiltinsPopulatesTable(t *testing.T) {
	r := newTestRegistry()
	if r.Get(IDDust) == nil {
		t.Fatal("expected DUST registered")
	}
	glas := r.Get(IDGlas)
	if glas == nil || !glas.Class.Has(grid.ClassRefractive) {
		t.Fatal("expected GLAS registered as refractive")
	}
}

func TestClassifierMethods(t *testing.T) {
	r := newTestRegistry()
	if r.Density(IDDust) <= r.Density(IDWatr) {
		t.Fatalf("expected dust denser than water: dust=%v watr=%v", r.Density(IDDust), r.Density(IDWatr))
	}
}

func TestCheckTransitionOrder(t *testing.T) {
	e := &Element{
		LowPressure:  &Transition{Threshold: -5, To: 99},
		HighPressure: &Transition{Threshold: 10, To: 100},
	}
	tr := e.CheckTransition(-10, 295)
	if tr == nil || tr.To != 99 {
		t.Fatalf("expected low pressure transition to fire, got %+v", tr)
	}
	tr = e.CheckTransition(20, 295)
	if tr == nil || tr.To != 100 {
		t.Fatalf("expected high pressure transition to fire, got %+v", tr)
	}
	if e.CheckTransition(0, 295) != nil {
		t.Fatal("expected no transition within range")
	}
}

func TestRegisterGolDoesNotRenumberExisting(t *testing.T) {
	r := newTestRegistry()
	id1 := r.RegisterGol("glider", GolRule{})
	id2 := r.RegisterGol("blinker", GolRule{})
	if id1 == id2 {
		t.Fatal("expected distinct ids")
	}
	r.RemoveGol(id1)
	if r.Get(id2) == nil {
		t.Fatal("removing one custom rule should not affect the other")
	}
	if !r.IsGol(id2) {
		t.Fatal("expected id2 to still be a gol rule")
	}
}
