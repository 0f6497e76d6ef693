package grid

import "testing"

type fakeClassifier struct {
	classes  map[ElementID]Class
	density  map[ElementID]float32
}

func (f *fakeClassifier) Class(t ElementID) Class     { return f.classes[t] }
func (f *fakeClassifier) Density(t ElementID) float32 { return f.density[t] }

const (
	dust  ElementID = 1
	watr  ElementID = 2
	phot  ElementID = 3
)

func newTestPool(n, x, y int) *Pool {
	cls := &fakeClassifier{
		classes: map[ElementID]Class{
			dust: ClassSolid,
			watr: ClassLiquid,
			phot: ClassEnergy,
		},
		density: map[ElementID]float32{
			dust: 3,
			watr: 1,
			phot: 0,
		},
	}
	return NewPool(n, x, y, cls, 3)
}

func TestCreateAndKillPart(t *testing.T) {
	p := newTestPool(16, 8, 8)
	i, err := p.CreatePart(-2, 2, 2, dust, 300)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	typ, idx, ok := p.PmapAt(2, 2)
	if !ok || typ != dust || idx != i {
		t.Fatalf("pmap mismatch: typ=%v idx=%v ok=%v", typ, idx, ok)
	}
	if err := p.Invariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}

	p.KillPart(i)
	if _, _, ok := p.PmapAt(2, 2); ok {
		t.Fatalf("expected pmap cleared after kill")
	}
	if err := p.Invariants(); err != nil {
		t.Fatalf("invariants after kill: %v", err)
	}
}

func TestCreatePartExhaustion(t *testing.T) {
	p := newTestPool(2, 8, 8)
	if _, err := p.CreatePart(-2, 0, 0, dust, 300); err != nil {
		t.Fatal(err)
	}
	if _, err := p.CreatePart(-2, 1, 0, dust, 300); err != nil {
		t.Fatal(err)
	}
	if _, err := p.CreatePart(-2, 2, 0, dust, 300); err == nil {
		t.Fatal("expected PoolExhausted")
	} else if _, ok := err.(PoolExhausted); !ok {
		t.Fatalf("expected PoolExhausted, got %T", err)
	}
}

func TestCreatePartHintReuse(t *testing.T) {
	p := newTestPool(16, 8, 8)
	i, _ := p.CreatePart(-2, 3, 3, dust, 300)
	j, err := p.CreatePart(-1, 3, 3, watr, 280)
	if err != nil {
		t.Fatal(err)
	}
	if j != i {
		t.Fatalf("expected hint=-1 to reuse slot %d, got %d", i, j)
	}
	typ, _, _ := p.PmapAt(3, 3)
	if typ != watr {
		t.Fatalf("expected watr at reused cell, got %v", typ)
	}
}

func TestPartChangeType(t *testing.T) {
	p := newTestPool(16, 8, 8)
	i, _ := p.CreatePart(-2, 1, 1, dust, 300)
	ok := p.PartChangeType(i, 1, 1, watr, nil)
	if !ok {
		t.Fatal("expected change allowed")
	}
	typ, idx, found := p.PmapAt(1, 1)
	if !found || typ != watr || idx != i {
		t.Fatalf("pmap not updated after change: %v %v %v", typ, idx, found)
	}
	if p.ElementCount(dust) != 0 || p.ElementCount(watr) != 1 {
		t.Fatalf("element counts wrong: dust=%d watr=%d", p.ElementCount(dust), p.ElementCount(watr))
	}
}

func TestPartChangeTypeDenied(t *testing.T) {
	p := newTestPool(16, 8, 8)
	i, _ := p.CreatePart(-2, 1, 1, dust, 300)
	ok := p.PartChangeType(i, 1, 1, watr, func(i, x, y int, from, to ElementID) bool { return false })
	if ok {
		t.Fatal("expected change denied")
	}
	if !p.Particle(i).IsVacant() {
		t.Fatal("denied change should destroy the particle by convention")
	}
}

func TestDoMoveDisplacesLighterFluid(t *testing.T) {
	p := newTestPool(16, 8, 8)
	wi, _ := p.CreatePart(-2, 4, 4, watr, 280)
	di, _ := p.CreatePart(-2, 4, 3, dust, 300)

	moved := p.DoMove(di, 4, 3, 4, 4, nil)
	if !moved {
		t.Fatal("expected denser dust to displace water")
	}
	typ, idx, ok := p.PmapAt(4, 4)
	if !ok || typ != dust || idx != di {
		t.Fatalf("dust should now occupy (4,4): %v %v %v", typ, idx, ok)
	}
	typ, idx, ok = p.PmapAt(4, 3)
	if !ok || typ != watr || idx != wi {
		t.Fatalf("water should be displaced to (4,3): %v %v %v", typ, idx, ok)
	}
}

func TestDoMoveBlockedBySolid(t *testing.T) {
	p := newTestPool(16, 8, 8)
	p.CreatePart(-2, 2, 2, dust, 300)
	di, _ := p.CreatePart(-2, 2, 1, dust, 300)
	if p.DoMove(di, 2, 1, 2, 2, nil) {
		t.Fatal("expected move blocked by equal-density solid occupant")
	}
}

func TestEvalMoveOutOfBounds(t *testing.T) {
	p := newTestPool(16, 4, 4)
	res := p.EvalMove(dust, -1, 0, nil)
	if res.Allowed {
		t.Fatal("expected out-of-bounds move to be disallowed")
	}
}

func TestEnergyParticleSharesOccupiedCell(t *testing.T) {
	p := newTestPool(16, 8, 8)
	p.CreatePart(-2, 1, 1, dust, 300)
	res := p.EvalMove(phot, 1, 1, nil)
	if !res.Allowed {
		t.Fatal("expected energy particle to share an occupied cell")
	}
}
