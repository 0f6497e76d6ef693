package element

import (
	"testing"

	"github.com/pthm-cable/cellsand/grid"
)

// fakeRand is a deterministic stand-in for the per-particle RNG used by
// Context implementations; the builtin callbacks under test don't draw
// random numbers, so its methods are never exercised, but Context requires
// one be supplied.
type fakeRand struct{}

func (fakeRand) Intn(n int) int   { return 0 }
func (fakeRand) Float32() float32 { return 0 }

// fakeContext is a minimal Context for exercising builtin callbacks in
// isolation, without pulling in the full per-tick dispatcher (package
// update, not yet built at the point these tests were written).
type fakeContext struct {
	pool *grid.Pool
	reg  *Registry
	w    *grid.Walls
	tick int64
}

func newFakeContext(capacity, x, y int) *fakeContext {
	reg := newTestRegistry()
	return &fakeContext{
		pool: grid.NewPool(capacity, x, y, reg, 1),
		reg:  reg,
		w:    grid.NewWalls(x, y),
	}
}

func (f *fakeContext) Pool() *grid.Pool   { return f.pool }
func (f *fakeContext) Walls() *grid.Walls { return f.w }
func (f *fakeContext) Rand() Rand         { return fakeRand{} }
func (f *fakeContext) Tick() int64        { return f.tick }

func (f *fakeContext) CreatePart(hint, x, y int, t grid.ElementID) (int, error) {
	e := f.reg.Get(t)
	temp := float32(295)
	if e != nil {
		temp = e.DefaultTemp
	}
	return f.pool.CreatePart(hint, x, y, t, temp)
}

func (f *fakeContext) KillPart(i int) { f.pool.KillPart(i) }

func (f *fakeContext) ChangeType(i, x, y int, to grid.ElementID) bool {
	return f.pool.PartChangeType(i, x, y, to, func(i, x, y int, from, to grid.ElementID) bool {
		e := f.reg.Get(to)
		if e == nil || e.Callbacks.CreateAllowed == nil {
			return true
		}
		return e.Callbacks.CreateAllowed(f, i, x, y, to)
	})
}

var _ Context = (*fakeContext)(nil)

func TestUpdateWatrExtinguishesAdjacentFire(t *testing.T) {
	ctx := newFakeContext(8, 4, 4)
	fireIdx, err := ctx.CreatePart(-2, 2, 2, IDFire)
	if err != nil {
		t.Fatalf("create fire: %v", err)
	}
	ctx.Pool().Particle(fireIdx).Life = 10
	watrIdx, err := ctx.CreatePart(-2, 1, 1, IDWatr)
	if err != nil {
		t.Fatalf("create watr: %v", err)
	}

	updateWatr(ctx, watrIdx, 1, 1, Surroundings{})

	if typ, _, ok := ctx.Pool().PmapAt(1, 1); !ok || typ != IDStem {
		t.Fatalf("expected water cell converted to steam, got type=%v ok=%v", typ, ok)
	}
	if ctx.Pool().Particle(fireIdx).Life != 0 {
		t.Fatalf("expected adjacent fire extinguished, life=%d", ctx.Pool().Particle(fireIdx).Life)
	}
}

func TestUpdateFiltAppliesConfiguredOp(t *testing.T) {
	ctx := newFakeContext(8, 4, 4)
	filtIdx, err := ctx.CreatePart(-2, 1, 1, IDFilt)
	if err != nil {
		t.Fatalf("create filt: %v", err)
	}
	filt := ctx.Pool().Particle(filtIdx)
	filt.Tmp = FiltOr
	filt.Ctype = 0x3FFFFFFF

	photIdx, err := ctx.CreatePart(-1, 1, 1, IDPhot)
	if err != nil {
		t.Fatalf("create phot: %v", err)
	}
	ctx.Pool().Particle(photIdx).Ctype = 0x1

	updateFilt(ctx, filtIdx, 1, 1, Surroundings{})

	if got := ctx.Pool().Particle(photIdx).Ctype; got != 0x3FFFFFFF {
		t.Fatalf("expected OR-combined ctype 0x3FFFFFFF, got %#x", got)
	}
}

func TestSparkPropagatesToAdjacentConductorWhileActive(t *testing.T) {
	ctx := newFakeContext(8, 4, 4)
	pscnIdx, err := ctx.CreatePart(-2, 2, 2, IDPscn)
	if err != nil {
		t.Fatalf("create pscn: %v", err)
	}
	sprkIdx, err := ctx.CreatePart(-2, 1, 2, IDSprk)
	if err != nil {
		t.Fatalf("create sprk: %v", err)
	}
	ctx.Pool().Particle(sprkIdx).Life = 2
	ctx.Pool().Particle(sprkIdx).Ctype = int32(IDPscn)

	updateSpark(ctx, sprkIdx, 1, 2, Surroundings{})

	if typ, _, ok := ctx.Pool().PmapAt(1, 2); !ok || typ != IDSprk {
		t.Fatalf("expected spark with remaining life to stay active, got %v ok=%v", typ, ok)
	}
	if typ, _, ok := ctx.Pool().PmapAt(2, 2); !ok || typ != IDSprk {
		t.Fatalf("expected neighboring PSCN to ignite into SPRK, got %v ok=%v", typ, ok)
	}
	if ctx.Walls().EmapAt(2, 2) == 0 {
		t.Fatalf("expected spark cooldown set on ignited neighbor cell")
	}
	_ = pscnIdx
}

func TestSparkRevertsToStoredConductorWhenExhausted(t *testing.T) {
	ctx := newFakeContext(8, 4, 4)
	sprkIdx, err := ctx.CreatePart(-2, 1, 1, IDSprk)
	if err != nil {
		t.Fatalf("create sprk: %v", err)
	}
	ctx.Pool().Particle(sprkIdx).Life = 1
	ctx.Pool().Particle(sprkIdx).Ctype = int32(IDNscn)

	updateSpark(ctx, sprkIdx, 1, 1, Surroundings{})

	if typ, _, ok := ctx.Pool().PmapAt(1, 1); !ok || typ != IDNscn {
		t.Fatalf("expected exhausted spark to revert to its stored conductor type NSCN, got %v ok=%v", typ, ok)
	}
}
