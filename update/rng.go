package update

import "math/rand"

// particleRand wraps math/rand.Rand the way the teacher's systems package
// seeds one per worker/entity (systems/noise.go, systems/particle_resource.go):
// here one is derived per particle per tick, seeded from the tick's shared
// seed mixed with the particle's pool index, so a re-run of the same tick
// draws the same sequence regardless of scan order or goroutine scheduling
// (spec.md §4.E "Determinism").
type particleRand struct {
	*rand.Rand
}

func newParticleRand(tickSeed int64, index int) particleRand {
	mixed := tickSeed ^ (int64(index)*0x9E3779B97F4A7C15 + 0x1000000000000001)
	return particleRand{rand.New(rand.NewSource(mixed))}
}

func (r particleRand) Intn(n int) int      { return r.Rand.Intn(n) }
func (r particleRand) Float32() float32    { return r.Rand.Float32() }
