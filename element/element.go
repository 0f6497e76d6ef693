// Package element implements the element registry (spec.md §4.D): static
// per-type metadata, transitions, and the optional behavior callbacks a
// type may hook into the per-tick dispatcher (package update).
package element

import (
	"github.com/pthm-cable/cellsand/grid"
)

// Sentinel transition targets (spec.md §3 Element: "a sentinel value means
// invoke specialized code and another means destroy").
const (
	TransitionNone    grid.ElementID = 0
	TransitionDestroy grid.ElementID = 0xFFFF
	TransitionSpecial grid.ElementID = 0xFFFE
)

// Section groups elements for menu display; purely descriptive.
type Section string

// Transition describes a pressure/temperature-triggered type change.
type Transition struct {
	Threshold float32
	To        grid.ElementID // TransitionDestroy / TransitionSpecial / 0 (none) / a real id
}

// Surroundings is the read-only neighborhood view passed to Update
// callbacks (spec.md §3 Element "Update(sim,i,x,y,surroundings)").
type Surroundings struct {
	Pressure    float32
	VelX, VelY  float32
	AmbientTemp float32
	Neighbors8  [8]NeighborCell
}

// NeighborCell is one of the eight cells around a particle's position.
type NeighborCell struct {
	Type    grid.ElementID
	Index   int
	Present bool
}

// UpdateResult signals whether an Update callback destroyed its own
// particle, matching spec.md §4.E "Update callbacks may signal 'destroy
// self' by returning a convention value; ... Exceptions are never used".
type UpdateResult struct {
	DestroySelf bool
}

// Context is implemented by the per-tick dispatcher (package update) and
// gives element callbacks everything they need without package element
// importing update (which would create a cycle, since update necessarily
// imports element to read the registry).
type Context interface {
	Pool() *grid.Pool
	Walls() *grid.Walls
	CreatePart(hint, x, y int, t grid.ElementID) (int, error)
	KillPart(i int)
	ChangeType(i, x, y int, to grid.ElementID) bool
	Rand() Rand
	Tick() int64
}

// Rand is the minimal per-particle RNG surface used by element callbacks,
// matching spec.md §4.E "RNG draws are per-particle with a thread-local
// fast PRNG seeded from the shared state at tick start".
type Rand interface {
	Intn(n int) int
	Float32() float32
}

// Callbacks holds the optional per-element hooks of spec.md §3 Element.
type Callbacks struct {
	Update        func(ctx Context, i, x, y int, s Surroundings) UpdateResult
	CreateAllowed func(ctx Context, i, x, y int, t grid.ElementID) bool
	ChangeType    func(ctx Context, i, x, y int, from, to grid.ElementID)
	Create        func(ctx Context, i, x, y int, t grid.ElementID, v float32)
}

// Graphics computes the display pixel for a particle; kept separate from
// Callbacks since the renderer (package renderer) is the only caller and
// it never needs the other hooks.
type Graphics func(p *grid.Particle, colorMode int) (argb uint32, flags uint32)

// Element is the static per-type metadata table entry (spec.md §3
// "Element").
type Element struct {
	ID           grid.ElementID
	Name         string
	DisplayName  string
	Color        uint32 // packed ARGB
	Section      Section

	Density        float32
	Weight         float32
	Collision      float32 // 0 = no bounce, 1 = full bounce
	Advection      float32
	DefaultTemp    float32
	HeatConductivity float32
	Diffusion      float32

	LowPressure   *Transition
	HighPressure  *Transition
	LowTemp       *Transition
	HighTemp      *Transition

	Flammability float32
	Explosivity  float32

	Class grid.Class // capability bitset (spec.md §3 "bitset of capability properties")

	Callbacks Callbacks
	Graphics  Graphics
}

// MaxClassicElements is the configurable threshold below which ids are
// "classic" hand-coded elements; ids at or above it are reserved for
// Game-of-Life pseudo-elements (spec.md §4.D).
const MaxClassicElements = 256
