// Package grid implements the particle pool, the pmap/photon index grids,
// and the wall/decoration grids that together form the dense, fixed-size
// world a simulation run operates on (spec.md §3, §4.A).
package grid

import "math"

// ElementID identifies a particle type. 0 means vacant.
type ElementID uint16

// Class is a bitset of movement-relevant capability flags for an element,
// used by the pool/movement code to decide blocking, stacking, and
// pmap-vs-photons routing. Richer per-element metadata (name, color,
// transitions, callbacks) lives in package element, which is built on top
// of this package rather than the other way around, to avoid a dependency
// cycle between "what a particle is" and "what it does".
type Class uint32

const (
	ClassEnergy Class = 1 << iota
	ClassSolid
	ClassLiquid
	ClassGas
	ClassPowered
	ClassLife
	ClassRadioactive
	ClassHotGlow
	ClassPartLifeDec
	ClassCtypeDraw
	ClassRefractive
)

func (c Class) Has(other Class) bool { return c&other != 0 }

// Particle is one record in the pool (spec.md §3 "Particle"). Ctype is a
// generic 32-bit scratch field reused by different elements for different
// purposes (an element id for most conductive/conversion elements, a wide
// wavelength/channel bitmask for photons and filters) — it is intentionally
// wider than ElementID for that reason.
type Particle struct {
	Type ElementID
	Life int32
	Ctype int32
	X, Y   float32
	VX, VY float32
	Temp   float32 // Kelvin
	Tmp, Tmp2, Tmp3, Tmp4 int32
	Flags   uint32
	Dcolour uint32 // packed ARGB
}

// IsVacant reports whether this slot holds no particle.
func (p *Particle) IsVacant() bool { return p.Type == 0 }

// PX, PY return the integer-floored cell coordinates of the particle.
func (p *Particle) PX() int { return int(math.Floor(float64(p.X))) }
func (p *Particle) PY() int { return int(math.Floor(float64(p.Y))) }
