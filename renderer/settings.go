package renderer

import "github.com/pthm-cable/cellsand/grid"

// Mode is the bitset of render-mode flags from spec.md §4.J.
type Mode uint32

const (
	ModeBasic Mode = 1 << iota
	ModeEffect
	ModeFire
	ModeGlow
	ModeBlur
	ModeBlob
	ModeSpark
)

func (m Mode) Has(f Mode) bool { return m&f != 0 }

// Overlay is the bitset of display overlays from spec.md §4.J.
type Overlay uint32

const (
	OverlayAirC Overlay = 1 << iota // air/wall conduction
	OverlayAirP                     // pressure
	OverlayAirV                     // velocity
	OverlayAirH                     // ambient heat
	OverlayWarp                     // Newtonian gravity mass field
	OverlayPersistent                // persistent particle paths
	OverlayEffect                    // effect particles
)

func (o Overlay) Has(f Overlay) bool { return o&f != 0 }

// ColorMode selects how a particle's base pixel color is computed.
type ColorMode int

const (
	ColorDefault ColorMode = iota
	ColorHeat
	ColorLife
	ColorGradient
	ColorBasic
)

// DecorationLevel controls whether and how much of a particle's Dcolour is
// blended into its rendered pixel (spec.md §4.J).
type DecorationLevel int

const (
	DecorationDisabled DecorationLevel = iota
	DecorationAnticlickbait
	DecorationEnabled
)

// Settings is the renderer's per-frame configuration (spec.md §4.J).
type Settings struct {
	Mode            Mode
	Overlay         Overlay
	ColorMode       ColorMode
	GridOverlaySize int
	Decoration      DecorationLevel

	// FindingElement, when non-zero, dims every particle whose type does
	// not match it (spec.md §4.J "findingElement hint").
	FindingElement grid.ElementID
}

// DefaultSettings matches the source's out-of-the-box display: BASIC mode,
// no overlays, default coloring, decoration on.
func DefaultSettings() Settings {
	return Settings{
		Mode:       ModeBasic,
		ColorMode:  ColorDefault,
		Decoration: DecorationEnabled,
	}
}
