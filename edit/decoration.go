package edit

import (
	"math"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/update"
)

// BlendMode selects how ApplyDecoration combines a new ARGB word with a
// particle's existing decoration (spec.md §4.F).
type BlendMode int

const (
	BlendSet BlendMode = iota
	BlendAdd
	BlendSub
	BlendMul
	BlendDiv
	BlendClear
	BlendSmudge
)

func argb(c uint32) (a, r, g, b uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func packARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// toLinear converts an 8-bit channel to a [0,1] linear-light value for the
// given color space, so blending math happens in linear space regardless of
// the display encoding the decoration is stored/edited in.
func toLinear(v uint8, space config.ColorSpace) float64 {
	x := float64(v) / 255
	switch space {
	case config.ColorLinear:
		return x
	case config.ColorGamma22:
		return math.Pow(x, 2.2)
	case config.ColorGamma18:
		return math.Pow(x, 1.8)
	default: // sRGB
		if x <= 0.04045 {
			return x / 12.92
		}
		return math.Pow((x+0.055)/1.055, 2.4)
	}
}

func fromLinear(v float64, space config.ColorSpace) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	var x float64
	switch space {
	case config.ColorLinear:
		x = v
	case config.ColorGamma22:
		x = math.Pow(v, 1/2.2)
	case config.ColorGamma18:
		x = math.Pow(v, 1/1.8)
	default: // sRGB
		if v <= 0.0031308 {
			x = v * 12.92
		} else {
			x = 1.055*math.Pow(v, 1/2.4) - 0.055
		}
	}
	return uint8(x*255 + 0.5)
}

// blendChannel applies mode to one channel pair in linear space, for every
// mode except set/clear which operate directly on the encoded byte (set
// replaces verbatim; clear is mode-independent of space).
func blendChannel(mode BlendMode, dst, src uint8, space config.ColorSpace) uint8 {
	switch mode {
	case BlendSet:
		return src
	case BlendClear:
		return 0
	}
	d, s := toLinear(dst, space), toLinear(src, space)
	var out float64
	switch mode {
	case BlendAdd:
		out = d + s
	case BlendSub:
		out = d - s
	case BlendMul:
		out = d * s
	case BlendDiv:
		if s == 0 {
			out = 1
		} else {
			out = d / s
		}
	default:
		out = d
	}
	return fromLinear(out, space)
}

// ApplyDecoration blends color into the decoration word of whatever
// particle occupies (x,y), in the given blend mode and color space. smudge
// ignores color and instead averages the 5x5 neighborhood's alpha-nonzero
// decorations.
func ApplyDecoration(s *update.Sim, x, y int, color uint32, mode BlendMode, space config.ColorSpace) {
	typ, idx, ok := s.Pool().PmapAt(x, y)
	if !ok {
		typ, idx, ok = s.Pool().PhotonAt(x, y)
	}
	if !ok {
		return
	}
	_ = typ
	p := s.Pool().Particle(idx)

	if mode == BlendSmudge {
		p.Dcolour = smudge(s, x, y, space)
		return
	}

	da, dr, dg, db := argb(p.Dcolour)
	sa, sr, sg, sb := argb(color)
	p.Dcolour = packARGB(
		blendChannel(mode, da, sa, space),
		blendChannel(mode, dr, sr, space),
		blendChannel(mode, dg, sg, space),
		blendChannel(mode, db, sb, space),
	)
}

// ApplyDecorationLine/Box/Fill are the geometric analogues of
// CreateLine/CreateBox/FloodParts for decoration, all driven through
// ApplyDecoration so blend-mode and color-space handling stays in one
// place.
func ApplyDecorationLine(s *update.Sim, x0, y0, x1, y1 int, color uint32, mode BlendMode, space config.ColorSpace) {
	walkLine(x0, y0, x1, y1, func(x, y int) error {
		ApplyDecoration(s, x, y, color, mode, space)
		return nil
	})
}

func ApplyDecorationBox(s *update.Sim, x0, y0, x1, y1 int, color uint32, mode BlendMode, space config.ColorSpace) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			ApplyDecoration(s, x, y, color, mode, space)
		}
	}
}

// ApplyDecorationFill floods the 4-connected component of particles sharing
// (x,y)'s current element type, applying decoration to each.
func ApplyDecorationFill(s *update.Sim, x, y int, color uint32, mode BlendMode, space config.ColorSpace) error {
	typ, ok := occupantAt(s, x, y, 0)
	matches := func(cx, cy int) bool {
		occ, occOk := occupantAt(s, cx, cy, 0)
		return occOk == ok && occ == typ
	}
	cells, err := floodCollect(x, y, s.Pool().X*s.Pool().Y, matches, s.Pool().X, s.Pool().Y)
	if err != nil {
		return err
	}
	for _, c := range cells {
		ApplyDecoration(s, c[0], c[1], color, mode, space)
	}
	return nil
}

// smudge averages the alpha-nonzero decoration words in the 5x5
// neighborhood around (x,y), in linear space per color space (spec.md
// §4.F "smudge averages the 5x5 neighborhood's alpha-nonzero decoration").
func smudge(s *update.Sim, x, y int, space config.ColorSpace) uint32 {
	var sa, sr, sg, sb float64
	var n int
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			typ, idx, ok := s.Pool().PmapAt(x+dx, y+dy)
			if !ok {
				typ, idx, ok = s.Pool().PhotonAt(x+dx, y+dy)
			}
			_ = typ
			if !ok {
				continue
			}
			a, r, g, b := argb(s.Pool().Particle(idx).Dcolour)
			if a == 0 {
				continue
			}
			sa += toLinear(a, space)
			sr += toLinear(r, space)
			sg += toLinear(g, space)
			sb += toLinear(b, space)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return packARGB(
		fromLinear(sa/float64(n), space),
		fromLinear(sr/float64(n), space),
		fromLinear(sg/float64(n), space),
		fromLinear(sb/float64(n), space),
	)
}
