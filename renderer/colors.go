package renderer

import "github.com/pthm-cable/cellsand/grid"

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// blend mixes src over dst by alpha in [0,1], channel by channel, keeping
// alpha fixed at 255 (spec.md §6 "alpha = 255 for all pixels by
// convention").
func blend(dst, src uint32, alpha float32) uint32 {
	a := clamp01(alpha)
	mix := func(shift uint) uint32 {
		d := float32((dst >> shift) & 0xFF)
		s := float32((src >> shift) & 0xFF)
		return uint32(d+(s-d)*a) & 0xFF
	}
	return 0xFF000000 | mix(16)<<16 | mix(8)<<8 | mix(0)
}

func dim(argb uint32, factor float32) uint32 {
	return blend(0xFF000000, argb, factor)
}

// heatColor maps temp linearly across [lo,hi] onto a blue→red ramp.
func heatColor(temp, lo, hi float32) uint32 {
	if hi <= lo {
		return 0xFF808080
	}
	t := clamp01((temp - lo) / (hi - lo))
	r := uint32(t * 255)
	b := uint32((1 - t) * 255)
	g := uint32((1 - abs32(t-0.5)*2) * 180)
	return 0xFF000000 | r<<16 | g<<8 | b
}

// lifeColor maps a particle's remaining life onto a green→red ramp; life
// values are element-specific so this is a relative visualization, not an
// absolute one.
func lifeColor(life int32) uint32 {
	if life < 0 {
		life = 0
	}
	if life > 255 {
		life = 255
	}
	g := uint32(life)
	r := 255 - g
	return 0xFF000000 | r<<16 | g<<8
}

// classColor gives BASIC color mode a flat, capability-keyed palette so
// solids/liquids/gases/energy are visually distinguishable without reading
// each element's actual Color field.
func classColor(c grid.Class) uint32 {
	switch {
	case c.Has(grid.ClassEnergy):
		return 0xFFFFFF80
	case c.Has(grid.ClassGas):
		return 0xFFA0A0C0
	case c.Has(grid.ClassLiquid):
		return 0xFF4080C0
	case c.Has(grid.ClassSolid):
		return 0xFF808080
	default:
		return 0xFFC0C0C0
	}
}

func pressureColor(pv float32) uint32 {
	if pv >= 0 {
		return 0xFFFF4040
	}
	return 0xFF4040FF
}

func velocityColor(speed float32) uint32 {
	t := clamp01(speed / 4)
	g := uint32(t * 255)
	return 0xFF000000 | g<<8
}

func glowColor(intensity float32) uint32 {
	t := clamp01(intensity / 8)
	r := uint32(255)
	g := uint32(t * 180)
	return 0xFF000000 | r<<16 | g<<8
}
