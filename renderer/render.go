package renderer

import (
	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/grid"
)

// Renderer turns a View into a Frame (spec.md §4.J). It owns the
// accumulation planes for the FIRE and PERS overlays and the autoscaled
// heat-display limits, all of which persist across frames until
// ClearAccumulation is called.
type Renderer struct {
	reg      *element.Registry
	settings Settings

	fireAccum    []float32 // per-pixel glow accumulation
	persistAccum []uint32  // per-pixel last-seen color for the PERS trail

	heatLo, heatHi float32 // autoscaled display bounds, smoothed frame to frame
}

// New returns a Renderer with DefaultSettings.
func New(reg *element.Registry) *Renderer {
	return &Renderer{
		reg:      reg,
		settings: DefaultSettings(),
		heatLo:   config.MinTemp,
		heatHi:   config.MaxTemp,
	}
}

// SetSettings replaces the active render settings.
func (r *Renderer) SetSettings(s Settings) { r.settings = s }

// Settings returns the active render settings.
func (r *Renderer) Settings() Settings { return r.settings }

// ClearAccumulation resets the FIRE and PERS accumulation planes and the
// heat autoscale, per spec.md §4.J "the ClearAccumulation contract must be
// honored on sim clear or scenario change".
func (r *Renderer) ClearAccumulation() {
	r.fireAccum = nil
	r.persistAccum = nil
	r.heatLo, r.heatHi = config.MinTemp, config.MaxTemp
}

// Render paints view into a fresh Frame at pixel resolution (spec.md §4.J,
// §6 "Renderer output").
func (r *Renderer) Render(view View) *Frame {
	px, py := view.Cx*view.Cell, view.Cy*view.Cell
	if px == 0 || py == 0 {
		px, py = view.Cx, view.Cy
	}
	frame := newFrame(px, py)
	r.ensureAccum(px, py)

	background := uint32(0xFF000000)
	for i := range frame.Pix {
		frame.Pix[i] = background
	}

	r.autoscaleHeat(view)
	r.paintOverlays(frame, view)
	r.paintParticles(frame, view)
	r.decayAccumulation()

	return frame
}

// paintOverlays draws the cell-resolution field overlays (spec.md §4.J
// AIRP/AIRV/AIRH/WARP), upsampling each cell to its Cell×Cell block of
// pixels. AIRC and EFFE overlays are a UI-layer concern (wall conduction
// highlighting and effect-particle compositing happen above the core
// frame) and are not painted here.
func (r *Renderer) paintOverlays(frame *Frame, view View) {
	if view.Cell <= 0 {
		return
	}
	cell := view.Cell

	paintCell := func(cx, cy int, argb uint32, alpha float32) {
		x0, y0 := cx*cell, cy*cell
		for dy := 0; dy < cell; dy++ {
			for dx := 0; dx < cell; dx++ {
				x, y := x0+dx, y0+dy
				if x >= frame.Cx || y >= frame.Cy {
					continue
				}
				frame.set(x, y, blend(frame.at(x, y), argb, alpha))
			}
		}
	}

	if r.settings.Overlay.Has(OverlayAirP) && len(view.Pv) == view.Cx*view.Cy {
		for cy := 0; cy < view.Cy; cy++ {
			for cx := 0; cx < view.Cx; cx++ {
				v := view.Pv[cy*view.Cx+cx]
				paintCell(cx, cy, pressureColor(v), 0.4)
			}
		}
	}
	if r.settings.Overlay.Has(OverlayAirV) && len(view.Vx) == view.Cx*view.Cy {
		for cy := 0; cy < view.Cy; cy++ {
			for cx := 0; cx < view.Cx; cx++ {
				i := cy*view.Cx + cx
				speed := abs32(view.Vx[i]) + abs32(view.Vy[i])
				paintCell(cx, cy, velocityColor(speed), 0.35)
			}
		}
	}
	if r.settings.Overlay.Has(OverlayAirH) && len(view.Hv) == view.Cx*view.Cy {
		for cy := 0; cy < view.Cy; cy++ {
			for cx := 0; cx < view.Cx; cx++ {
				v := view.Hv[cy*view.Cx+cx]
				paintCell(cx, cy, heatColor(v, r.heatLo, r.heatHi), 0.35)
			}
		}
	}
	if r.settings.Overlay.Has(OverlayWarp) && len(view.GravMass) == view.Cx*view.Cy {
		for cy := 0; cy < view.Cy; cy++ {
			for cx := 0; cx < view.Cx; cx++ {
				m := view.GravMass[cy*view.Cx+cx]
				if m <= 0 {
					continue
				}
				paintCell(cx, cy, 0xFF8040FF, clamp01(m/config.MaxPressure))
			}
		}
	}

	if size := r.settings.GridOverlaySize; size > 0 {
		paintGridLines(frame, cell*size)
	}
}

func paintGridLines(frame *Frame, stride int) {
	if stride <= 0 {
		return
	}
	for y := 0; y < frame.Cy; y += stride {
		for x := 0; x < frame.Cx; x++ {
			frame.set(x, y, blend(frame.at(x, y), 0xFF404040, 0.5))
		}
	}
	for x := 0; x < frame.Cx; x += stride {
		for y := 0; y < frame.Cy; y++ {
			frame.set(x, y, blend(frame.at(x, y), 0xFF404040, 0.5))
		}
	}
}

func (r *Renderer) ensureAccum(px, py int) {
	n := px * py
	if len(r.fireAccum) != n {
		r.fireAccum = make([]float32, n)
	}
	if len(r.persistAccum) != n {
		r.persistAccum = make([]uint32, n)
	}
}

// autoscaleHeat tracks the min/max live particle temperature, smoothed
// exponentially so the HEAT color mode doesn't flicker frame to frame.
func (r *Renderer) autoscaleHeat(view View) {
	if r.settings.ColorMode != ColorHeat && !r.settings.Overlay.Has(OverlayAirH) {
		return
	}
	lo, hi := config.MaxTemp, config.MinTemp
	found := false
	for i := range view.Particles {
		p := &view.Particles[i]
		if p.IsVacant() {
			continue
		}
		found = true
		if p.Temp < lo {
			lo = p.Temp
		}
		if p.Temp > hi {
			hi = p.Temp
		}
	}
	if !found {
		return
	}
	const smoothing = 0.1
	r.heatLo += (lo - r.heatLo) * smoothing
	r.heatHi += (hi - r.heatHi) * smoothing
	if r.heatHi-r.heatLo < 1 {
		r.heatHi = r.heatLo + 1
	}
}

func (r *Renderer) paintParticles(frame *Frame, view View) {
	for i := range view.Particles {
		p := &view.Particles[i]
		if p.IsVacant() {
			continue
		}
		x, y := int(p.X), int(p.Y)
		if x < 0 || x >= frame.Cx || y < 0 || y >= frame.Cy {
			continue
		}

		argb := r.colorFor(p)

		if r.settings.FindingElement != 0 && p.Type != r.settings.FindingElement {
			argb = dim(argb, 0.25)
		}

		if r.settings.Decoration != DecorationDisabled && p.Dcolour != 0 {
			level := float32(0.5)
			if r.settings.Decoration == DecorationAnticlickbait {
				level = 0.2
			}
			argb = blend(argb, p.Dcolour, level)
		}

		frame.set(x, y, argb)

		if r.settings.Mode.Has(ModeFire) {
			idx := y*frame.Cx + x
			if e := r.reg.Get(p.Type); e != nil && e.Class.Has(grid.ClassHotGlow) {
				r.fireAccum[idx] += 1
			}
		}
		if r.settings.Overlay.Has(OverlayPersistent) {
			r.persistAccum[y*frame.Cx+x] = argb
		}
	}

	if r.settings.Mode.Has(ModeFire) {
		r.paintFireAccum(frame)
	}
	if r.settings.Overlay.Has(OverlayPersistent) {
		r.paintPersistAccum(frame)
	}
}

func (r *Renderer) colorFor(p *grid.Particle) uint32 {
	e := r.reg.Get(p.Type)
	if e == nil {
		return 0
	}

	if e.Graphics != nil {
		argb, _ := e.Graphics(p, int(r.settings.ColorMode))
		return argb
	}

	switch r.settings.ColorMode {
	case ColorHeat:
		return heatColor(p.Temp, r.heatLo, r.heatHi)
	case ColorLife:
		return lifeColor(p.Life)
	case ColorBasic:
		return classColor(e.Class)
	default:
		return e.Color
	}
}

func (r *Renderer) paintFireAccum(frame *Frame) {
	for i, v := range r.fireAccum {
		if v <= 0 {
			continue
		}
		glow := glowColor(v)
		x, y := i%frame.Cx, i/frame.Cx
		frame.set(x, y, blend(frame.at(x, y), glow, clamp01(v/8)))
	}
}

func (r *Renderer) paintPersistAccum(frame *Frame) {
	for i, c := range r.persistAccum {
		if c == 0 {
			continue
		}
		x, y := i%frame.Cx, i/frame.Cx
		frame.set(x, y, blend(frame.at(x, y), c, 0.35))
	}
}

func (r *Renderer) decayAccumulation() {
	const fireDecay = 0.92
	const persistDecay = 0.985
	for i := range r.fireAccum {
		r.fireAccum[i] *= fireDecay
		if r.fireAccum[i] < 0.01 {
			r.fireAccum[i] = 0
		}
	}
	for i, c := range r.persistAccum {
		if c == 0 {
			continue
		}
		r.persistAccum[i] = blend(c, 0, 1-persistDecay)
	}
}
