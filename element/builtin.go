package element

import (
	"github.com/pthm-cable/cellsand/grid"
)

// Built-in classic element ids. A real build carries several hundred; this
// spec's reference registry carries the representative set exercised by
// the testable scenarios of spec.md §8 (movement, phase transitions,
// photon refraction, conduction) rather than the full historical catalog.
const (
	IDDust grid.ElementID = iota + 1
	IDWatr
	IDFire
	IDStem // steam
	IDGlas
	IDPhot
	IDFilt
	IDPscn
	IDNscn
	IDSprk
	IDMetl
	IDWood
	IDIce
	IDLava
	IDStne
	IDVibr // explosion product used by the stacking sweep
)

const sparkCooldown = 24

// RegisterBuiltins installs the reference element set into r.
func RegisterBuiltins(r *Registry) {
	r.Register(&Element{
		ID: IDDust, Name: "DUST", DisplayName: "Dust", Color: 0xFFC8B473,
		Density: 3.0, Weight: 80, Collision: 0, Advection: 0.1,
		DefaultTemp: 295, HeatConductivity: 0.5, Diffusion: 0,
		Class: grid.ClassSolid,
		HighTemp: &Transition{Threshold: 625, To: IDFire},
	})

	r.Register(&Element{
		ID: IDWatr, Name: "WATR", DisplayName: "Water", Color: 0xFF2030D0,
		Density: 1.0, Weight: 30, Collision: 0.1, Advection: 1.0,
		DefaultTemp: 295, HeatConductivity: 0.6, Diffusion: 0,
		Class:      grid.ClassLiquid,
		LowTemp:    &Transition{Threshold: 273, To: IDIce},
		HighTemp:   &Transition{Threshold: 373, To: IDStem},
		Callbacks: Callbacks{Update: updateWatr},
	})

	r.Register(&Element{
		ID: IDFire, Name: "FIRE", DisplayName: "Fire", Color: 0xFFFF6010,
		Density: 0.5, Weight: 5, Collision: 0, Advection: 1.3,
		DefaultTemp: 625, HeatConductivity: 0.9, Diffusion: 0.6,
		Class:        grid.ClassGas | grid.ClassHotGlow | grid.ClassPartLifeDec,
		LowTemp:      &Transition{Threshold: 375, To: TransitionDestroy},
		Flammability: 0,
		Callbacks:    Callbacks{Create: createFire, Update: updateFire},
	})

	r.Register(&Element{
		ID: IDStem, Name: "STM", DisplayName: "Steam", Color: 0xFFDFDFDF,
		Density: 0.3, Weight: 2, Collision: 0, Advection: 1.1,
		DefaultTemp: 395, HeatConductivity: 0.8, Diffusion: 0.9,
		Class:    grid.ClassGas,
		LowTemp:  &Transition{Threshold: 373, To: IDWatr},
	})

	r.Register(&Element{
		ID: IDGlas, Name: "GLAS", DisplayName: "Glass", Color: 0xFFC0D8E0,
		Density: 2.2, Weight: 90, Collision: 0, Advection: 0,
		DefaultTemp: 295, HeatConductivity: 0.2, Diffusion: 0,
		Class: grid.ClassSolid | grid.ClassRefractive,
	})

	r.Register(&Element{
		ID: IDPhot, Name: "PHOT", DisplayName: "Photon", Color: 0xFFFFFFFF,
		Density: 0, Weight: 0, Collision: 0, Advection: 0,
		DefaultTemp: 295, HeatConductivity: 0, Diffusion: 0,
		Class:     grid.ClassEnergy,
		Callbacks: Callbacks{Update: updatePhot},
	})

	r.Register(&Element{
		ID: IDFilt, Name: "FILT", DisplayName: "Filter", Color: 0xFF50A050,
		Density: 1.5, Weight: 100, Collision: 0, Advection: 0,
		DefaultTemp: 295, HeatConductivity: 0.2, Diffusion: 0,
		Class:     grid.ClassSolid | grid.ClassCtypeDraw,
		Callbacks: Callbacks{Update: updateFilt},
	})

	r.Register(&Element{
		ID: IDPscn, Name: "PSCN", DisplayName: "P-type conductor", Color: 0xFFB04040,
		Density: 2.0, Weight: 100, Collision: 0, Advection: 0,
		DefaultTemp: 295, HeatConductivity: 0.3, Diffusion: 0,
		Class:     grid.ClassSolid,
		Callbacks: Callbacks{Update: makeConductorUpdate(IDPscn)},
	})

	r.Register(&Element{
		ID: IDNscn, Name: "NSCN", DisplayName: "N-type conductor", Color: 0xFF4040B0,
		Density: 2.0, Weight: 100, Collision: 0, Advection: 0,
		DefaultTemp: 295, HeatConductivity: 0.3, Diffusion: 0,
		Class:     grid.ClassSolid,
		Callbacks: Callbacks{Update: makeConductorUpdate(IDNscn)},
	})

	r.Register(&Element{
		ID: IDSprk, Name: "SPRK", DisplayName: "Spark", Color: 0xFFFFFF80,
		Density: 2.0, Weight: 100, Collision: 0, Advection: 0,
		DefaultTemp: 295, HeatConductivity: 0, Diffusion: 0,
		Class:     grid.ClassSolid | grid.ClassPowered | grid.ClassHotGlow,
		Callbacks: Callbacks{Create: createSpark, Update: updateSpark},
	})

	r.Register(&Element{
		ID: IDMetl, Name: "METL", DisplayName: "Metal", Color: 0xFFA0A0A0,
		Density: 7.8, Weight: 100, Collision: 0, Advection: 0,
		DefaultTemp: 295, HeatConductivity: 0.7, Diffusion: 0,
		Class:    grid.ClassSolid,
		HighTemp: &Transition{Threshold: 1700, To: TransitionDestroy},
	})

	r.Register(&Element{
		ID: IDWood, Name: "WOOD", DisplayName: "Wood", Color: 0xFF804020,
		Density: 0.7, Weight: 90, Collision: 0, Advection: 0,
		DefaultTemp: 295, HeatConductivity: 0.2, Diffusion: 0,
		Class:        grid.ClassSolid,
		HighTemp:     &Transition{Threshold: 575, To: IDFire},
		Flammability: 20,
	})

	r.Register(&Element{
		ID: IDIce, Name: "ICE", DisplayName: "Ice", Color: 0xFFA0D0F0,
		Density: 0.9, Weight: 80, Collision: 0, Advection: 0,
		DefaultTemp: 255, HeatConductivity: 0.4, Diffusion: 0,
		Class:    grid.ClassSolid,
		HighTemp: &Transition{Threshold: 273, To: IDWatr},
	})

	r.Register(&Element{
		ID: IDLava, Name: "LAVA", DisplayName: "Lava", Color: 0xFFE05000,
		Density: 4.0, Weight: 100, Collision: 0, Advection: 0.3,
		DefaultTemp: 1700, HeatConductivity: 0.9, Diffusion: 0,
		Class:   grid.ClassLiquid | grid.ClassHotGlow,
		LowTemp: &Transition{Threshold: 973, To: IDStne},
	})

	r.Register(&Element{
		ID: IDStne, Name: "STNE", DisplayName: "Stone", Color: 0xFF808080,
		Density: 3.0, Weight: 100, Collision: 0, Advection: 0,
		DefaultTemp: 295, HeatConductivity: 0.3, Diffusion: 0,
		Class:    grid.ClassSolid,
		HighTemp: &Transition{Threshold: 1400, To: IDLava},
	})

	r.Register(&Element{
		ID: IDVibr, Name: "VIBR", DisplayName: "Explosion debris", Color: 0xFFFFA000,
		Density: 0.2, Weight: 5, Collision: 0, Advection: 1.5,
		DefaultTemp: 600, HeatConductivity: 0.5, Diffusion: 0,
		Class:    grid.ClassGas | grid.ClassPartLifeDec,
		LowTemp:  &Transition{Threshold: 300, To: TransitionDestroy},
	})
}

func createFire(ctx Context, i, x, y int, t grid.ElementID, v float32) {
	ctx.Pool().Particle(i).Life = 50
}

func updateFire(ctx Context, i, x, y int, s Surroundings) UpdateResult {
	p := ctx.Pool().Particle(i)
	p.Life--
	if p.Life <= 0 {
		return UpdateResult{DestroySelf: true}
	}
	return UpdateResult{}
}

// updateWatr turns the WATR itself into STM when a FIRE particle is
// adjacent, setting that FIRE's Life to 0: the WATR+FIRE->STM interaction
// of spec.md §8 scenario E2.
func updateWatr(ctx Context, i, x, y int, s Surroundings) UpdateResult {
	pool := ctx.Pool()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nt, nidx, ok := pool.PmapAt(x+dx, y+dy)
			if ok && nt == IDFire {
				pool.Particle(nidx).Life = 0
				ctx.ChangeType(i, x, y, IDStem)
				return UpdateResult{}
			}
		}
	}
	return UpdateResult{}
}

// updatePhot fades a photon's remaining life; bounce/refraction against
// GLAS is handled by the dispatcher's movement code (package update),
// which needs the full PlanMove swept-segment context, not just a single
// cell's neighborhood.
func updatePhot(ctx Context, i, x, y int, s Surroundings) UpdateResult {
	p := ctx.Pool().Particle(i)
	if p.Life > 0 {
		p.Life--
		if p.Life == 0 {
			return UpdateResult{DestroySelf: true}
		}
	}
	return UpdateResult{}
}

// FiltMode values for Particle.Tmp on a FILT particle (spec.md §8
// scenario E5 "tmp=2 (OR filter)").
const (
	FiltSet FiltMode = iota
	FiltAnd
	FiltOr
	FiltXor
)

type FiltMode = int32

// updateFilt applies the configured bitwise op between the FILT's Ctype
// mask and any photon occupying the same cell.
func updateFilt(ctx Context, i, x, y int, s Surroundings) UpdateResult {
	filt := ctx.Pool().Particle(i)
	_, photIdx, ok := ctx.Pool().PhotonAt(x, y)
	if !ok {
		return UpdateResult{}
	}
	phot := ctx.Pool().Particle(photIdx)
	switch filt.Tmp {
	case FiltAnd:
		phot.Ctype &= filt.Ctype
	case FiltOr:
		phot.Ctype |= filt.Ctype
	case FiltXor:
		phot.Ctype ^= filt.Ctype
	default:
		phot.Ctype = filt.Ctype
	}
	return UpdateResult{}
}

func createSpark(ctx Context, i, x, y int, t grid.ElementID, v float32) {
	p := ctx.Pool().Particle(i)
	p.Life = 4
}

// updateSpark decrements a spark's life. Once exhausted it reverts to its
// stored conductor type (PSCN when none is stored) and does nothing else;
// while still active it sparks every adjacent PSCN or NSCN whose emap
// cooldown is zero, following spec.md §8 scenario E6 and the emap cooldown
// model of spec.md §3/§4.D.
func updateSpark(ctx Context, i, x, y int, s Surroundings) UpdateResult {
	p := ctx.Pool().Particle(i)
	p.Life--
	if p.Life <= 0 {
		origin := grid.ElementID(p.Ctype)
		if origin == 0 {
			origin = IDPscn
		}
		ctx.ChangeType(i, x, y, origin)
		return UpdateResult{}
	}
	pool := ctx.Pool()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			nt, nidx, ok := pool.PmapAt(nx, ny)
			if !ok || (nt != IDPscn && nt != IDNscn) {
				continue
			}
			if ctx.Walls().EmapAt(nx, ny) != 0 {
				continue
			}
			neighbor := pool.Particle(nidx)
			neighbor.Ctype = int32(nt)
			ctx.ChangeType(nidx, nx, ny, IDSprk)
			ctx.Walls().Spark(nx, ny, sparkCooldown)
		}
	}
	return UpdateResult{}
}

// makeConductorUpdate returns an Update callback for a conductor element
// that ignites into SPRK when touched by an already-active spark and its
// own cell's emap cooldown has expired.
func makeConductorUpdate(self grid.ElementID) func(Context, int, int, int, Surroundings) UpdateResult {
	return func(ctx Context, i, x, y int, s Surroundings) UpdateResult {
		if ctx.Walls().EmapAt(x, y) != 0 {
			return UpdateResult{}
		}
		pool := ctx.Pool()
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nt, _, ok := pool.PmapAt(x+dx, y+dy)
				if ok && nt == IDSprk {
					p := pool.Particle(i)
					p.Ctype = int32(self)
					ctx.ChangeType(i, x, y, IDSprk)
					ctx.Walls().Spark(x, y, sparkCooldown)
					return UpdateResult{}
				}
			}
		}
		return UpdateResult{}
	}
}
