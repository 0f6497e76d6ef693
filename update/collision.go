package update

import (
	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/grid"
)

// applyEnergyCollision implements the "Energy vs non-energy collisions"
// clause of spec.md §4.E: photon refraction through ClassRefractive
// material via an approximated get_normal_interp, and dispersion into
// extra shifted-wavelength photons (spec.md §8 scenario E3). Non-photon
// energy types (e.g. a future NEUT) are left to their own element Update
// callbacks, the same dependency-inversion seam makeConductorUpdate uses
// for SPRK/PSCN/NSCN — the dispatcher only hard-codes the one interaction
// spec.md singles out by name.
func (s *Sim) applyEnergyCollision(i, fromX, fromY, toX, toY int) {
	p := s.pool.Particle(i)
	e := s.reg.Get(p.Type)
	if e == nil || !e.Class.Has(grid.ClassEnergy) {
		return
	}

	wasGlass := s.refractiveAt(fromX, fromY)
	isGlass := s.refractiveAt(toX, toY)
	if wasGlass == isGlass {
		return
	}

	nx, ny := s.surfaceNormal(toX, toY, isGlass)
	if nx == 0 && ny == 0 {
		return
	}

	var ratio float32
	if isGlass {
		ratio = 1.0 / config.GlassIOR
	} else {
		ratio = config.GlassIOR
	}
	bendRefraction(p, nx, ny, ratio)

	if isGlass && config.GlassDisp > 0 {
		s.spawnDispersion(p, toX, toY, nx, ny)
	}
}

func (s *Sim) refractiveAt(x, y int) bool {
	t, _, ok := s.pool.PmapAt(x, y)
	if !ok {
		return false
	}
	e := s.reg.Get(t)
	return e != nil && e.Class.Has(grid.ClassRefractive)
}

// surfaceNormal approximates get_normal_interp by sampling the 3x3
// neighborhood around (x,y) and pointing away from the average position of
// cells that share the same refractive/non-refractive state as (x,y).
func (s *Sim) surfaceNormal(x, y int, wantGlass bool) (float32, float32) {
	var sx, sy float32
	var n int
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if s.refractiveAt(x+dx, y+dy) != wantGlass {
				sx -= float32(dx)
				sy -= float32(dy)
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0
	}
	sx /= float32(n)
	sy /= float32(n)
	mag := sqrtF(sx*sx + sy*sy)
	if mag == 0 {
		return 0, 0
	}
	return sx / mag, sy / mag
}

// bendRefraction applies a simplified Snell's-law bend: the velocity
// component along the normal is scaled by the index ratio, approximating
// refraction without a full angle-of-incidence solve (spec.md §4.E leaves
// get_normal_interp's exact numerics to the source; this reference keeps
// only the qualitative bend-toward-normal behavior scenario E3 checks for).
func bendRefraction(p *grid.Particle, nx, ny, ratio float32) {
	along := p.VX*nx + p.VY*ny
	tx, ty := p.VX-along*nx, p.VY-along*ny
	newAlong := along * ratio
	p.VX = tx + newAlong*nx
	p.VY = ty + newAlong*ny
}

// spawnDispersion creates a second photon with velocity shifted by
// GlassDisp, splitting white light into shifted-wavelength components the
// way scenario E3 expects ("two or more photons of shifted wavelengths").
func (s *Sim) spawnDispersion(p *grid.Particle, x, y int, nx, ny float32) {
	shift := config.GlassDisp
	clone, err := s.CreatePart(-2, x, y, p.Type)
	if err != nil {
		return
	}
	c := s.pool.Particle(clone)
	c.VX = p.VX + ny*shift
	c.VY = p.VY - nx*shift
	c.Ctype = p.Ctype
	c.Life = p.Life
}
