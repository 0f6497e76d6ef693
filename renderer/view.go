// Package renderer implements spec.md §4.J: a pure function from an
// immutable RenderableSimulation view to an ARGB8888 Frame. It never touches
// pmap/photons or any sim-owned mutex (spec.md §9 "Renderer ↔ sim
// decoupling") — everything it reads comes from the small, copyable View
// struct below, the way the teacher's renderer package (package renderer,
// _examples/pthm-soup) takes plain value snapshots rather than live
// ecosystem state.
package renderer

import (
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/grid"
	"github.com/pthm-cable/cellsand/update"
)

// View is the copyable subset of simulation state the renderer is allowed
// to see (spec.md §3, §4.J, §9). It is built once per frame from a *Sim
// under the sim lock and handed to the renderer thread, which from then on
// owns it exclusively.
type View struct {
	Cx, Cy, Cell int

	Particles []grid.Particle // index-aligned with the pool; vacant slots have Type 0
	Bmap      []grid.WallType
	Emap      []int32

	Pv, Vx, Vy, Hv []float32 // only read when an air overlay is active

	GravMass []float32 // Newtonian gravity mass field, for the WARP overlay

	AmbientTemp float32

	// UseLuaCallbacks mirrors the source's field of the same name: an
	// explicit "no scripting on the renderer thread" capability toggle
	// (spec.md §9). The renderer never calls into Lua; this is carried
	// purely so a caller constructing a View can see the guarantee spelled
	// out rather than assumed.
	UseLuaCallbacks bool
}

// Snapshot builds a View from sim's current state. The caller is expected
// to hold sim's edit lock while calling this, per spec.md §4.K step 3 — the
// renderer thread then works from the returned copy with no further
// coordination.
func Snapshot(sim *update.Sim, reg *element.Registry) View {
	pool := sim.Pool()
	walls := sim.Walls()
	air := sim.Air()
	grav := sim.Gravity()

	n := pool.Cap()
	particles := make([]grid.Particle, n)
	for i := 0; i < n; i++ {
		particles[i] = *pool.Particle(i)
	}

	v := View{
		Cx: walls.Cx, Cy: walls.Cy, Cell: sim.Cfg.Applied.Grid.Cell,
		Particles:   particles,
		Bmap:        append([]grid.WallType(nil), walls.Bmap...),
		Emap:        append([]int32(nil), walls.Emap...),
		AmbientTemp: sim.Cfg.Applied.Runtime.AmbientTemp,
	}
	if air != nil {
		v.Pv = append([]float32(nil), air.Pv...)
		v.Vx = append([]float32(nil), air.Vx...)
		v.Vy = append([]float32(nil), air.Vy...)
		v.Hv = append([]float32(nil), air.Hv...)
	}
	if grav != nil {
		v.GravMass = append([]float32(nil), grav.Mass...)
	}
	return v
}
