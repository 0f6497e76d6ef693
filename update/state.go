package update

import "github.com/pthm-cable/cellsand/grid"

// FieldState is the deep-copyable form of the field grids (air, gravity,
// walls) a Sim owns, used by package snapshot to build a Snapshot without
// depending on Sim's private fields (spec.md §3 "Field grids", §4.H).
type FieldState struct {
	Cx, Cy int

	Pv, Vx, Vy, Hv     []float32 // air
	Bmap               []grid.WallType
	Emap               []int32
	Fvx, Fvy           []float32 // fan walls
	GravMask           []bool
	GravMass           []float32
	GravForceX         []float32
	GravForceY         []float32
}

// SimState is the full deep-copyable state of a running Sim: everything
// spec.md §3 "Snapshot" lists. Package snapshot and package save build their
// respective wire forms directly from this.
type SimState struct {
	Fields FieldState
	Pool   grid.PoolState

	Signs    []grid.Sign
	Portals  [grid.PortalChannels][grid.PortalPhases][grid.PortalSlots]grid.PortalParticle
	Wireless [grid.WirelessChannels]bool
	Stickmen grid.Stickmen

	Tick         int64
	NextToUpdate int
	RNGSeed      int64
	Author       string
}

// ExportState deep-copies the Sim's entire state.
func (s *Sim) ExportState() SimState {
	s.ensureWorldTables()

	cx, cy := s.walls.Cx, s.walls.Cy
	fs := FieldState{
		Cx: cx, Cy: cy,
		Pv: copyF32(s.air.Pv), Vx: copyF32(s.air.Vx), Vy: copyF32(s.air.Vy), Hv: copyF32(s.air.Hv),
		Bmap: copyWall(s.walls.Bmap), Emap: copyI32(s.walls.Emap),
		Fvx: copyF32(s.walls.Fvx), Fvy: copyF32(s.walls.Fvy),
		GravMask:   copyBool(s.walls.GravMask),
		GravMass:   copyF32(s.grav.Mass),
		GravForceX: copyF32(s.grav.ForceX),
		GravForceY: copyF32(s.grav.ForceY),
	}

	return SimState{
		Fields:       fs,
		Pool:         s.pool.Export(),
		Signs:        s.signs.Export(),
		Portals:      s.portals.Export(),
		Wireless:     s.wireless.Export(),
		Stickmen:     s.stickmen.Export(),
		Tick:         s.tick,
		NextToUpdate: s.nextToUpdate,
		RNGSeed:      s.rngSeed,
		Author:       s.author,
	}
}

// ImportState overwrites the Sim's entire state from st. The caller is
// responsible for pausing the tick around this call (spec.md §4.K
// PauseSim/ResumeSim); ImportState itself does no locking.
func (s *Sim) ImportState(st SimState) {
	s.ensureWorldTables()

	copy(s.air.Pv, st.Fields.Pv)
	copy(s.air.Vx, st.Fields.Vx)
	copy(s.air.Vy, st.Fields.Vy)
	copy(s.air.Hv, st.Fields.Hv)
	copy(s.walls.Bmap, st.Fields.Bmap)
	copy(s.walls.Emap, st.Fields.Emap)
	copy(s.walls.Fvx, st.Fields.Fvx)
	copy(s.walls.Fvy, st.Fields.Fvy)
	copy(s.walls.GravMask, st.Fields.GravMask)
	copy(s.grav.Mass, st.Fields.GravMass)
	copy(s.grav.ForceX, st.Fields.GravForceX)
	copy(s.grav.ForceY, st.Fields.GravForceY)

	s.pool.Import(st.Pool)
	s.signs.Import(st.Signs)
	s.portals.Import(st.Portals)
	s.wireless.Import(st.Wireless)
	s.stickmen.Import(st.Stickmen)

	s.tick = st.Tick
	s.nextToUpdate = st.NextToUpdate
	s.rngSeed = st.RNGSeed
	s.author = st.Author
}

func copyF32(src []float32) []float32 {
	dst := make([]float32, len(src))
	copy(dst, src)
	return dst
}

func copyI32(src []int32) []int32 {
	dst := make([]int32, len(src))
	copy(dst, src)
	return dst
}

func copyBool(src []bool) []bool {
	dst := make([]bool, len(src))
	copy(dst, src)
	return dst
}

func copyWall(src []grid.WallType) []grid.WallType {
	dst := make([]grid.WallType, len(src))
	copy(dst, src)
	return dst
}
