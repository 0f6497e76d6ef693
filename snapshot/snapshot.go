// Package snapshot implements spec.md §4.H: an immutable deep copy of a
// running simulation's entire state (Snapshot), the compact difference
// between two snapshots (Delta), and the FNV-1a rolling hash the test
// suite uses to check determinism and delta round-trips (spec.md §8
// properties 1-3).
package snapshot

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/pthm-cable/cellsand/grid"
	"github.com/pthm-cable/cellsand/update"
)

// Snapshot is a frozen copy of a Sim's state (spec.md §3 "Snapshot").
type Snapshot struct {
	State update.SimState
}

// From deep-copies sim's current state into a new Snapshot.
func From(sim *update.Sim) *Snapshot {
	return &Snapshot{State: sim.ExportState()}
}

// RestoreInto overwrites sim's state with this snapshot's (spec.md §4.H
// "Snapshot::restore_into(sim): inverse"). The caller must hold the sim
// lock / have paused the tick (spec.md §4.K).
func (s *Snapshot) RestoreInto(sim *update.Sim) {
	sim.ImportState(s.State)
}

// Clone returns a deep copy of s, safe to mutate independently.
func (s *Snapshot) Clone() *Snapshot {
	st := s.State
	st.Fields.Pv = append([]float32(nil), s.State.Fields.Pv...)
	st.Fields.Vx = append([]float32(nil), s.State.Fields.Vx...)
	st.Fields.Vy = append([]float32(nil), s.State.Fields.Vy...)
	st.Fields.Hv = append([]float32(nil), s.State.Fields.Hv...)
	st.Fields.Bmap = append([]grid.WallType(nil), s.State.Fields.Bmap...)
	st.Fields.Emap = append([]int32(nil), s.State.Fields.Emap...)
	st.Fields.Fvx = append([]float32(nil), s.State.Fields.Fvx...)
	st.Fields.Fvy = append([]float32(nil), s.State.Fields.Fvy...)
	st.Fields.GravMask = append([]bool(nil), s.State.Fields.GravMask...)
	st.Fields.GravMass = append([]float32(nil), s.State.Fields.GravMass...)
	st.Fields.GravForceX = append([]float32(nil), s.State.Fields.GravForceX...)
	st.Fields.GravForceY = append([]float32(nil), s.State.Fields.GravForceY...)
	st.Pool.Parts = append([]grid.Particle(nil), s.State.Pool.Parts...)
	st.Pool.ElementCount = make(map[grid.ElementID]int, len(s.State.Pool.ElementCount))
	for k, v := range s.State.Pool.ElementCount {
		st.Pool.ElementCount[k] = v
	}
	st.Signs = append([]grid.Sign(nil), s.State.Signs...)
	return &Snapshot{State: st}
}

// Hash computes a fast rolling FNV-1a 32 hash over the grid and particle
// bytes relevant to determinism checking (spec.md §4.H "signs and authors
// excluded").
func (s *Snapshot) Hash() uint32 {
	h := fnv.New32a()
	st := s.State

	writeF32Slice(h, st.Fields.Pv)
	writeF32Slice(h, st.Fields.Vx)
	writeF32Slice(h, st.Fields.Vy)
	writeF32Slice(h, st.Fields.Hv)
	writeWallSlice(h, st.Fields.Bmap)
	writeI32Slice(h, st.Fields.Emap)
	writeF32Slice(h, st.Fields.Fvx)
	writeF32Slice(h, st.Fields.Fvy)
	writeBoolSlice(h, st.Fields.GravMask)
	writeF32Slice(h, st.Fields.GravMass)
	writeF32Slice(h, st.Fields.GravForceX)
	writeF32Slice(h, st.Fields.GravForceY)

	for _, p := range st.Pool.Parts {
		writeParticle(h, p)
	}
	writeU32(h, uint32(st.Pool.FreeHead))
	writeU32(h, uint32(st.Pool.LastActive))

	for c := 0; c < grid.PortalChannels; c++ {
		for p := 0; p < grid.PortalPhases; p++ {
			for sl := 0; sl < grid.PortalSlots; sl++ {
				slot := st.Portals[c][p][sl]
				if slot.Occupied {
					h.Write([]byte{1})
					writeParticle(h, slot.Particle)
				} else {
					h.Write([]byte{0})
				}
			}
		}
	}

	for _, active := range st.Wireless {
		if active {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}

	writeStickman(h, st.Stickmen.Player1)
	writeStickman(h, st.Stickmen.Player2)
	for _, f := range st.Stickmen.Fighters {
		writeStickman(h, f)
	}

	writeU64(h, uint64(st.Tick))
	writeU32(h, uint32(st.NextToUpdate))
	writeU64(h, uint64(st.RNGSeed))

	return h.Sum32()
}

func writeU32(h interface{ Write([]byte) (int, error) }, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	h.Write(b[:])
}

func writeU64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	h.Write(b[:])
}

func writeF32(h interface{ Write([]byte) (int, error) }, v float32) {
	writeU32(h, math.Float32bits(v))
}

func writeF32Slice(h interface{ Write([]byte) (int, error) }, s []float32) {
	for _, v := range s {
		writeF32(h, v)
	}
}

func writeI32Slice(h interface{ Write([]byte) (int, error) }, s []int32) {
	for _, v := range s {
		writeU32(h, uint32(v))
	}
}

func writeWallSlice(h interface{ Write([]byte) (int, error) }, s []grid.WallType) {
	for _, v := range s {
		h.Write([]byte{byte(v)})
	}
}

func writeBoolSlice(h interface{ Write([]byte) (int, error) }, s []bool) {
	for _, v := range s {
		if v {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
}

func writeParticle(h interface{ Write([]byte) (int, error) }, p grid.Particle) {
	writeU32(h, uint32(p.Type))
	writeU32(h, uint32(p.Life))
	writeU32(h, uint32(p.Ctype))
	writeF32(h, p.X)
	writeF32(h, p.Y)
	writeF32(h, p.VX)
	writeF32(h, p.VY)
	writeF32(h, p.Temp)
	writeU32(h, uint32(p.Tmp))
	writeU32(h, uint32(p.Tmp2))
	writeU32(h, uint32(p.Tmp3))
	writeU32(h, uint32(p.Tmp4))
	writeU32(h, p.Flags)
	writeU32(h, p.Dcolour)
}

func writeStickman(h interface{ Write([]byte) (int, error) }, s grid.StickmanState) {
	writeU32(h, uint32(s.HostIndex))
	h.Write([]byte{byte(s.Comm), byte(s.PrevComm)})
	writeU32(h, uint32(s.Elem))
	for _, v := range s.Legs {
		writeF32(h, v)
	}
	for _, v := range s.Accel {
		writeF32(h, v)
	}
	flags := byte(0)
	if s.Spawned {
		flags |= 1
	}
	if s.Rocket {
		flags |= 2
	}
	if s.Fan {
		flags |= 4
	}
	h.Write([]byte{flags})
	writeU32(h, s.Frames)
	writeU32(h, uint32(s.SpawnID))
}
