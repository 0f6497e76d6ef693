package grid

// PortalChannels and PortalPhases/PortalSlots size the portal particle
// buffer of spec.md §3 Snapshot ("portal particle buffer (channels ×
// phases × slots)"), matching the same CHANNELS=101 channel space
// grid/wireless.go uses and the original source's
// `std::array<std::array<std::array<Particle, 80>, 8>, CHANNELS> portalp`
// (src/simulation/Simulation.h) layout: 101 channels, 8 phases (one per
// PSCN-wall orientation a portal can face), 80 parked particles each. A
// portal particle entering channel c in phase p is parked in the buffer
// and re-emitted by the channel's other phase-p portal(s) on a later tick,
// without any particle-to-particle reference (spec.md §9 "Cyclic graphs...
// Model them as separate tables indexed by channel or sign id").
const (
	PortalChannels = 101
	PortalPhases   = 8
	PortalSlots    = 80
)

// PortalParticle is one parked particle awaiting re-emission from a portal.
// Occupied reports whether this slot currently holds a particle; a
// zero-value PortalParticle is an empty slot by construction.
type PortalParticle struct {
	Occupied bool
	Particle Particle
}

// Portals holds the channel × phase × slot parking buffer.
type Portals struct {
	Buf [PortalChannels][PortalPhases][PortalSlots]PortalParticle
}

// NewPortals returns an empty portal buffer.
func NewPortals() *Portals { return &Portals{} }

// Park stores p in the first free slot of (channel,phase), returning the
// slot index, or -1 if the channel/phase is full.
func (pt *Portals) Park(channel, phase int, p Particle) int {
	if channel < 0 || channel >= PortalChannels || phase < 0 || phase >= PortalPhases {
		return -1
	}
	slots := &pt.Buf[channel][phase]
	for i := range slots {
		if !slots[i].Occupied {
			slots[i] = PortalParticle{Occupied: true, Particle: p}
			return i
		}
	}
	return -1
}

// Take removes and returns the parked particle at (channel,phase,slot), if
// any.
func (pt *Portals) Take(channel, phase, slot int) (Particle, bool) {
	if channel < 0 || channel >= PortalChannels || phase < 0 || phase >= PortalPhases {
		return Particle{}, false
	}
	if slot < 0 || slot >= PortalSlots {
		return Particle{}, false
	}
	cell := &pt.Buf[channel][phase][slot]
	if !cell.Occupied {
		return Particle{}, false
	}
	p := cell.Particle
	*cell = PortalParticle{}
	return p, true
}

// OtherPhase returns the phase index after phase, wrapping from
// PortalPhases-1 back to 0.
func OtherPhase(phase int) int { return (phase + 1) % PortalPhases }

// Export returns a deep copy of the portal buffer, for package snapshot.
func (pt *Portals) Export() [PortalChannels][PortalPhases][PortalSlots]PortalParticle {
	return pt.Buf
}

// Import replaces the portal buffer wholesale.
func (pt *Portals) Import(buf [PortalChannels][PortalPhases][PortalSlots]PortalParticle) {
	pt.Buf = buf
}
