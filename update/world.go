package update

import "github.com/pthm-cable/cellsand/grid"

// Signs, Portals, Wireless, and Stickmen round out the side tables
// spec.md §3 lists alongside the particle pool and field grids: read-only
// to the tick (Signs), parked-particle buffers walked without any
// particle-to-particle reference (Portals, Wireless), and small per-host
// state machines (Stickmen), per spec.md §9 "Cyclic graphs".
//
// They are constructed lazily so existing callers/tests that build a Sim
// directly via NewSim (which predates these fields) keep working without
// threading new constructor arguments through.

func (s *Sim) ensureWorldTables() {
	if s.signs == nil {
		s.signs = grid.NewSigns()
	}
	if s.portals == nil {
		s.portals = grid.NewPortals()
	}
	if s.wireless == nil {
		s.wireless = grid.NewWireless()
	}
	if s.stickmen == nil {
		s.stickmen = grid.NewStickmen()
	}
}

// Signs returns the sign table, editable only while the sim is paused for
// editing (spec.md §5).
func (s *Sim) Signs() *grid.Signs {
	s.ensureWorldTables()
	return s.signs
}

// Portals returns the channel/phase/slot parking buffer.
func (s *Sim) Portals() *grid.Portals {
	s.ensureWorldTables()
	return s.portals
}

// Wireless returns the per-channel ISWIRE state.
func (s *Sim) Wireless() *grid.Wireless {
	s.ensureWorldTables()
	return s.wireless
}

// Stickmen returns the player/fighter state machines.
func (s *Sim) Stickmen() *grid.Stickmen {
	s.ensureWorldTables()
	return s.stickmen
}

// Author is free-form authorship metadata persisted with a snapshot/save
// (spec.md §3 Snapshot "authorship metadata"); the core never reads it.
func (s *Sim) Author() string     { return s.author }
func (s *Sim) SetAuthor(a string) { s.author = a }
