package grid

// MaxFighters bounds the state-machine array backing the third-and-later
// stickman slots (spec.md §9 "Stickmen and fighters"; spec.md §6 names the
// same constant as MAX_FIGHTERS=100).
const MaxFighters = 100

// MaxLegs and MaxAccel size a stickman's pose: up to 16 leg positions and 8
// acceleration components (spec.md §9).
const (
	MaxLegs  = 16
	MaxAccel = 8
)

// StickmanState is the small per-stickman state machine: a host particle
// index (the HEAD/FIGH particle driving it), a pose, and the handful of
// scalar fields the source's stick-figure animation rules read each tick
// (original_source/src/simulation/Stickman.h's `playerst`: comm/pcomm command
// cells, a single sprayed element, legs/accs, spawned/rocket-boots/fan
// flags, frames-since-last-spawn, and the id of the SPWN particle that
// spawned this stickman). The "absent" state is HostIndex == -1, as built
// by emptyStickman; the zero value (HostIndex 0) is not absent.
type StickmanState struct {
	HostIndex int
	Comm      int8 // command cell
	PrevComm  int8 // previous command
	Elem      ElementID
	Legs      [MaxLegs]float32
	Accel     [MaxAccel]float32
	Spawned   bool
	Frames    uint32
	Rocket    bool
	Fan       bool
	SpawnID   int
}

func emptyStickman() StickmanState {
	return StickmanState{HostIndex: -1}
}

// Stickmen owns the two named player slots and the fighter pool, following
// spec.md §9's "own or be pointed at by a single host particle" model: the
// state machines live here, indexed, rather than embedded in Particle.
type Stickmen struct {
	Player1  StickmanState
	Player2  StickmanState
	Fighters [MaxFighters]StickmanState
}

// NewStickmen returns all slots in the "absent" state.
func NewStickmen() *Stickmen {
	s := &Stickmen{
		Player1: emptyStickman(),
		Player2: emptyStickman(),
	}
	for i := range s.Fighters {
		s.Fighters[i] = emptyStickman()
	}
	return s
}

// SpawnFighter installs a new fighter bound to hostIndex in the first free
// slot, or returns -1 if the MaxFighters cap is already reached.
func (s *Stickmen) SpawnFighter(hostIndex int) int {
	for i := range s.Fighters {
		if s.Fighters[i].HostIndex == -1 {
			s.Fighters[i] = StickmanState{HostIndex: hostIndex}
			return i
		}
	}
	return -1
}

// RemoveFighter clears a fighter slot back to absent.
func (s *Stickmen) RemoveFighter(i int) {
	if i >= 0 && i < len(s.Fighters) {
		s.Fighters[i] = emptyStickman()
	}
}

// Export returns a deep copy, for package snapshot.
func (s *Stickmen) Export() Stickmen { return *s }

// Import replaces the whole stickmen state.
func (s *Stickmen) Import(st Stickmen) { *s = st }
