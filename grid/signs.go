package grid

import "fmt"

// MaxSigns is the fixed cap on sign records (spec.md §3 "Signs").
const MaxSigns = 16

// MaxSignText is the cap on a sign's UTF text length.
const MaxSignText = 45

// Justification controls how a sign's text is positioned relative to its
// anchor pixel.
type Justification int

const (
	JustifyLeft Justification = iota
	JustifyCenter
	JustifyRight
	JustifyNone
)

// Sign is one read-only-to-the-tick annotation record (spec.md §3 "Signs").
// Text may contain the dynamic templates listed in spec.md §3 ({t}, {p},
// {aheat}, {type}, {ctype}, {life}, {tmp}, {tmp2}, {pt}, {wt}, {b|}, {s:id},
// {t:id}, {w:name}); expanding them into a display string is a renderer/UI
// concern, not the grid package's.
type Sign struct {
	X, Y          int
	Justification Justification
	Text          string
}

// Signs holds the up-to-16-entry sign table. Edited only under the UI's sim
// lock (spec.md §5 "Shared resource policy"); the per-tick update dispatcher
// never mutates it.
type Signs struct {
	entries []Sign
}

// NewSigns returns an empty sign table.
func NewSigns() *Signs { return &Signs{} }

// Add appends a sign, returning its index, or an error if the table is full
// or the text exceeds MaxSignText.
func (s *Signs) Add(sign Sign) (int, error) {
	if len(s.entries) >= MaxSigns {
		return -1, fmt.Errorf("grid: sign table full (max %d)", MaxSigns)
	}
	if len(sign.Text) > MaxSignText {
		return -1, fmt.Errorf("grid: sign text exceeds %d bytes", MaxSignText)
	}
	s.entries = append(s.entries, sign)
	return len(s.entries) - 1, nil
}

// Remove deletes the sign at index i, shifting subsequent entries down.
func (s *Signs) Remove(i int) {
	if i < 0 || i >= len(s.entries) {
		return
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
}

// At returns the sign at index i, or false if out of range.
func (s *Signs) At(i int) (Sign, bool) {
	if i < 0 || i >= len(s.entries) {
		return Sign{}, false
	}
	return s.entries[i], true
}

// All returns every sign, in order.
func (s *Signs) All() []Sign { return s.entries }

// Len reports the number of signs currently set.
func (s *Signs) Len() int { return len(s.entries) }

// Export returns a deep copy of the sign table, for package snapshot.
func (s *Signs) Export() []Sign {
	out := make([]Sign, len(s.entries))
	copy(out, s.entries)
	return out
}

// Import replaces the sign table wholesale, the full-replacement semantics
// spec.md §3 Delta prescribes ("for signs, a full replacement").
func (s *Signs) Import(entries []Sign) {
	s.entries = make([]Sign, len(entries))
	copy(s.entries, entries)
}
