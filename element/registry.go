package element

import (
	"fmt"

	"github.com/pthm-cable/cellsand/grid"
)

// GolRule is a Game-of-Life pseudo-element's transition table (spec.md
// §4.D, §4.E "Game of Life pass"): birth and survival tables indexed by
// neighbor count plus a pair of colours. Built-in and user-defined custom
// rules share this representation.
type GolRule struct {
	// Born[n] / Survive[n] for neighbor count n in [0,8].
	Born    [9]bool
	Survive [9]bool
	Colour1 uint32
	Colour2 uint32
}

// Registry is the fixed-size element table of spec.md §4.D. It is
// immutable during a tick; mutations (adding a custom Game-of-Life rule)
// must be applied at frame boundaries while the sim is paused (spec.md §5
// "Shared resource policy").
type Registry struct {
	elements [MaxClassicElements + 256]*Element
	golRules map[grid.ElementID]GolRule
	nextGol  grid.ElementID
}

// NewRegistry returns an empty registry; callers populate it via Register
// and RegisterGol.
func NewRegistry() *Registry {
	return &Registry{
		golRules: make(map[grid.ElementID]GolRule),
		nextGol:  MaxClassicElements,
	}
}

// Register installs a classic (hand-coded) element. Its ID must be below
// MaxClassicElements.
func (r *Registry) Register(e *Element) error {
	if e.ID == 0 || int(e.ID) >= MaxClassicElements {
		return fmt.Errorf("element: id %d out of classic range [1,%d)", e.ID, MaxClassicElements)
	}
	r.elements[e.ID] = e
	return nil
}

// RegisterGol adds a custom Game-of-Life rule, returning the newly assigned
// id. Adding/removing custom entries never renumbers existing ids (spec.md
// §4.D).
func (r *Registry) RegisterGol(name string, rule GolRule) grid.ElementID {
	id := r.nextGol
	r.nextGol++
	r.golRules[id] = rule
	r.elements[id] = &Element{
		ID:          id,
		Name:        name,
		DisplayName: name,
		Class:       grid.ClassLife,
	}
	return id
}

// RemoveGol unregisters a custom rule without renumbering survivors.
func (r *Registry) RemoveGol(id grid.ElementID) {
	delete(r.golRules, id)
	r.elements[id] = nil
}

// GolRule returns the transition table for a Game-of-Life id.
func (r *Registry) GolRule(id grid.ElementID) (GolRule, bool) {
	rule, ok := r.golRules[id]
	return rule, ok
}

// IsGol reports whether id is a Game-of-Life pseudo-element.
func (r *Registry) IsGol(id grid.ElementID) bool {
	_, ok := r.golRules[id]
	return ok
}

// Get returns the metadata for id, or nil if unregistered.
func (r *Registry) Get(id grid.ElementID) *Element {
	if int(id) >= len(r.elements) {
		return nil
	}
	return r.elements[id]
}

// --- grid.Classifier ---

// Class implements grid.Classifier.
func (r *Registry) Class(id grid.ElementID) grid.Class {
	if e := r.Get(id); e != nil {
		return e.Class
	}
	return 0
}

// Density implements grid.Classifier.
func (r *Registry) Density(id grid.ElementID) float32 {
	if e := r.Get(id); e != nil {
		return e.Density
	}
	return 0
}

var _ grid.Classifier = (*Registry)(nil)
