// Package history implements spec.md §4.I: a bounded ring of snapshots and
// deltas supporting Push/Undo/Redo, with the invariant that only the most
// recently pushed entry is ever a full snapshot.Snapshot — every earlier
// entry is a snapshot.Delta between consecutive logical states. This keeps
// memory bounded by undoHistoryLimit full-state copies worth of deltas
// rather than undoHistoryLimit full copies.
package history

import (
	"github.com/pthm-cable/cellsand/snapshot"
	"github.com/pthm-cable/cellsand/update"
)

// HistoryEmpty is returned by Undo/Redo at the ends of the ring (spec.md §7).
type HistoryEmpty struct{}

func (HistoryEmpty) Error() string { return "history: no entry in that direction" }

// entry is a tagged union: exactly one of snap/delta is non-nil. Only the
// entry at index len(entries)-1 may have snap set.
type entry struct {
	snap  *snapshot.Snapshot
	delta *snapshot.Delta
}

// History owns the undo/redo ring described by spec.md §4.I. The zero value
// is not usable; construct with New.
type History struct {
	limit   int
	entries []entry

	position int // historyPosition, in [0, len(entries)]
	current  *snapshot.Snapshot

	beforeRestore *snapshot.Snapshot
}

// New returns an empty history bounded at limit entries (undoHistoryLimit).
func New(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// Len reports the number of entries currently retained.
func (h *History) Len() int { return len(h.entries) }

// Position is the current cursor (historyPosition).
func (h *History) Position() int { return h.position }

// Current returns the materialized snapshot at the cursor, or nil if the
// ring is empty.
func (h *History) Current() *snapshot.Snapshot { return h.current }

// Push captures sim's current state as a new ring entry (CreateHistoryEntry,
// spec.md §4.I "Push"). Any redo branch past the cursor is discarded; if the
// previous top entry was a full snapshot, it is converted to a delta against
// the new one to restore the "only the last entry is a snapshot" invariant.
func (h *History) Push(sim *update.Sim) {
	s := snapshot.From(sim)

	if h.position < len(h.entries) {
		h.entries = h.entries[:h.position]
		// The entry at the cursor still holds the delta toward the discarded
		// redo state; put the cursor's own snapshot there so the conversion
		// below diffs it against the new state instead.
		if h.position > 0 {
			h.entries[h.position-1] = entry{snap: h.current}
		}
	}

	if n := len(h.entries); n > 0 && h.entries[n-1].snap != nil {
		prev := h.entries[n-1].snap
		h.entries[n-1] = entry{delta: snapshot.Diff(prev, s)}
	}

	h.entries = append(h.entries, entry{snap: s})
	h.position = len(h.entries)

	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
		h.position--
	}

	h.current = s
	h.beforeRestore = nil
}

// Undo steps the cursor back one entry and restores that state into sim,
// returning HistoryEmpty if already at the oldest retained state (spec.md
// §4.I "Undo"). On the first Undo since the last Push, the state being left
// is captured into beforeRestore so a final Redo past the top can return to
// it exactly.
func (h *History) Undo(sim *update.Sim) error {
	if h.position < 2 {
		return HistoryEmpty{}
	}
	if h.beforeRestore == nil {
		h.beforeRestore = h.current.Clone()
	}

	idx := h.position - 2
	e := h.entries[idx]
	var next *snapshot.Snapshot
	if e.snap != nil {
		next = e.snap.Clone()
	} else {
		next = e.delta.Restore(h.current)
	}

	h.position--
	h.current = next
	next.RestoreInto(sim)
	return nil
}

// Redo steps the cursor forward one entry (or, once the top of the ring is
// reached, restores beforeRestore and clears it — the "final Ctrl+Y" case of
// spec.md §4.I). Returns HistoryEmpty if there is nothing to redo to.
func (h *History) Redo(sim *update.Sim) error {
	if h.position >= len(h.entries) {
		if h.beforeRestore == nil {
			return HistoryEmpty{}
		}
		h.current = h.beforeRestore
		h.beforeRestore = nil
		h.current.RestoreInto(sim)
		return nil
	}

	idx := h.position - 1
	if idx < 0 {
		return HistoryEmpty{}
	}
	e := h.entries[idx]
	var next *snapshot.Snapshot
	if e.snap != nil {
		next = e.snap.Clone()
	} else {
		next = e.delta.Forward(h.current)
	}

	h.position++
	h.current = next
	next.RestoreInto(sim)
	return nil
}
