package engine

// PushHistory captures the current sim state into the undo/redo ring
// (spec.md §4.I "Push" / CreateHistoryEntry). Callers performing a bulk
// edit should call PushHistory before mutating, matching the source's
// "create an undo point, then edit" ordering.
func (o *Orchestrator) PushHistory() {
	o.PauseSim()
	defer o.ResumeSim()
	o.History.Push(o.Sim)
}

// Undo steps the history cursor back one entry and restores it into the
// sim, returning history.HistoryEmpty at the oldest retained state.
func (o *Orchestrator) Undo() error {
	o.PauseSim()
	defer o.ResumeSim()
	return o.History.Undo(o.Sim)
}

// Redo steps the history cursor forward one entry, returning
// history.HistoryEmpty at the newest state.
func (o *Orchestrator) Redo() error {
	o.PauseSim()
	defer o.ResumeSim()
	return o.History.Redo(o.Sim)
}
