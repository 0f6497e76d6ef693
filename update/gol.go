package update

import "github.com/pthm-cable/cellsand/grid"

// golAction is the outcome of the count phase for one cell: whether a
// Game-of-Life particle is born, dies, or survives there, decided against
// a snapshot of the whole grid so no cell's count phase observes another
// cell's apply phase (spec.md §4.E "two-phase scan (count, apply) to avoid
// in-place hazards").
type golAction struct {
	x, y    int
	born    bool
	die     bool
	ruleID  grid.ElementID
	blended uint32
}

// runGameOfLife implements the Game-of-Life second pass of spec.md §4.E,
// run from the after-sim hook. It scans every cell that currently holds a
// gol pseudo-element (or is adjacent to one, for births) exactly once per
// phase.
func (s *Sim) runGameOfLife() {
	touched := s.golCandidateCells()
	if len(touched) == 0 {
		return
	}

	actions := make([]golAction, 0, len(touched))
	for cell := range touched {
		x, y := cell[0], cell[1]
		action, ok := s.golCount(x, y)
		if ok {
			actions = append(actions, action)
		}
	}

	for _, a := range actions {
		s.golApply(a)
	}
}

// golCandidateCells is every cell occupied by a gol particle plus its
// 8-neighborhood, the full set of cells whose state could change this pass.
func (s *Sim) golCandidateCells() map[[2]int]bool {
	touched := make(map[[2]int]bool)
	for i := 0; i <= s.pool.LastActiveIndex(); i++ {
		p := s.pool.Particle(i)
		if p.IsVacant() || !s.reg.IsGol(p.Type) {
			continue
		}
		x, y := p.PX(), p.PY()
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				touched[[2]int{x + dx, y + dy}] = true
			}
		}
	}
	return touched
}

func (s *Sim) golCount(x, y int) (golAction, bool) {
	typ, _, occupied := s.pool.PmapAt(x, y)
	var ruleID grid.ElementID
	if occupied {
		ruleID = typ
	}

	neighbors := 0
	var lastNeighborRule grid.ElementID
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nt, _, ok := s.pool.PmapAt(x+dx, y+dy)
			if ok && s.reg.IsGol(nt) {
				neighbors++
				lastNeighborRule = nt
			}
		}
	}

	if occupied && s.reg.IsGol(ruleID) {
		rule, _ := s.reg.GolRule(ruleID)
		if rule.Survive[neighbors] {
			return golAction{}, false
		}
		return golAction{x: x, y: y, die: true}, true
	}

	if occupied {
		return golAction{}, false // occupied by a non-gol particle: never a birth site
	}

	if neighbors == 0 {
		return golAction{}, false
	}
	rule, ok := s.reg.GolRule(lastNeighborRule)
	if !ok || !rule.Born[neighbors] {
		return golAction{}, false
	}
	return golAction{x: x, y: y, born: true, ruleID: lastNeighborRule, blended: rule.Colour1}, true
}

func (s *Sim) golApply(a golAction) {
	switch {
	case a.die:
		s.pool.DeletePart(a.x, a.y)
	case a.born:
		idx, err := s.CreatePart(-2, a.x, a.y, a.ruleID)
		if err == nil {
			s.pool.Particle(idx).Dcolour = a.blended
		}
	}
}
