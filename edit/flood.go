package edit

import (
	"github.com/pthm-cable/cellsand/grid"
	"github.com/pthm-cable/cellsand/update"
)

// FloodOverflow is returned when a flood fill's explicit coordinate stack
// would exceed X·Y entries — the fill is aborted with no partial effect
// (spec.md §4.F, §7, §8 property 5).
type FloodOverflow struct{}

func (FloodOverflow) Error() string { return "edit: flood fill stack overflow" }

// FloodParts implements spec.md §4.F flood_parts: replace the 4-connected
// component of cells reachable from (x,y) whose current occupant matches
// the occupant at (x,y) (same type, including "vacant" as a type). The
// component is collected in full, and validated against the X·Y bound,
// before any mutation — satisfying "on overflow no cells are changed".
func FloodParts(s *update.Sim, x, y int, t grid.ElementID, flags Flags) error {
	limit := s.Pool().X * s.Pool().Y
	target, targetOk := occupantAt(s, x, y, t)

	matches := func(cx, cy int) bool {
		occ, ok := occupantAt(s, cx, cy, t)
		return ok == targetOk && occ == target
	}

	cells, err := floodCollect(x, y, limit, matches, s.Pool().X, s.Pool().Y)
	if err != nil {
		return err
	}
	for _, c := range cells {
		if err := CreatePart(s, c[0], c[1], t, flags); err != nil {
			return err
		}
	}
	return nil
}

// FloodWalls is the wall-grid analogue of FloodParts, matching on Bmap's
// current wall type at (x,y).
func FloodWalls(s *update.Sim, x, y int, t grid.WallType) error {
	limit := s.Walls().Cx * s.Walls().Cy
	target := s.Walls().At(x, y)

	matches := func(cx, cy int) bool { return s.Walls().At(cx, cy) == target }

	cells, err := floodCollect(x, y, limit, matches, s.Walls().Cx, s.Walls().Cy)
	if err != nil {
		return err
	}
	for _, c := range cells {
		s.Walls().Set(c[0], c[1], t)
	}
	s.Walls().RecomputeGravMask()
	return nil
}

// floodCollect runs a 4-connected flood fill from (x0,y0) using an explicit
// coordinate stack bounded at w·h entries, returning FloodOverflow instead
// of growing past that bound.
func floodCollect(x0, y0, limit int, matches func(x, y int) bool, w, h int) ([][2]int, error) {
	if x0 < 0 || x0 >= w || y0 < 0 || y0 >= h {
		return nil, nil
	}
	visited := make(map[[2]int]bool)
	stack := [][2]int{{x0, y0}}
	visited[[2]int{x0, y0}] = true
	var result [][2]int

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, c)

		neighbors := [4][2]int{
			{c[0] + 1, c[1]}, {c[0] - 1, c[1]},
			{c[0], c[1] + 1}, {c[0], c[1] - 1},
		}
		for _, n := range neighbors {
			if n[0] < 0 || n[0] >= w || n[1] < 0 || n[1] >= h {
				continue
			}
			if visited[n] {
				continue
			}
			if !matches(n[0], n[1]) {
				continue
			}
			if len(visited) >= limit {
				return nil, FloodOverflow{}
			}
			visited[n] = true
			stack = append(stack, n)
		}
	}
	return result, nil
}
