package edit

import (
	"github.com/pthm-cable/cellsand/grid"
	"github.com/pthm-cable/cellsand/update"
)

// CreateWalls sets a single wall cell, recomputing gravmask afterward since
// WallGrav placement/removal can change Newtonian-gravity reachability
// (spec.md §4.C).
func CreateWalls(s *update.Sim, cx, cy int, t grid.WallType) {
	s.Walls().Set(cx, cy, t)
	s.Walls().RecomputeGravMask()
}

// CreateWallLine paints a wall type along the line between two cells,
// recomputing gravmask once at the end rather than per cell.
func CreateWallLine(s *update.Sim, cx0, cy0, cx1, cy1 int, t grid.WallType) {
	walkLine(cx0, cy0, cx1, cy1, func(x, y int) error {
		s.Walls().Set(x, y, t)
		return nil
	})
	s.Walls().RecomputeGravMask()
}

// CreateWallBox paints a filled rectangle of wall cells.
func CreateWallBox(s *update.Sim, cx0, cy0, cx1, cy1 int, t grid.WallType) {
	if cx0 > cx1 {
		cx0, cx1 = cx1, cx0
	}
	if cy0 > cy1 {
		cy0, cy1 = cy1, cy0
	}
	for y := cy0; y <= cy1; y++ {
		for x := cx0; x <= cx1; x++ {
			s.Walls().Set(x, y, t)
		}
	}
	s.Walls().RecomputeGravMask()
}
