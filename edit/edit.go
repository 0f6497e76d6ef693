// Package edit implements the bulk editing primitives of spec.md §4.F:
// point/line/shape creation for particles and walls, flood fill, decoration
// blending, and area clearing. Every top-level operation here is written to
// be framed by the orchestrator's PauseSim/ResumeSim pair (package engine)
// so (A)'s pmap/photons invariants hold before the next tick runs.
package edit

import (
	"github.com/pthm-cable/cellsand/grid"
	"github.com/pthm-cable/cellsand/update"
)

// Flags carries the three bulk-editor switches of spec.md §4.F.
type Flags struct {
	ReplaceMode         bool            // overwrite existing particles with the selected element only
	SpecificDelete      bool            // delete only particles of ReplaceModeSelected, place nothing
	ReplaceModeSelected grid.ElementID  // the id the two flags above match against
}

// occupantAt returns the particle type occupying (x,y) in whichever of
// pmap/photons matches t's energy classification, or ok=false if vacant.
func occupantAt(s *update.Sim, x, y int, t grid.ElementID) (grid.ElementID, bool) {
	if s.Registry().Get(t) != nil && s.Registry().Get(t).Class.Has(grid.ClassEnergy) {
		typ, _, ok := s.Pool().PhotonAt(x, y)
		return typ, ok
	}
	typ, _, ok := s.Pool().PmapAt(x, y)
	return typ, ok
}

// CreatePart implements spec.md §4.F create_part with the replace-mode/
// specific-delete flag semantics: plain painting skips already-occupied
// cells (matching the source's default "don't overwrite" click behavior),
// replace-mode overwrites only cells matching ReplaceModeSelected, and
// specific-delete never creates, only deletes matching occupants.
func CreatePart(s *update.Sim, x, y int, t grid.ElementID, flags Flags) error {
	occ, ok := occupantAt(s, x, y, t)

	if flags.SpecificDelete {
		if ok && occ == flags.ReplaceModeSelected {
			s.Pool().DeletePart(x, y)
		}
		return nil
	}

	if flags.ReplaceMode {
		if ok && occ != flags.ReplaceModeSelected {
			return nil
		}
	} else if ok {
		return nil
	}

	_, err := s.CreatePart(-1, x, y, t)
	if _, poolFull := err.(grid.PoolExhausted); poolFull {
		return err
	}
	return nil
}

// CreateLine paints t along the Bresenham line from (x0,y0) to (x1,y1).
func CreateLine(s *update.Sim, x0, y0, x1, y1 int, t grid.ElementID, flags Flags) error {
	return walkLine(x0, y0, x1, y1, func(x, y int) error {
		return CreatePart(s, x, y, t, flags)
	})
}

// CreateRect paints the outline of the rectangle spanning (x0,y0)-(x1,y1).
func CreateRect(s *update.Sim, x0, y0, x1, y1 int, t grid.ElementID, flags Flags) error {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for x := x0; x <= x1; x++ {
		if err := CreatePart(s, x, y0, t, flags); err != nil {
			return err
		}
		if err := CreatePart(s, x, y1, t, flags); err != nil {
			return err
		}
	}
	for y := y0; y <= y1; y++ {
		if err := CreatePart(s, x0, y, t, flags); err != nil {
			return err
		}
		if err := CreatePart(s, x1, y, t, flags); err != nil {
			return err
		}
	}
	return nil
}

// CreateBox paints a filled rectangle spanning (x0,y0)-(x1,y1).
func CreateBox(s *update.Sim, x0, y0, x1, y1 int, t grid.ElementID, flags Flags) error {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if err := CreatePart(s, x, y, t, flags); err != nil {
				return err
			}
		}
	}
	return nil
}

// ClearArea deletes every particle (both pmap and photon occupants) and
// clears decoration within the w×h rectangle at (x,y).
func ClearArea(s *update.Sim, x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			s.Pool().DeletePart(xx, yy)
		}
	}
}

// walkLine visits every cell on the 8-connected Bresenham line between the
// two endpoints (diagonal steps included), stopping early if visit returns an error.
func walkLine(x0, y0, x1, y1 int, visit func(x, y int) error) error {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	x, y := x0, y0
	for {
		if e := visit(x, y); e != nil {
			return e
		}
		if x == x1 && y == y1 {
			return nil
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
