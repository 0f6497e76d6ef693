package grid

// WallType identifies a wall kind stored in bmap. 0 means no wall.
type WallType uint8

const (
	WallNone WallType = iota
	WallSolid
	WallAirBlock  // blocks air but not particles (e.g. E-wall)
	WallPowered   // conducts/powers fan walls
	WallFan       // fan wall: applies fvx/fvy to the air field
	WallGrav      // separates Newtonian-gravity reachability regions
	WallDetector
)

// Walls holds the cell-resolution wall/conduction grids of spec.md §3.
type Walls struct {
	Cx, Cy int

	Bmap []WallType // wall type per cell
	Emap []int32    // ticks-since-spark, decays to 0
	Fvx  []float32  // fan-wall velocity
	Fvy  []float32

	// GravMask marks cells reachable from the edge-void border through
	// non-grav-wall cells (spec.md §3 gravmask, §4.C).
	GravMask []bool
}

// NewWalls allocates wall grids for a Cx×Cy cell grid.
func NewWalls(cx, cy int) *Walls {
	n := cx * cy
	return &Walls{
		Cx: cx, Cy: cy,
		Bmap:     make([]WallType, n),
		Emap:     make([]int32, n),
		Fvx:      make([]float32, n),
		Fvy:      make([]float32, n),
		GravMask: make([]bool, n),
	}
}

func (w *Walls) idx(cx, cy int) int { return cy*w.Cx + cx }

func (w *Walls) InBounds(cx, cy int) bool {
	return cx >= 0 && cx < w.Cx && cy >= 0 && cy < w.Cy
}

func (w *Walls) At(cx, cy int) WallType {
	if !w.InBounds(cx, cy) {
		return WallSolid
	}
	return w.Bmap[w.idx(cx, cy)]
}

func (w *Walls) Set(cx, cy int, t WallType) {
	if w.InBounds(cx, cy) {
		w.Bmap[w.idx(cx, cy)] = t
	}
}

// AirBlocked reports whether the air solver should treat this cell as a
// hard obstacle (spec.md §4.B step 1).
func (w *Walls) AirBlocked(cx, cy int) bool {
	t := w.At(cx, cy)
	return t == WallSolid || t == WallAirBlock
}

// EmapTick decays every cell's spark-age counter by one tick, matching the
// "before-sim hook... updates emap decay" step of spec.md §4.E.
func (w *Walls) EmapTick() {
	for i, v := range w.Emap {
		if v > 0 {
			w.Emap[i] = v - 1
		}
	}
}

// Spark marks a cell as freshly sparked, used by conductive element rules.
func (w *Walls) Spark(cx, cy int, cooldown int32) {
	if w.InBounds(cx, cy) {
		w.Emap[w.idx(cx, cy)] = cooldown
	}
}

func (w *Walls) EmapAt(cx, cy int) int32 {
	if !w.InBounds(cx, cy) {
		return 0
	}
	return w.Emap[w.idx(cx, cy)]
}

// RecomputeGravMask recomputes reachability from all four borders through
// non-WallGrav cells, as a flood fill (spec.md §3 "Walls of type grav
// separate reachability regions; recomputing gravmask is a connected-
// components pass over non-grav-wall cells").
func (w *Walls) RecomputeGravMask() {
	for i := range w.GravMask {
		w.GravMask[i] = false
	}
	var stack [][2]int
	push := func(cx, cy int) {
		if !w.InBounds(cx, cy) {
			return
		}
		i := w.idx(cx, cy)
		if w.GravMask[i] || w.Bmap[i] == WallGrav {
			return
		}
		w.GravMask[i] = true
		stack = append(stack, [2]int{cx, cy})
	}
	for cx := 0; cx < w.Cx; cx++ {
		push(cx, 0)
		push(cx, w.Cy-1)
	}
	for cy := 0; cy < w.Cy; cy++ {
		push(0, cy)
		push(w.Cx-1, cy)
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(c[0]+1, c[1])
		push(c[0]-1, c[1])
		push(c[0], c[1]+1)
		push(c[0], c[1]-1)
	}
}
