package grid

// MoveResult is what eval_move/do_move report back about a candidate
// destination cell (spec.md §4.A eval_move/do_move).
type MoveResult struct {
	Allowed  bool
	Collider int // pool index of the pmap occupant (displaceable when Allowed, the blocker otherwise), or -1
}

// WallAt resolves the wall type covering a pixel coordinate. The pool
// operates at pixel resolution while Walls operates at cell resolution, so
// the caller (which knows the cell size) supplies this lookup rather than
// the grid package hard-coding a cell size conversion.
type WallAt func(px, py int) WallType

// EvalMove implements spec.md §4.A eval_move: it decides whether a particle
// of type t may occupy (nx,ny), returning a displaceable occupant (by
// weight/density comparison) when one exists instead of an outright block.
func (p *Pool) EvalMove(t ElementID, nx, ny int, wallAt WallAt) MoveResult {
	if !p.inBounds(nx, ny) {
		return MoveResult{Allowed: false, Collider: -1}
	}
	if wallAt != nil && wallAt(nx, ny) == WallSolid {
		return MoveResult{Allowed: false, Collider: -1}
	}

	class := p.classifier.Class(t)
	cell := p.cellIndex(nx, ny)

	if class.Has(ClassEnergy) {
		// Energy particles share a cell with non-energy ones (spec.md §4.A);
		// a second energy particle in the same cell is handled by the
		// caller (photon/neutron interaction), not by blocking movement.
		return MoveResult{Allowed: true, Collider: -1}
	}

	occType, occIdx, ok := p.pmap[cell].unpack()
	if !ok {
		return MoveResult{Allowed: true, Collider: -1}
	}

	occClass := p.classifier.Class(occType)
	if occClass.Has(ClassLiquid) || occClass.Has(ClassGas) {
		if p.classifier.Density(t) > p.classifier.Density(occType) {
			return MoveResult{Allowed: true, Collider: occIdx}
		}
	}
	return MoveResult{Allowed: false, Collider: occIdx}
}

// DoMove implements spec.md §4.A do_move: move particle i from (x,y) to
// (nx,ny), displacing a lighter fluid occupant into the vacated cell if
// EvalMove reported one. Returns false (no-op) if the move is not allowed.
func (p *Pool) DoMove(i, x, y, nx, ny int, wallAt WallAt) bool {
	part := &p.parts[i]
	res := p.EvalMove(part.Type, nx, ny, wallAt)
	if !res.Allowed {
		return false
	}

	grid := p.gridFor(part.Type)
	srcCell := p.cellIndex(x, y)
	dstCell := p.cellIndex(nx, ny)

	if res.Collider >= 0 {
		collider := &p.parts[res.Collider]
		colliderGrid := p.gridFor(collider.Type)
		colliderGrid[dstCell] = 0
		colliderGrid[srcCell] = packTag(collider.Type, res.Collider)
		collider.X = float32(x) + (collider.X - float32(collider.PX()))
		collider.Y = float32(y) + (collider.Y - float32(collider.PY()))
	}

	if _, idx, ok := grid[srcCell].unpack(); ok && idx == i {
		grid[srcCell] = 0
	}
	grid[dstCell] = packTag(part.Type, i)

	dx := part.X - float32(x)
	dy := part.Y - float32(y)
	part.X = float32(nx) + dx
	part.Y = float32(ny) + dy
	return true
}
