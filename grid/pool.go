package grid

import "fmt"

// slotTag packs (type, pool-index) into one pmap/photons cell, following
// the pmap_tag_bits layout of spec.md §3: the element id occupies the high
// bits, the pool index the low bits. 0 means empty.
type slotTag uint32

const tagBits = 9 // matches the source's 9-bit element-id width

func packTag(t ElementID, index int) slotTag {
	return slotTag(uint32(t)<<(32-tagBits) | uint32(index+1))
}

func (s slotTag) unpack() (t ElementID, index int, ok bool) {
	if s == 0 {
		return 0, 0, false
	}
	idx := int(uint32(s)&((1<<(32-tagBits))-1)) - 1
	typ := ElementID(uint32(s) >> (32 - tagBits))
	return typ, idx, true
}

// Classifier exposes just enough per-type metadata for the pool to route
// particles between pmap/photons and to run stacking/collision checks,
// without depending on the full element registry (package element sits on
// top of this package, not the reverse).
type Classifier interface {
	Class(t ElementID) Class
	Density(t ElementID) float32
}

// PoolExhausted is returned by CreatePart when the free list is empty.
type PoolExhausted struct{}

func (PoolExhausted) Error() string { return "grid: particle pool exhausted" }

// Pool is the dense particle array plus its free list and the pmap/photons
// index grids (spec.md §3 "Pool and indexing", §4.A).
type Pool struct {
	X, Y int // pixel extents

	parts []Particle
	// free is a singly linked free list threaded through Particle.Life of
	// vacant slots; freeHead == -1 means the list is empty.
	freeHead int32

	lastActiveIndex int

	pmap    []slotTag // X*Y, non-energy particles
	photons []slotTag // X*Y, energy particles

	elementCount map[ElementID]int

	classifier Classifier

	stackingThreshold int
}

// NewPool allocates a pool of capacity n over an X×Y pixel grid.
func NewPool(n, x, y int, classifier Classifier, stackingThreshold int) *Pool {
	p := &Pool{
		X: x, Y: y,
		parts:        make([]Particle, n),
		pmap:         make([]slotTag, x*y),
		photons:      make([]slotTag, x*y),
		elementCount: make(map[ElementID]int),
		classifier:   classifier,
		stackingThreshold: stackingThreshold,
	}
	p.rebuildFreeList(0)
	return p
}

// rebuildFreeList threads the free list starting at index `from`, assuming
// all slots from `from` on are vacant and untouched.
func (p *Pool) rebuildFreeList(from int) {
	p.freeHead = -1
	for i := len(p.parts) - 1; i >= from; i-- {
		p.parts[i].Type = 0
		p.parts[i].Life = p.freeHead
		p.freeHead = int32(i)
	}
}

func (p *Pool) cellIndex(x, y int) int { return y*p.X + x }

func (p *Pool) inBounds(x, y int) bool { return x >= 0 && x < p.X && y >= 0 && y < p.Y }

// Cap returns the pool's particle capacity.
func (p *Pool) Cap() int { return len(p.parts) }

// LastActiveIndex is the high-water mark bounding iteration.
func (p *Pool) LastActiveIndex() int { return p.lastActiveIndex }

// Particle returns a pointer to the record at index i. The caller must not
// retain it across a CreatePart/KillPart call, since those may mutate
// free-list linkage via the Life field of vacant neighbors.
func (p *Pool) Particle(i int) *Particle { return &p.parts[i] }

// PmapAt returns the (type, index) pair stored at cell (x,y) in pmap, or
// ok=false if empty.
func (p *Pool) PmapAt(x, y int) (ElementID, int, bool) {
	return p.pmap[p.cellIndex(x, y)].unpack()
}

// PhotonAt is the photons-grid analogue of PmapAt.
func (p *Pool) PhotonAt(x, y int) (ElementID, int, bool) {
	return p.photons[p.cellIndex(x, y)].unpack()
}

func (p *Pool) gridFor(t ElementID) []slotTag {
	if p.classifier.Class(t).Has(ClassEnergy) {
		return p.photons
	}
	return p.pmap
}

// ElementCount returns the live particle count for a type.
func (p *Pool) ElementCount(t ElementID) int { return p.elementCount[t] }

// CreatePart implements spec.md §4.A create_part.
//
// hint == -2 picks the lowest-index free slot; hint >= 0 overwrites that
// exact slot (killing whatever was there first); hint == -1 reuses the
// particle already occupying (x,y), if any, else behaves like -2.
func (p *Pool) CreatePart(hint, x, y int, t ElementID, defaultTemp float32) (int, error) {
	if !p.inBounds(x, y) {
		return -1, fmt.Errorf("grid: CreatePart out of bounds (%d,%d)", x, y)
	}

	grid := p.gridFor(t)
	cell := p.cellIndex(x, y)

	if hint == -1 {
		if _, idx, ok := grid[cell].unpack(); ok {
			hint = idx
		} else {
			hint = -2
		}
	}

	var index int
	if hint >= 0 {
		if !p.parts[hint].IsVacant() {
			p.KillPart(hint)
		}
		p.unlinkFree(hint)
		index = hint
	} else {
		if p.freeHead == -1 {
			return -1, PoolExhausted{}
		}
		index = int(p.freeHead)
		p.freeHead = p.parts[index].Life
	}

	part := &p.parts[index]
	*part = Particle{
		Type: t,
		X:    float32(x) + 0.5,
		Y:    float32(y) + 0.5,
		Temp: defaultTemp,
	}

	grid[cell] = packTag(t, index)
	p.elementCount[t]++
	if index > p.lastActiveIndex {
		p.lastActiveIndex = index
	}
	return index, nil
}

// unlinkFree removes `index` from the free list; used when a caller
// requests an explicit hint slot that happens to still be free.
func (p *Pool) unlinkFree(index int) {
	if p.freeHead == int32(index) {
		p.freeHead = p.parts[index].Life
		return
	}
	cur := p.freeHead
	for cur != -1 {
		next := p.parts[cur].Life
		if next == int32(index) {
			p.parts[cur].Life = p.parts[index].Life
			return
		}
		cur = next
	}
}

// KillPart implements spec.md §4.A kill_part.
func (p *Pool) KillPart(i int) {
	part := &p.parts[i]
	if part.IsVacant() {
		return
	}
	x, y := part.PX(), part.PY()
	if p.inBounds(x, y) {
		cell := p.cellIndex(x, y)
		grid := p.gridFor(part.Type)
		if _, idx, ok := grid[cell].unpack(); ok && idx == i {
			grid[cell] = 0
		}
	}
	p.elementCount[part.Type]--

	*part = Particle{}
	part.Life = p.freeHead
	p.freeHead = int32(i)
}

// DeletePart deletes every particle occupying (x,y): the non-energy one in
// pmap first, then the energy one in photons, whichever are present.
func (p *Pool) DeletePart(x, y int) {
	if !p.inBounds(x, y) {
		return
	}
	cell := p.cellIndex(x, y)
	if _, idx, ok := p.pmap[cell].unpack(); ok {
		p.KillPart(idx)
	}
	if _, idx, ok := p.photons[cell].unpack(); ok {
		p.KillPart(idx)
	}
}

// ChangeAllowed is implemented by callers (the element registry) to gate
// PartChangeType; kept as a function value here to avoid an import cycle
// with package element.
type ChangeAllowed func(i, x, y int, from, to ElementID) bool

// PartChangeType implements spec.md §4.A part_change_type: it atomically
// updates the pmap/photons tag (since energy classification may differ
// between from and to) and invokes the supplied gate. Returns false if the
// gate forbids the change, in which case the particle is destroyed by
// convention.
func (p *Pool) PartChangeType(i, x, y int, to ElementID, allowed ChangeAllowed) bool {
	part := &p.parts[i]
	from := part.Type
	if from == to {
		return true
	}
	if allowed != nil && !allowed(i, x, y, from, to) {
		p.KillPart(i)
		return false
	}

	cell := p.cellIndex(x, y)
	oldGrid := p.gridFor(from)
	newGrid := p.gridFor(to)

	if _, idx, ok := oldGrid[cell].unpack(); ok && idx == i {
		oldGrid[cell] = 0
	}

	p.elementCount[from]--
	p.elementCount[to]++
	part.Type = to
	newGrid[cell] = packTag(to, i)
	return true
}

// StackingSweep enforces the one-non-energy-particle-per-cell invariant:
// any cell whose non-energy occupant count exceeds the configured
// threshold within the tracking window has its excess particles destroyed
// and is reported so the caller can convert it to explosion products
// (spec.md §4.A "Stacking detection"). Because pmap only ever holds one
// index per cell by construction, true multi-occupancy can only arise from
// a caller temporarily bypassing CreatePart's single-owner invariant (e.g.
// bulk edit operations); this sweep is the safety net for that case and a
// no-op under normal single-particle-per-cell operation.
func (p *Pool) StackingSweep(overflow map[[2]int]int) []int {
	var exploded []int
	for cellKey, count := range overflow {
		if count <= p.stackingThreshold {
			continue
		}
		x, y := cellKey[0], cellKey[1]
		if !p.inBounds(x, y) {
			continue
		}
		if _, idx, ok := p.pmap[p.cellIndex(x, y)].unpack(); ok {
			p.KillPart(idx)
		}
		exploded = append(exploded, y*p.X+x)
	}
	return exploded
}

// PoolState is the serializable form of a Pool's internal state: the full
// particle array (vacant slots included, since their Life field threads the
// free list) plus the bookkeeping Export/Import need to avoid rescanning.
// Used by package snapshot to deep-copy/restore a Pool without depending on
// its private fields.
type PoolState struct {
	Parts        []Particle
	FreeHead     int32
	LastActive   int
	ElementCount map[ElementID]int
}

// Export returns a deep copy of the pool's state.
func (p *Pool) Export() PoolState {
	parts := make([]Particle, len(p.parts))
	copy(parts, p.parts)
	ec := make(map[ElementID]int, len(p.elementCount))
	for k, v := range p.elementCount {
		ec[k] = v
	}
	return PoolState{Parts: parts, FreeHead: p.freeHead, LastActive: p.lastActiveIndex, ElementCount: ec}
}

// Import overwrites the pool's particle array and bookkeeping from st and
// rebuilds pmap/photons from the restored particles (those are a pure
// function of particle type/position, so they aren't part of PoolState).
func (p *Pool) Import(st PoolState) {
	copy(p.parts, st.Parts)
	p.freeHead = st.FreeHead
	p.lastActiveIndex = st.LastActive
	p.elementCount = make(map[ElementID]int, len(st.ElementCount))
	for k, v := range st.ElementCount {
		p.elementCount[k] = v
	}

	for i := range p.pmap {
		p.pmap[i] = 0
	}
	for i := range p.photons {
		p.photons[i] = 0
	}
	for i := 0; i <= p.lastActiveIndex && i < len(p.parts); i++ {
		part := &p.parts[i]
		if part.IsVacant() {
			continue
		}
		x, y := part.PX(), part.PY()
		if !p.inBounds(x, y) {
			continue
		}
		g := p.gridFor(part.Type)
		g[p.cellIndex(x, y)] = packTag(part.Type, i)
	}
}

// Invariants checks the pmap/photons/free-list coherence described by
// spec.md §8 property 4. Intended for debug builds and tests, not the hot
// path.
func (p *Pool) Invariants() error {
	live := 0
	for i := 0; i <= p.lastActiveIndex && i < len(p.parts); i++ {
		part := &p.parts[i]
		if part.IsVacant() {
			continue
		}
		live++
		x, y := part.PX(), part.PY()
		if !p.inBounds(x, y) {
			return fmt.Errorf("grid: particle %d out of bounds at (%d,%d)", i, x, y)
		}
		grid := p.gridFor(part.Type)
		typ, idx, ok := grid[p.cellIndex(x, y)].unpack()
		if !ok || typ != part.Type || idx != i {
			return fmt.Errorf("grid: pmap/photons mismatch at (%d,%d) for particle %d", x, y, i)
		}
	}

	freeCount := 0
	cur := p.freeHead
	seen := make(map[int32]bool)
	for cur != -1 {
		if seen[cur] {
			return fmt.Errorf("grid: free list cycle detected at %d", cur)
		}
		seen[cur] = true
		freeCount++
		cur = p.parts[cur].Life
	}
	if freeCount+live != len(p.parts) {
		return fmt.Errorf("grid: free list count %d + live %d != capacity %d", freeCount, live, len(p.parts))
	}
	return nil
}
