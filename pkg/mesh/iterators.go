package mesh

// VertexVertexIter walks the vertices adjacent to a vertex in
// counterclockwise order. The sequence cycles: once every neighbour has been
// produced, Next returns the first one again.
//
//	it := mesh.NewVertexVertexIter(topo)
//	first := it.Init(v)
//	for n := first; ; {
//		// use n
//		if n = it.Next(); n == first {
//			break
//		}
//	}
type VertexVertexIter struct {
	t        *Topology
	cursor   int
	halfStep bool
	current  int
}

// NewVertexVertexIter returns an iterator over t. It holds a read-only
// reference and may be used concurrently with other iterators.
func NewVertexVertexIter(t *Topology) *VertexVertexIter {
	return &VertexVertexIter{t: t, current: -1}
}

// Init places the cursor at the representative corner of v and returns the
// first neighbour. It panics if v is out of range or belongs to no triangle.
func (it *VertexVertexIter) Init(v int) int {
	it.cursor = it.t.mustCorner(v)
	it.halfStep = false
	return it.Next()
}

// Current returns the last value produced by Next.
func (it *VertexVertexIter) Current() int { return it.current }

// Next advances to the following neighbour and returns it.
func (it *VertexVertexIter) Next() int {
	t := it.t
	if it.halfStep {
		// The previous step reached the boundary: emit the far vertex of the
		// last triangle, then jump to the other side of the fan.
		nc := Next(it.cursor)
		it.current = t.tris[Next(nc)]
		it.cursor = Next(t.closureTarget(it.cursor, nc))
		it.halfStep = false
		return it.current
	}

	ncc := Next(it.cursor)
	it.current = t.tris[ncc]
	if o := t.opposite[ncc]; o.IsReal() {
		it.cursor = Next(o.Corner)
	} else {
		it.halfStep = true
	}
	return it.current
}

// VertexFaceIter walks the triangles incident to a vertex in
// counterclockwise order, cycling like VertexVertexIter.
type VertexFaceIter struct {
	t       *Topology
	cursor  int
	current int
}

// NewVertexFaceIter returns an iterator over t.
func NewVertexFaceIter(t *Topology) *VertexFaceIter {
	return &VertexFaceIter{t: t, current: -1}
}

// Init places the cursor at the representative corner of v and returns the
// first triangle. It panics if v is out of range or belongs to no triangle.
func (it *VertexFaceIter) Init(v int) int {
	it.cursor = it.t.mustCorner(v)
	return it.Next()
}

// Current returns the last value produced by Next.
func (it *VertexFaceIter) Current() int { return it.current }

// Next advances to the following triangle and returns it.
func (it *VertexFaceIter) Next() int {
	t := it.t
	it.current = it.cursor / 3
	ncc := Next(it.cursor)
	switch o := t.opposite[ncc]; o.Kind {
	case RealAdjacency, ClosureAdjacency:
		it.cursor = Next(o.Corner)
	default:
		it.cursor = Next(t.closureTarget(it.cursor, ncc))
	}
	return it.current
}

// closureTarget returns the corner a boundary crossing lands on from the
// open slot at corner open, reached with the cursor at corner cursor. The
// stored closure link is used when present; otherwise the fan is walked
// clockwise, which happens only at vertices with several boundary fans.
func (t *Topology) closureTarget(cursor, open int) int {
	if o := t.opposite[open]; o.IsClosure() {
		return o.Corner
	}
	end, ok := t.clockwiseEnd(cursor)
	if !ok {
		panic("mesh: corrupt corner table, clockwise walk does not terminate")
	}
	return end
}

// VertexNeighbours returns the 1-ring of v in counterclockwise order.
func VertexNeighbours(t *Topology, v int) []int {
	it := NewVertexVertexIter(t)
	return collectRing(it.Init(v), it.Next, t.NumCorners())
}

// VertexFaces returns the triangles incident to v in counterclockwise order.
func VertexFaces(t *Topology, v int) []int {
	it := NewVertexFaceIter(t)
	return collectRing(it.Init(v), it.Next, t.NumCorners())
}

// collectRing gathers values until the sequence returns to first. limit
// bounds the walk on corrupt tables where first never repeats.
func collectRing(first int, next func() int, limit int) []int {
	ring := []int{first}
	for n := next(); n != first && len(ring) <= limit; n = next() {
		ring = append(ring, n)
	}
	return ring
}
