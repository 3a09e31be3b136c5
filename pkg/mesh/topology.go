package mesh

import (
	"cmp"
	"fmt"
	"log"
	"slices"
)

// Edge is an undirected mesh edge with V0 < V1. Left is the triangle that
// traverses the edge from V0 to V1, Right the one that traverses it from V1
// to V0. A missing side is -1.
type Edge struct {
	V0    int `json:"v0"`
	V1    int `json:"v1"`
	Left  int `json:"left"`
	Right int `json:"right"`
}

// IsBoundary reports whether the edge has a single incident triangle.
func (e Edge) IsBoundary() bool { return e.Left < 0 || e.Right < 0 }

// Other returns the triangle on the other side of the edge from t, or -1.
func (e Edge) Other(t int) int {
	if e.Left == t {
		return e.Right
	}
	return e.Left
}

// BoundaryEdge is an edge with one incident triangle, directed as that
// triangle traverses it: the mesh interior lies to the left of From→To.
type BoundaryEdge struct {
	From     int `json:"from"`
	To       int `json:"to"`
	Triangle int `json:"triangle"`
}

// Topology is the corner table of a mesh: the representative corner of each
// vertex, the opposite-corner slot of each corner, the edge list and the
// boundary edge list.
type Topology struct {
	tris          []int
	cornerOf      []int
	opposite      []Adjacency
	edges         []Edge
	triEdges      [][3]int
	boundaryEdges []BoundaryEdge
	onBoundary    []bool
	nonManifold   int
}

// edgeRecord is the edge opposite corner in its triangle, stored with
// sorted endpoints. flipped is set when the triangle traverses it from b to a.
type edgeRecord struct {
	a, b    int
	corner  int
	flipped bool
}

func buildTopology(nv int, tris []int) *Topology {
	nc := len(tris)
	t := &Topology{
		tris:       tris,
		cornerOf:   make([]int, nv),
		opposite:   make([]Adjacency, nc),
		triEdges:   make([][3]int, nc/3),
		onBoundary: make([]bool, nv),
	}
	for v := range t.cornerOf {
		t.cornerOf[v] = -1
	}
	for c, v := range tris {
		t.cornerOf[v] = c
	}

	records := make([]edgeRecord, nc)
	for c := range records {
		from, to := tris[Next(c)], tris[Prev(c)]
		if from < to {
			records[c] = edgeRecord{a: from, b: to, corner: c}
		} else {
			records[c] = edgeRecord{a: to, b: from, corner: c, flipped: true}
		}
	}
	slices.SortFunc(records, func(x, y edgeRecord) int {
		if r := cmp.Compare(x.a, y.a); r != 0 {
			return r
		}
		if r := cmp.Compare(x.b, y.b); r != 0 {
			return r
		}
		return cmp.Compare(x.corner, y.corner)
	})

	for i := 0; i < len(records); {
		j := i + 1
		for j < len(records) && records[j].a == records[i].a && records[j].b == records[i].b {
			j++
		}
		run := records[i:j]
		if len(run) > 2 {
			t.nonManifold++
		}
		if len(run) >= 2 {
			c0, c1 := run[0].corner, run[1].corner
			t.opposite[c0] = Adjacency{Kind: RealAdjacency, Corner: c1}
			t.opposite[c1] = Adjacency{Kind: RealAdjacency, Corner: c0}
			t.addEdge(run[0], run[1:2])
			run = run[2:]
		}
		// Records without a twin, including the excess of a non-manifold run,
		// are boundary edges.
		for _, r := range run {
			t.addEdge(r, nil)
			from, to := tris[Next(r.corner)], tris[Prev(r.corner)]
			t.boundaryEdges = append(t.boundaryEdges, BoundaryEdge{From: from, To: to, Triangle: r.corner / 3})
			t.onBoundary[from] = true
			t.onBoundary[to] = true
		}
		i = j
	}
	if t.nonManifold > 0 {
		log.Printf("mesh: %d non-manifold edges; excess triangles treated as boundary", t.nonManifold)
	}

	t.closeBoundaryRings()
	return t
}

// addEdge appends the undirected edge of r (and its twin, if any) to the
// edge list and records it in the per-triangle edge table.
func (t *Topology) addEdge(r edgeRecord, twins []edgeRecord) {
	idx := len(t.edges)
	e := Edge{V0: r.a, V1: r.b, Left: -1, Right: -1}
	for _, rec := range append([]edgeRecord{r}, twins...) {
		tri := rec.corner / 3
		// A consistently oriented pair fills both sides; an inconsistent
		// one falls back to whichever side is still free.
		if !rec.flipped && e.Left < 0 || rec.flipped && e.Right >= 0 {
			e.Left = tri
		} else {
			e.Right = tri
		}
		t.triEdges[tri][rec.corner%3] = idx
	}
	t.edges = append(t.edges, e)
}

// closeBoundaryRings links, for every boundary vertex, the corner where a
// counterclockwise walk leaves the mesh to the corner where a clockwise walk
// leaves it, so ring iterators can step across the gap.
func (t *Topology) closeBoundaryRings() {
	for v, c := range t.cornerOf {
		if !t.onBoundary[v] || c < 0 {
			continue
		}
		lastCCW, cc, ok := t.counterclockwiseEnd(c)
		if !ok {
			continue
		}
		lastCW, ok := t.clockwiseEnd(cc)
		if !ok {
			continue
		}
		t.opposite[lastCCW] = Adjacency{Kind: ClosureAdjacency, Corner: lastCW}
	}
}

// counterclockwiseEnd walks counterclockwise around the vertex of corner c
// until the next edge has no real opposite. It returns the corner whose
// opposite slot is open and the cursor corner reached. ok is false when the
// walk does not terminate (a closed fan or a corrupt table).
func (t *Topology) counterclockwiseEnd(c int) (open, cursor int, ok bool) {
	cc := c
	for range len(t.tris) + 1 {
		ncc := Next(cc)
		o := t.opposite[ncc]
		if !o.IsReal() {
			return ncc, cc, true
		}
		cc = Next(o.Corner)
	}
	return -1, -1, false
}

// clockwiseEnd walks clockwise from cursor corner c and returns the corner
// whose opposite slot is open on the other side of the fan.
func (t *Topology) clockwiseEnd(c int) (open int, ok bool) {
	cc := c
	for range len(t.tris) + 1 {
		ncc := Prev(cc)
		o := t.opposite[ncc]
		if !o.IsReal() {
			return ncc, true
		}
		cc = Prev(o.Corner)
	}
	return -1, false
}

// NumVertices returns the number of vertices the table was built for.
func (t *Topology) NumVertices() int { return len(t.cornerOf) }

// NumCorners returns the number of corners.
func (t *Topology) NumCorners() int { return len(t.tris) }

// Vertex returns the vertex of corner c.
func (t *Topology) Vertex(c int) int { return t.tris[c] }

// CornerOf returns the representative corner of v, or -1 if v belongs to no
// triangle.
func (t *Topology) CornerOf(v int) int { return t.cornerOf[v] }

// IsIsolated reports whether v belongs to no triangle.
func (t *Topology) IsIsolated(v int) bool { return t.cornerOf[v] < 0 }

// Opposite returns the opposite-corner slot of c.
func (t *Topology) Opposite(c int) Adjacency { return t.opposite[c] }

// IsBoundaryVertex reports whether v is an endpoint of a boundary edge.
func (t *Topology) IsBoundaryVertex(v int) bool { return t.onBoundary[v] }

// Edges returns the undirected edge list.
func (t *Topology) Edges() []Edge { return t.edges }

// TriangleEdges returns the indices into Edges of the edges of triangle tri;
// slot i is the edge opposite the triangle's i-th corner.
func (t *Topology) TriangleEdges(tri int) [3]int { return t.triEdges[tri] }

// BoundaryEdges returns the boundary edge list.
func (t *Topology) BoundaryEdges() []BoundaryEdge { return t.boundaryEdges }

// NonManifoldEdges returns the number of vertex pairs shared by more than
// two triangles.
func (t *Topology) NonManifoldEdges() int { return t.nonManifold }

// mustCorner returns the representative corner of v and panics when v is
// out of range or isolated.
func (t *Topology) mustCorner(v int) int {
	if v < 0 || v >= len(t.cornerOf) {
		panic(fmt.Sprintf("mesh: vertex %d out of range [0, %d)", v, len(t.cornerOf)))
	}
	c := t.cornerOf[v]
	if c < 0 {
		panic(fmt.Sprintf("mesh: vertex %d belongs to no triangle", v))
	}
	return c
}
