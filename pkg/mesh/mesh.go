// Package mesh holds the triangle mesh store and the corner-table topology
// built on top of it: opposite corners, boundary closure links, the edge
// list, boundary loops and the 1-ring iterators.
//
// Derived data (geometry caches, topology, boundary loops) is built on
// demand and dropped whenever the data it depends on changes. Building is
// not synchronized: call Geometry, Topology or Boundaries once before
// sharing a mesh between goroutines.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidTriangles is returned when a triangle array is malformed.
	ErrInvalidTriangles = errors.New("mesh: invalid triangles")
	// ErrInvalidVertices is returned when a vertex array is malformed.
	ErrInvalidVertices = errors.New("mesh: invalid vertices")
)

// TriangleMesh owns vertex positions and triangle index triples.
// Triangle t occupies corners 3t, 3t+1 and 3t+2; the vertex of corner c
// is Triangles()[c].
type TriangleMesh struct {
	vertices  []r3.Vec
	triangles []int

	geometry   *Geometry
	topology   *Topology
	boundaries *Boundaries
}

// New returns an empty mesh.
func New() *TriangleMesh {
	return &TriangleMesh{}
}

// FromArrays builds a mesh from flat coordinate triples and flat triangle
// index triples.
func FromArrays(coords []float64, indices []int) (*TriangleMesh, error) {
	m := New()
	if err := m.SetVertexCoords(coords); err != nil {
		return nil, err
	}
	if err := m.SetTriangles(indices); err != nil {
		return nil, err
	}
	return m, nil
}

// SetVertices replaces the vertex positions. The slice is copied.
// Geometry caches are dropped; topology is kept since it only depends on
// the triangles. The vertex count may only change while no triangles
// reference a vertex that would disappear.
func (m *TriangleMesh) SetVertices(vs []r3.Vec) error {
	for _, idx := range m.triangles {
		if idx >= len(vs) {
			return fmt.Errorf("%w: triangles reference vertex %d of %d", ErrInvalidVertices, idx, len(vs))
		}
	}
	if len(vs) != len(m.vertices) {
		m.topology = nil
		m.boundaries = nil
	}
	m.vertices = append(m.vertices[:0:0], vs...)
	m.geometry = nil
	return nil
}

// SetVertexCoords replaces the vertex positions from flat (x, y, z) triples.
func (m *TriangleMesh) SetVertexCoords(coords []float64) error {
	if len(coords)%3 != 0 {
		return fmt.Errorf("%w: %d coordinates is not a multiple of 3", ErrInvalidVertices, len(coords))
	}
	vs := make([]r3.Vec, len(coords)/3)
	for i := range vs {
		vs[i] = r3.Vec{X: coords[3*i], Y: coords[3*i+1], Z: coords[3*i+2]}
	}
	return m.SetVertices(vs)
}

// SetTriangles replaces the triangle list with flat index triples. Every
// index must refer to an existing vertex, so vertices go first. All derived
// data is dropped.
func (m *TriangleMesh) SetTriangles(indices []int) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidTriangles, len(indices))
	}
	for c, idx := range indices {
		if idx < 0 || idx >= len(m.vertices) {
			return fmt.Errorf("%w: corner %d references vertex %d of %d", ErrInvalidTriangles, c, idx, len(m.vertices))
		}
	}
	m.triangles = append(m.triangles[:0:0], indices...)
	m.geometry = nil
	m.topology = nil
	m.boundaries = nil
	return nil
}

// Destroy clears the mesh and every derived structure.
func (m *TriangleMesh) Destroy() {
	m.vertices = nil
	m.triangles = nil
	m.geometry = nil
	m.topology = nil
	m.boundaries = nil
}

// Clone returns a deep copy of the vertex and triangle arrays. Derived data
// is rebuilt on demand by the copy.
func (m *TriangleMesh) Clone() *TriangleMesh {
	return &TriangleMesh{
		vertices:  append([]r3.Vec(nil), m.vertices...),
		triangles: append([]int(nil), m.triangles...),
	}
}

// NumVertices returns the number of vertices.
func (m *TriangleMesh) NumVertices() int { return len(m.vertices) }

// NumTriangles returns the number of triangles.
func (m *TriangleMesh) NumTriangles() int { return len(m.triangles) / 3 }

// NumCorners returns the number of corners (three per triangle).
func (m *TriangleMesh) NumCorners() int { return len(m.triangles) }

// Vertex returns the position of vertex v.
func (m *TriangleMesh) Vertex(v int) r3.Vec { return m.vertices[v] }

// Vertices returns the vertex positions. The slice must not be modified.
func (m *TriangleMesh) Vertices() []r3.Vec { return m.vertices }

// Triangles returns the flat triangle index array. The slice must not be
// modified.
func (m *TriangleMesh) Triangles() []int { return m.triangles }

// Triangle returns the three vertices of triangle t.
func (m *TriangleMesh) Triangle(t int) [3]int {
	return [3]int{m.triangles[3*t], m.triangles[3*t+1], m.triangles[3*t+2]}
}

// TriangleVerticesFrom returns the vertices of triangle t rotated so that
// v comes first, keeping the triangle's orientation.
func (m *TriangleMesh) TriangleVerticesFrom(t, v int) [3]int {
	return rotateTo(m.triangles, t, v)
}

func rotateTo(tris []int, t, v int) [3]int {
	a, b, c := tris[3*t], tris[3*t+1], tris[3*t+2]
	switch v {
	case a:
		return [3]int{a, b, c}
	case b:
		return [3]int{b, c, a}
	case c:
		return [3]int{c, a, b}
	}
	panic(fmt.Sprintf("mesh: vertex %d is not in triangle %d", v, t))
}

// Bounds returns the axis-aligned bounding box of the vertices. An empty
// mesh returns two zero vectors.
func (m *TriangleMesh) Bounds() (min, max r3.Vec) {
	if len(m.vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = m.vertices[0], m.vertices[0]
	for _, p := range m.vertices[1:] {
		min = r3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = r3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return min, max
}

// ScaleToUnit centres the mesh at the mean of its vertices and divides every
// coordinate by the largest side of the bounding box.
func (m *TriangleMesh) ScaleToUnit() {
	if len(m.vertices) == 0 {
		return
	}
	var centre r3.Vec
	for _, p := range m.vertices {
		centre = r3.Add(centre, p)
	}
	centre = r3.Scale(1/float64(len(m.vertices)), centre)

	min, max := m.Bounds()
	side := math.Max(max.X-min.X, math.Max(max.Y-min.Y, max.Z-min.Z))
	if side == 0 {
		side = 1
	}
	for i, p := range m.vertices {
		m.vertices[i] = r3.Scale(1/side, r3.Sub(p, centre))
	}
	m.geometry = nil
}

// Geometry returns the per-triangle area and angle caches, computing them
// if the vertices or triangles changed since the last call.
func (m *TriangleMesh) Geometry() *Geometry {
	if m.geometry == nil {
		m.geometry = computeGeometry(m.vertices, m.triangles)
	}
	return m.geometry
}

// Topology returns the corner table, building it if the triangles changed
// since the last call. Building twice is a no-op.
func (m *TriangleMesh) Topology() *Topology {
	if m.topology == nil {
		m.topology = buildTopology(len(m.vertices), m.triangles)
		m.boundaries = nil
	}
	return m.topology
}

// Boundaries returns the boundary loops, assembling them from the boundary
// edge list if needed. It fails with ErrTopologyInconsistent when a loop
// cannot be closed.
func (m *TriangleMesh) Boundaries() (*Boundaries, error) {
	t := m.Topology()
	if m.boundaries == nil {
		b, err := assembleBoundaries(t)
		if err != nil {
			return nil, err
		}
		m.boundaries = b
	}
	return m.boundaries, nil
}

// Stats summarizes the counts exposed to inspection tools.
type Stats struct {
	Vertices         int `json:"vertices"`
	Triangles        int `json:"triangles"`
	Corners          int `json:"corners"`
	Edges            int `json:"edges"`
	BoundaryEdges    int `json:"boundaryEdges"`
	Boundaries       int `json:"boundaries"`
	NonManifoldEdges int `json:"nonManifoldEdges"`
}

// Stats builds topology and boundary loops and returns the mesh counts.
func (m *TriangleMesh) Stats() (Stats, error) {
	t := m.Topology()
	b, err := m.Boundaries()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Vertices:         m.NumVertices(),
		Triangles:        m.NumTriangles(),
		Corners:          m.NumCorners(),
		Edges:            len(t.edges),
		BoundaryEdges:    len(t.boundaryEdges),
		Boundaries:       len(b.Loops),
		NonManifoldEdges: t.nonManifold,
	}, nil
}
