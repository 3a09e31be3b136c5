package mesh_test

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/chazu/geoproc/pkg/mesh"
	"github.com/chazu/geoproc/pkg/mesh/meshtest"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func fixtures() map[string]*mesh.TriangleMesh {
	return map[string]*mesh.TriangleMesh{
		"cube":        meshtest.Cube(),
		"tetrahedron": meshtest.Tetrahedron(),
		"icosahedron": meshtest.Icosahedron(),
		"grid":        mesh.NewGrid(4, 5),
		"disk":        meshtest.Fan(6, 6),
		"open fan":    meshtest.Fan(6, 3),
	}
}

// incidentTriangles counts triangles per vertex straight from the index array.
func incidentTriangles(m *mesh.TriangleMesh) []int {
	deg := make([]int, m.NumVertices())
	for _, v := range m.Triangles() {
		deg[v]++
	}
	return deg
}

func TestNextPrev(t *testing.T) {
	tests := []struct {
		c, next, prev int
	}{
		{0, 1, 2},
		{1, 2, 0},
		{2, 0, 1},
		{3, 4, 5},
		{5, 3, 4},
		{7, 8, 6},
	}
	for _, tt := range tests {
		if got := mesh.Next(tt.c); got != tt.next {
			t.Errorf("Next(%d) = %d, want %d", tt.c, got, tt.next)
		}
		if got := mesh.Prev(tt.c); got != tt.prev {
			t.Errorf("Prev(%d) = %d, want %d", tt.c, got, tt.prev)
		}
	}
}

func TestSetTrianglesValidation(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		wantErr bool
	}{
		{"valid", []int{0, 1, 2}, false},
		{"empty", nil, false},
		{"not a multiple of three", []int{0, 1}, true},
		{"index past the end", []int{0, 1, 3}, true},
		{"negative index", []int{0, -1, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mesh.New()
			require.NoError(t, m.SetVertexCoords([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}))
			err := m.SetTriangles(tt.indices)
			if tt.wantErr {
				require.ErrorIs(t, err, mesh.ErrInvalidTriangles)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSetVertexCoordsRejectsPartialTriple(t *testing.T) {
	m := mesh.New()
	err := m.SetVertexCoords([]float64{0, 0, 0, 1})
	require.ErrorIs(t, err, mesh.ErrInvalidVertices)
}

func TestSetVerticesCannotDropReferencedVertex(t *testing.T) {
	m := meshtest.Tetrahedron()
	err := m.SetVertices(m.Vertices()[:3])
	require.ErrorIs(t, err, mesh.ErrInvalidVertices)
}

func TestOppositeSymmetry(t *testing.T) {
	for name, m := range fixtures() {
		t.Run(name, func(t *testing.T) {
			topo := m.Topology()
			for c := 0; c < m.NumCorners(); c++ {
				o := topo.Opposite(c)
				if !o.IsReal() {
					continue
				}
				back := topo.Opposite(o.Corner)
				require.True(t, back.IsReal(), "corner %d", c)
				require.Equal(t, c, back.Corner, "corner %d", c)
				// Twins see the same edge from opposite triangles.
				a, b := topo.Vertex(mesh.Next(c)), topo.Vertex(mesh.Prev(c))
				oa, ob := topo.Vertex(mesh.Next(o.Corner)), topo.Vertex(mesh.Prev(o.Corner))
				require.Equal(t, [2]int{a, b}, [2]int{ob, oa})
			}
		})
	}
}

func TestCubeTopology(t *testing.T) {
	m := meshtest.Cube()
	topo := m.Topology()

	require.Empty(t, topo.BoundaryEdges())
	require.Len(t, topo.Edges(), 18)
	require.Zero(t, topo.NonManifoldEdges())

	deg := incidentTriangles(m)
	total := 0
	for v := 0; v < m.NumVertices(); v++ {
		ring := mesh.VertexNeighbours(topo, v)
		require.Len(t, ring, deg[v], "vertex %d", v)
		require.GreaterOrEqual(t, len(ring), 3)
		require.LessOrEqual(t, len(ring), 6)
		total += len(ring)
	}
	require.Equal(t, 3*m.NumTriangles(), total)

	b, err := m.Boundaries()
	require.NoError(t, err)
	require.Zero(t, b.Len())
}

func TestRingClosure(t *testing.T) {
	for name, m := range fixtures() {
		t.Run(name, func(t *testing.T) {
			topo := m.Topology()
			deg := incidentTriangles(m)
			for v := 0; v < m.NumVertices(); v++ {
				if topo.IsBoundaryVertex(v) || topo.IsIsolated(v) {
					continue
				}
				vv := mesh.NewVertexVertexIter(topo)
				first := vv.Init(v)
				require.Equal(t, first, vv.Current())
				steps := 1
				for n := vv.Next(); n != first; n = vv.Next() {
					steps++
					require.LessOrEqual(t, steps, deg[v], "vertex %d ring does not close", v)
				}
				require.Equal(t, deg[v], steps, "vertex %d", v)

				faces := mesh.VertexFaces(topo, v)
				require.Len(t, faces, deg[v])
				for _, f := range faces {
					require.Contains(t, m.Triangle(f), v)
				}
			}
		})
	}
}

func TestRingIsCounterclockwise(t *testing.T) {
	m := meshtest.Fan(6, 6)
	ring := mesh.VertexNeighbours(m.Topology(), 0)
	require.Len(t, ring, 6)
	for i, v := range ring {
		next := ring[(i+1)%len(ring)]
		require.Equal(t, v%6+1, next, "ring %v", ring)
	}
}

func TestBoundaryVertexRing(t *testing.T) {
	// Centre of a half-open fan: three triangles, four neighbours.
	m := meshtest.Fan(6, 3)
	topo := m.Topology()
	require.True(t, topo.IsBoundaryVertex(0))

	ring := mesh.VertexNeighbours(topo, 0)
	slices.Sort(ring)
	require.Equal(t, []int{1, 2, 3, 4}, ring)

	faces := mesh.VertexFaces(topo, 0)
	slices.Sort(faces)
	require.Equal(t, []int{0, 1, 2}, faces)

	// The walk keeps cycling through the same neighbours.
	it := mesh.NewVertexVertexIter(topo)
	first := it.Init(0)
	seen := []int{first}
	for range 7 {
		seen = append(seen, it.Next())
	}
	require.Equal(t, seen[:4], seen[4:])
}

func TestSingleTriangleRing(t *testing.T) {
	m, err := mesh.FromArrays([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2})
	require.NoError(t, err)
	topo := m.Topology()
	for v := 0; v < 3; v++ {
		ring := mesh.VertexNeighbours(topo, v)
		require.Len(t, ring, 2)
		require.NotContains(t, ring, v)
		require.Equal(t, []int{0}, mesh.VertexFaces(topo, v))
	}
}

func TestBoundaryClosureLinks(t *testing.T) {
	m := mesh.NewGrid(3, 3)
	topo := m.Topology()
	closures := 0
	for c := 0; c < m.NumCorners(); c++ {
		if topo.Opposite(c).IsClosure() {
			closures++
		}
	}
	// One closure per boundary vertex.
	require.Equal(t, 8, closures)
}

func TestGridBoundaryLoop(t *testing.T) {
	const n = 4
	m := mesh.NewGrid(n, n)
	b, err := m.Boundaries()
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())

	loop := b.Loops[0]
	require.Len(t, loop, 12)

	var perimeter []int
	for v := 0; v < n*n; v++ {
		i, j := v/n, v%n
		if i == 0 || j == 0 || i == n-1 || j == n-1 {
			perimeter = append(perimeter, v)
		}
	}
	sorted := slices.Clone(loop)
	slices.Sort(sorted)
	require.Equal(t, perimeter, sorted)

	// Consecutive loop vertices are grid neighbours along the perimeter.
	for k, v := range loop {
		w := loop[(k+1)%len(loop)]
		di := math.Abs(float64(v/n - w/n))
		dj := math.Abs(float64(v%n - w%n))
		require.Equal(t, 1.0, di+dj, "loop %v at %d", loop, k)
	}

	// The interior lies to the left: the loop is counterclockwise in (x, y).
	var signedArea float64
	for k, v := range loop {
		p, q := m.Vertex(v), m.Vertex(loop[(k+1)%len(loop)])
		signedArea += p.X*q.Y - q.X*p.Y
	}
	require.Greater(t, signedArea, 0.0)
}

func TestBoundaryLoopsMatchBoundaryEdges(t *testing.T) {
	for name, m := range fixtures() {
		t.Run(name, func(t *testing.T) {
			topo := m.Topology()
			b, err := m.Boundaries()
			require.NoError(t, err)

			want := map[[2]int]int{}
			for _, e := range topo.BoundaryEdges() {
				want[[2]int{min(e.From, e.To), max(e.From, e.To)}]++
			}
			got := map[[2]int]int{}
			for _, loop := range b.Loops {
				for k, v := range loop {
					w := loop[(k+1)%len(loop)]
					got[[2]int{min(v, w), max(v, w)}]++
				}
			}
			require.Equal(t, want, got)
		})
	}
}

func TestTwoBoundaryLoops(t *testing.T) {
	// An annulus: inner and outer square rings joined by eight triangles.
	coords := []float64{
		-2, -2, 0, 2, -2, 0, 2, 2, 0, -2, 2, 0,
		-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0,
	}
	tris := []int{
		0, 1, 5, 0, 5, 4,
		1, 2, 6, 1, 6, 5,
		2, 3, 7, 2, 7, 6,
		3, 0, 4, 3, 4, 7,
	}
	m, err := mesh.FromArrays(coords, tris)
	require.NoError(t, err)
	b, err := m.Boundaries()
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())
	for _, loop := range b.Loops {
		require.Len(t, loop, 4)
	}
}

func TestInconsistentOrientation(t *testing.T) {
	// Both triangles traverse 0→1, so the boundary cannot be chained into a loop.
	coords := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, -1, 0}
	m, err := mesh.FromArrays(coords, []int{0, 1, 2, 0, 1, 3})
	require.NoError(t, err)

	_, err = m.Boundaries()
	require.True(t, errors.Is(err, mesh.ErrTopologyInconsistent), "Boundaries() err = %v", err)

	_, err = m.Stats()
	require.True(t, errors.Is(err, mesh.ErrTopologyInconsistent), "Stats() err = %v", err)
}

func TestNonManifoldEdge(t *testing.T) {
	coords := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, -1, 0, 0, 0, 1}
	tris := []int{0, 1, 2, 1, 0, 3, 0, 1, 4}
	m, err := mesh.FromArrays(coords, tris)
	require.NoError(t, err)
	topo := m.Topology()
	require.Equal(t, 1, topo.NonManifoldEdges())
	for c := 0; c < m.NumCorners(); c++ {
		if o := topo.Opposite(c); o.IsReal() {
			require.Equal(t, c, topo.Opposite(o.Corner).Corner)
		}
	}
}

func TestEdgesLeftRight(t *testing.T) {
	m := mesh.NewGrid(3, 3)
	topo := m.Topology()
	require.Len(t, topo.Edges(), 16)
	for idx, e := range topo.Edges() {
		require.Less(t, e.V0, e.V1)
		if e.Left >= 0 {
			tri := m.Triangle(e.Left)
			require.Contains(t, tri, e.V0)
			require.Contains(t, tri, e.V1)
		}
		for _, side := range []int{e.Left, e.Right} {
			if side >= 0 {
				require.Contains(t, topo.TriangleEdges(side), idx)
			}
		}
		require.Equal(t, e.IsBoundary(), e.Left < 0 || e.Right < 0)
	}
	for tri := 0; tri < m.NumTriangles(); tri++ {
		for slot, idx := range topo.TriangleEdges(tri) {
			e := topo.Edges()[idx]
			c := 3*tri + slot
			ends := []int{topo.Vertex(mesh.Next(c)), topo.Vertex(mesh.Prev(c))}
			slices.Sort(ends)
			require.Equal(t, []int{e.V0, e.V1}, ends)
		}
	}
}

func TestAreaConservation(t *testing.T) {
	for name, m := range fixtures() {
		t.Run(name, func(t *testing.T) {
			g := m.Geometry()
			voronoi := make([]float64, m.NumVertices())
			for tri := 0; tri < m.NumTriangles(); tri++ {
				for _, v := range m.Triangle(tri) {
					voronoi[v] += g.Area(tri) / 3
				}
			}
			var sum float64
			for _, a := range voronoi {
				sum += 3 * a
			}
			require.InDelta(t, 3*g.TotalArea(), sum, 1e-12)
		})
	}
}

func TestGeometryAngles(t *testing.T) {
	m := meshtest.Cube()
	g := m.Geometry()
	for tri := 0; tri < m.NumTriangles(); tri++ {
		require.InDelta(t, 0.5, g.Area(tri), 1e-12)
		var sum float64
		for k := 0; k < 3; k++ {
			sum += g.Angle(3*tri + k)
		}
		require.InDelta(t, math.Pi, sum, 1e-12)
	}
}

func TestTriangleVerticesFrom(t *testing.T) {
	m := meshtest.Tetrahedron()
	require.Equal(t, [3]int{1, 3, 0}, m.TriangleVerticesFrom(1, 1))
	require.Equal(t, [3]int{3, 0, 1}, m.TriangleVerticesFrom(1, 3))
	require.Panics(t, func() { m.TriangleVerticesFrom(1, 2) })
}

func TestIteratorPanicsOnIsolatedVertex(t *testing.T) {
	m, err := mesh.FromArrays([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 5, 5, 5}, []int{0, 1, 2})
	require.NoError(t, err)
	topo := m.Topology()
	require.True(t, topo.IsIsolated(3))
	require.Panics(t, func() { mesh.NewVertexVertexIter(topo).Init(3) })
	require.Panics(t, func() { mesh.NewVertexFaceIter(topo).Init(9) })
}

func TestDerivedDataInvalidation(t *testing.T) {
	m := meshtest.Cube()
	topo := m.Topology()
	geo := m.Geometry()
	require.Same(t, topo, m.Topology())

	moved := slices.Clone(m.Vertices())
	moved[0] = r3.Vec{X: -1}
	require.NoError(t, m.SetVertices(moved))
	require.Same(t, topo, m.Topology(), "topology depends on triangles only")
	require.NotSame(t, geo, m.Geometry())

	require.NoError(t, m.SetTriangles(m.Triangles()))
	require.NotSame(t, topo, m.Topology())
}

func TestDestroy(t *testing.T) {
	m := meshtest.Cube()
	m.Topology()
	m.Destroy()
	require.Zero(t, m.NumVertices())
	require.Zero(t, m.NumTriangles())
	require.Zero(t, m.Topology().NumCorners())
}

func TestEmptyMeshTopology(t *testing.T) {
	m := mesh.New()
	topo := m.Topology()
	require.Empty(t, topo.Edges())
	require.Empty(t, topo.BoundaryEdges())
	b, err := m.Boundaries()
	require.NoError(t, err)
	require.Zero(t, b.Len())
}

func TestScaleToUnit(t *testing.T) {
	m := meshtest.Cube()
	scaled := make([]r3.Vec, m.NumVertices())
	for i, p := range m.Vertices() {
		scaled[i] = r3.Scale(4, p)
	}
	require.NoError(t, m.SetVertices(scaled))
	m.ScaleToUnit()
	min, max := m.Bounds()
	require.InDelta(t, 1.0, max.X-min.X, 1e-12)
	require.InDelta(t, -0.5, min.Y, 1e-12)
	require.InDelta(t, 0.5, max.Z, 1e-12)
}

func TestVertexNormals(t *testing.T) {
	m := meshtest.Icosahedron()
	for v, n := range m.VertexNormals() {
		require.InDelta(t, 1.0, r3.Norm(n), 1e-12)
		// On a sphere the normal points along the position.
		require.InDelta(t, 1.0, r3.Dot(n, m.Vertex(v)), 1e-9)
	}
}

func TestStats(t *testing.T) {
	m := mesh.NewGrid(4, 4)
	s, err := m.Stats()
	require.NoError(t, err)
	require.Equal(t, mesh.Stats{
		Vertices:      16,
		Triangles:     18,
		Corners:       54,
		Edges:         33,
		BoundaryEdges: 12,
		Boundaries:    1,
	}, s)
}

func TestFromArraysPropagatesErrors(t *testing.T) {
	_, err := mesh.FromArrays([]float64{0, 0, 0}, []int{0, 0, 1})
	require.True(t, errors.Is(err, mesh.ErrInvalidTriangles))
}
