// Package curvature computes discrete Gauss and mean curvature per vertex.
//
// Curvature is only defined at interior vertices. Boundary and isolated
// vertices report NotComputable, and the Min/Max of a Result skip them.
package curvature

import (
	"math"

	"github.com/chazu/geoproc/pkg/mesh"
	"github.com/chazu/geoproc/pkg/parallel"
	"gonum.org/v1/gonum/spatial/r3"
)

// NotComputable is the value reported for vertices whose 1-ring is open.
var NotComputable = math.NaN()

// Options controls how curvature is evaluated. The zero value runs
// sequentially.
type Options struct {
	// Threads is the number of goroutines used. Values below 2 select the
	// sequential algorithm.
	Threads int
}

// Result holds one curvature value per vertex and the extremes over the
// computable values. Min and Max are NaN when no vertex is computable.
type Result struct {
	Values []float64 `json:"values"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
}

func newResult(values []float64) Result {
	r := Result{Values: values, Min: math.NaN(), Max: math.NaN()}
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(r.Min) || v < r.Min {
			r.Min = v
		}
		if math.IsNaN(r.Max) || v > r.Max {
			r.Max = v
		}
	}
	return r
}

// Gauss returns the Gauss curvature (2π − Σθ)/(A/3) of every vertex, where
// Σθ is the sum of the angles incident to the vertex and A the area of its
// 1-ring.
//
// The sequential form accumulates angle deficits and areas in a single pass
// over the triangles. With several threads each vertex walks its own 1-ring
// instead, so the two forms agree up to summation order.
func Gauss(m *mesh.TriangleMesh, opts Options) Result {
	topo := m.Topology()
	geo := m.Geometry()
	if opts.Threads < 2 {
		return newResult(gaussSequential(m, topo, geo))
	}
	values := make([]float64, m.NumVertices())
	parallel.Each(len(values), opts.Threads, func(start, end int) {
		for v := start; v < end; v++ {
			values[v] = gaussAt(topo, geo, v)
		}
	})
	return newResult(values)
}

func gaussSequential(m *mesh.TriangleMesh, topo *mesh.Topology, geo *mesh.Geometry) []float64 {
	nv := m.NumVertices()
	areas := make([]float64, nv)
	deficit := make([]float64, nv)
	for i := range deficit {
		deficit[i] = 2 * math.Pi
	}
	for c := 0; c < m.NumCorners(); c++ {
		v := topo.Vertex(c)
		areas[v] += geo.Area(c / 3)
		deficit[v] -= geo.Angle(c)
	}
	kg := make([]float64, nv)
	for v := range kg {
		if !computable(topo, v) {
			kg[v] = NotComputable
			continue
		}
		kg[v] = 3 * (deficit[v] / areas[v])
	}
	return kg
}

// VertexGauss returns the Gauss curvature at v by walking its 1-ring.
func VertexGauss(m *mesh.TriangleMesh, v int) float64 {
	return gaussAt(m.Topology(), m.Geometry(), v)
}

func gaussAt(topo *mesh.Topology, geo *mesh.Geometry, v int) float64 {
	if !computable(topo, v) {
		return NotComputable
	}
	var angles, area float64
	it := mesh.NewVertexFaceIter(topo)
	first := it.Init(v)
	for f := first; ; {
		area += geo.Area(f)
		angles += geo.Angle(cornerIn(topo, f, v))
		if f = it.Next(); f == first {
			break
		}
	}
	area /= 3
	return (1 / area) * (2*math.Pi - angles)
}

// Mean returns the mean curvature of every vertex: half the length of the
// cotangent Laplacian of the positions divided by twice the Voronoi area.
//
// Obtuse triangles contribute half their area instead of a true mixed
// Voronoi area, so values are biased upward on poorly shaped triangles such
// as marching-cubes output.
func Mean(m *mesh.TriangleMesh, opts Options) Result {
	topo := m.Topology()
	geo := m.Geometry()
	vs := m.Vertices()
	values := make([]float64, m.NumVertices())
	if opts.Threads < 2 {
		for v := range values {
			values[v] = meanAt(topo, geo, vs, v)
		}
		return newResult(values)
	}
	parallel.Each(len(values), opts.Threads, func(start, end int) {
		for v := start; v < end; v++ {
			values[v] = meanAt(topo, geo, vs, v)
		}
	})
	return newResult(values)
}

// VertexMean returns the mean curvature at v.
func VertexMean(m *mesh.TriangleMesh, v int) float64 {
	return meanAt(m.Topology(), m.Geometry(), m.Vertices(), v)
}

// meanAt visits consecutive face pairs f1 = (v, j1, k1), f2 = (v, k1, k2)
// around v. The edge v–k1 is shared; β is the angle at j1 in f1 and α the
// angle at k2 in f2.
func meanAt(topo *mesh.Topology, geo *mesh.Geometry, vs []r3.Vec, v int) float64 {
	if !computable(topo, v) {
		return NotComputable
	}
	var (
		curv r3.Vec
		vor  float64
	)
	it := mesh.NewVertexFaceIter(topo)
	first := it.Init(v)
	f1, f2 := first, it.Next()
	for {
		c1 := cornerIn(topo, f1, v)
		j1, k1 := mesh.Next(c1), mesh.Prev(c1)
		c2 := cornerIn(topo, f2, v)
		k2 := mesh.Prev(c2)

		beta := geo.Angle(j1)
		alpha := geo.Angle(k2)
		w := mesh.Cot(alpha) + mesh.Cot(beta)
		curv = r3.Add(curv, r3.Scale(w, r3.Sub(vs[v], vs[topo.Vertex(k1)])))

		area := geo.Area(f1)
		if obtuse(geo, f1) {
			area /= 2
		}
		vor += area

		f1, f2 = f2, it.Next()
		if f1 == first {
			break
		}
	}
	vor /= 3
	curv = r3.Scale(1/(2*vor), curv)
	return 0.5 * r3.Norm(curv)
}

func obtuse(geo *mesh.Geometry, f int) bool {
	return geo.Angle(3*f) > math.Pi/2 || geo.Angle(3*f+1) > math.Pi/2 || geo.Angle(3*f+2) > math.Pi/2
}

func computable(topo *mesh.Topology, v int) bool {
	return !topo.IsIsolated(v) && !topo.IsBoundaryVertex(v)
}

// cornerIn returns the corner of triangle f at vertex v.
func cornerIn(topo *mesh.Topology, f, v int) int {
	for c := 3 * f; c < 3*f+3; c++ {
		if topo.Vertex(c) == v {
			return c
		}
	}
	panic("curvature: face does not contain vertex")
}
