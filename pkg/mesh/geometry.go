package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry caches per-triangle areas and the interior angle at every corner.
type Geometry struct {
	areas  []float64
	angles []float64
}

func computeGeometry(vs []r3.Vec, tris []int) *Geometry {
	g := &Geometry{
		areas:  make([]float64, len(tris)/3),
		angles: make([]float64, len(tris)),
	}
	for t := range g.areas {
		a, b, c := vs[tris[3*t]], vs[tris[3*t+1]], vs[tris[3*t+2]]
		g.areas[t] = TriangleArea(a, b, c)
		g.angles[3*t] = Angle(a, b, c)
		g.angles[3*t+1] = Angle(b, c, a)
		g.angles[3*t+2] = Angle(c, a, b)
	}
	return g
}

// Area returns the area of triangle t.
func (g *Geometry) Area(t int) float64 { return g.areas[t] }

// Areas returns all triangle areas indexed by triangle.
func (g *Geometry) Areas() []float64 { return g.areas }

// Angle returns the interior angle at corner c.
func (g *Geometry) Angle(c int) float64 { return g.angles[c] }

// TotalArea returns the sum of all triangle areas.
func (g *Geometry) TotalArea() float64 {
	var s float64
	for _, a := range g.areas {
		s += a
	}
	return s
}

// TriangleArea returns half the magnitude of the cross product of two edges.
func TriangleArea(a, b, c r3.Vec) float64 {
	return r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) / 2
}

// Angle returns the angle at p between the directions towards q and r.
// Degenerate edges yield NaN.
func Angle(p, q, r r3.Vec) float64 {
	u := r3.Unit(r3.Sub(q, p))
	v := r3.Unit(r3.Sub(r, p))
	d := r3.Dot(u, v)
	// Rounding can push the dot product of unit vectors past ±1.
	d = math.Max(-1, math.Min(1, d))
	return math.Acos(d)
}

// Cot returns the cotangent of an angle.
func Cot(a float64) float64 {
	return math.Cos(a) / math.Sin(a)
}

// VertexNormals returns one unit normal per vertex, the area-weighted
// average of the incident triangle normals. Isolated vertices get a zero
// vector.
func (m *TriangleMesh) VertexNormals() []r3.Vec {
	ns := make([]r3.Vec, len(m.vertices))
	for t := 0; t < m.NumTriangles(); t++ {
		tri := m.Triangle(t)
		a, b, c := m.vertices[tri[0]], m.vertices[tri[1]], m.vertices[tri[2]]
		// Cross product length is twice the area.
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		for _, v := range tri {
			ns[v] = r3.Add(ns[v], n)
		}
	}
	for i, n := range ns {
		if l := r3.Norm(n); l > 0 {
			ns[i] = r3.Scale(1/l, n)
		}
	}
	return ns
}
