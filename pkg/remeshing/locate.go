package remeshing

import (
	"math"

	"github.com/chazu/geoproc/pkg/mesh"
	"gonum.org/v1/gonum/spatial/r2"
)

// collinearEps is the orientation magnitude below which three points are
// taken to be collinear by the segment test.
const collinearEps = 1e-20

// orientation returns twice the signed area of (p, q, r): positive when
// counterclockwise.
func orientation(p, q, r r2.Vec) float64 {
	return (p.X-r.X)*(q.Y-r.Y) - (p.Y-r.Y)*(q.X-r.X)
}

type side int

const (
	collinear side = iota
	left
	right
)

func segmentSide(p, q, r r2.Vec) side {
	v := (q.X-p.X)*(r.Y-p.Y) - (q.Y-p.Y)*(r.X-p.X)
	switch {
	case math.Abs(v) <= collinearEps:
		return collinear
	case v < 0:
		return right
	default:
		return left
	}
}

// onSegment reports whether k lies in the bounding box of segment i–j.
func onSegment(i, j, k r2.Vec) bool {
	return math.Min(i.X, j.X) <= k.X && k.X <= math.Max(i.X, j.X) &&
		math.Min(i.Y, j.Y) <= k.Y && k.Y <= math.Max(i.Y, j.Y)
}

// segmentsIntersect reports whether segments p–q and r–s share a point.
func segmentsIntersect(p, q, r, s r2.Vec) bool {
	pqr, pqs := segmentSide(p, q, r), segmentSide(p, q, s)
	rsp, rsq := segmentSide(r, s, p), segmentSide(r, s, q)
	if pqr != pqs && rsp != rsq {
		return true
	}
	return pqr == collinear && onSegment(p, q, r) ||
		pqs == collinear && onSegment(p, q, s) ||
		rsp == collinear && onSegment(r, s, p) ||
		rsq == collinear && onSegment(r, s, q)
}

// locator finds the triangle of a parametrised mesh containing a point.
// It only reads shared data, so one locator may serve many goroutines.
type locator struct {
	tris     []int
	uvs      []r2.Vec
	edges    []mesh.Edge
	topo     *mesh.Topology
	maxSteps int
}

func newLocator(m *mesh.TriangleMesh, uvs []r2.Vec) *locator {
	topo := m.Topology()
	return &locator{
		tris:     m.Triangles(),
		uvs:      uvs,
		edges:    topo.Edges(),
		topo:     topo,
		maxSteps: 3*m.NumTriangles() + 3,
	}
}

func (l *locator) corners(t int) (a, b, c r2.Vec) {
	return l.uvs[l.tris[3*t]], l.uvs[l.tris[3*t+1]], l.uvs[l.tris[3*t+2]]
}

// inside tests p against the three edges of t, accepting either winding.
// Points on an edge are inside.
func (l *locator) inside(t int, p r2.Vec) bool {
	a, b, c := l.corners(t)
	o0 := orientation(a, b, p)
	o1 := orientation(b, c, p)
	o2 := orientation(c, a, p)
	if orientation(a, b, c) >= 0 {
		return o0 >= 0 && o1 >= 0 && o2 >= 0
	}
	return o0 <= 0 && o1 <= 0 && o2 <= 0
}

// outside reports whether p lies strictly beyond the edge of t opposite
// corner slot k.
func (l *locator) outside(t, k int, p r2.Vec) bool {
	u := l.uvs[l.tris[3*t+(k+1)%3]]
	v := l.uvs[l.tris[3*t+(k+2)%3]]
	o := orientation(u, v, p)
	if a, b, c := l.corners(t); orientation(a, b, c) >= 0 {
		return o < 0
	}
	return o > 0
}

// scan tests every triangle in order and returns the first containing p,
// or -1.
func (l *locator) scan(p r2.Vec) int {
	for t := 0; t < len(l.tris)/3; t++ {
		if l.inside(t, p) {
			return t
		}
	}
	return -1
}

// walk steps from triangle t, which contains prev, towards the triangle
// containing next. Each step leaves the current triangle through an edge
// that next lies beyond, preferring the edge crossed by prev–next, and
// never goes back through the edge it came in by. It returns -1 and a
// reason when the walk cannot continue.
func (l *locator) walk(t int, prev, next r2.Vec) (int, string) {
	prevEdge := -1
	for range l.maxSteps {
		if l.inside(t, next) {
			return t, ""
		}
		tedges := l.topo.TriangleEdges(t)
		chosen, fallback := -1, -1
		for k, e := range tedges {
			if e == prevEdge || !l.outside(t, k, next) {
				continue
			}
			edge := l.edges[e]
			if segmentsIntersect(prev, next, l.uvs[edge.V0], l.uvs[edge.V1]) {
				chosen = e
				break
			}
			if fallback < 0 {
				fallback = e
			}
		}
		if chosen < 0 {
			chosen = fallback
		}
		if chosen < 0 {
			return -1, "no edge of the current triangle leads towards the point"
		}
		nt := l.edges[chosen].Other(t)
		if nt < 0 {
			return -1, "walk left the parametrised domain through a boundary edge"
		}
		t, prevEdge = nt, chosen
	}
	return -1, "walk did not terminate"
}

// barycentric returns the weights of p relative to the corners of t, as
// the areas of the opposite sub-triangles over the area of t.
func (l *locator) barycentric(t int, p r2.Vec) [3]float64 {
	a, b, c := l.corners(t)
	total := math.Abs(orientation(a, b, c))
	if total == 0 {
		return [3]float64{1, 0, 0}
	}
	return [3]float64{
		math.Abs(orientation(p, b, c)) / total,
		math.Abs(orientation(a, p, c)) / total,
		math.Abs(orientation(a, b, p)) / total,
	}
}
