package smoothing

import (
	"math"

	"github.com/chazu/geoproc/pkg/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// RingWeights computes the normalized 1-ring weights of a vertex. It keeps
// its iterators and output slices between calls, so one value serves a
// whole pass; it is not safe for concurrent use.
type RingWeights struct {
	topo   *mesh.Topology
	weight Weight
	vv     *mesh.VertexVertexIter
	vf     *mesh.VertexFaceIter

	neighbours []int
	weights    []float64
}

// NewRingWeights returns a weight calculator over topo.
func NewRingWeights(topo *mesh.Topology, w Weight) *RingWeights {
	return &RingWeights{
		topo:   topo,
		weight: w,
		vv:     mesh.NewVertexVertexIter(topo),
		vf:     mesh.NewVertexFaceIter(topo),
	}
}

// Compute returns the neighbours of v and their weights, which sum to one.
// Cotangent angles are measured on ps. Isolated vertices have no
// neighbours. The returned slices are reused by the next call.
func (r *RingWeights) Compute(v int, ps []r3.Vec) (neighbours []int, weights []float64) {
	r.neighbours = r.neighbours[:0]
	r.weights = r.weights[:0]
	if r.topo.IsIsolated(v) {
		return nil, nil
	}
	if r.weight == Cotangent && r.cotangent(v, ps) {
		return r.neighbours, r.weights
	}
	r.uniform(v)
	return r.neighbours, r.weights
}

func (r *RingWeights) uniform(v int) {
	r.neighbours = r.neighbours[:0]
	r.weights = r.weights[:0]
	first := r.vv.Init(v)
	for n := first; ; {
		r.neighbours = append(r.neighbours, n)
		if n = r.vv.Next(); n == first {
			break
		}
	}
	w := 1 / float64(len(r.neighbours))
	for range r.neighbours {
		r.weights = append(r.weights, w)
	}
}

// cotangent accumulates, for every incident face (v, j, k), cot of the
// angle at j onto k and cot of the angle at k onto j. Interior edges thus
// get cot α + cot β; boundary edges get their single cotangent. It reports
// false when the weights cannot be normalized.
func (r *RingWeights) cotangent(v int, ps []r3.Vec) bool {
	first := r.vf.Init(v)
	for f := first; ; {
		c := cornerAt(r.topo, f, v)
		j := r.topo.Vertex(mesh.Next(c))
		k := r.topo.Vertex(mesh.Prev(c))
		r.add(k, mesh.Cot(mesh.Angle(ps[j], ps[k], ps[v])))
		r.add(j, mesh.Cot(mesh.Angle(ps[k], ps[v], ps[j])))
		if f = r.vf.Next(); f == first {
			break
		}
	}

	var sum float64
	for _, w := range r.weights {
		sum += w
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) || math.Abs(sum) < 1e-12 {
		return false
	}
	for i := range r.weights {
		r.weights[i] /= sum
	}
	return true
}

func (r *RingWeights) add(n int, w float64) {
	for i, m := range r.neighbours {
		if m == n {
			r.weights[i] += w
			return
		}
	}
	r.neighbours = append(r.neighbours, n)
	r.weights = append(r.weights, w)
}

// Laplacian returns L(v) = Σ w_vj (p_j − p_v) measured on ps.
func (r *RingWeights) Laplacian(v int, ps []r3.Vec) r3.Vec {
	ns, ws := r.Compute(v, ps)
	var l r3.Vec
	for i, n := range ns {
		l = r3.Add(l, r3.Scale(ws[i], r3.Sub(ps[n], ps[v])))
	}
	return l
}

func cornerAt(topo *mesh.Topology, f, v int) int {
	for c := 3 * f; c < 3*f+3; c++ {
		if topo.Vertex(c) == v {
			return c
		}
	}
	panic("smoothing: face does not contain vertex")
}
