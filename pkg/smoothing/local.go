package smoothing

import (
	"github.com/chazu/geoproc/pkg/mesh"
	"github.com/chazu/geoproc/pkg/parallel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Local runs cfg.Iterations iterations of the configured operator and
// returns the smoothed positions. The mesh is left untouched.
func Local(m *mesh.TriangleMesh, cfg Config) ([]r3.Vec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	topo := m.Topology()
	cur := append([]r3.Vec(nil), m.Vertices()...)
	next := make([]r3.Vec, len(cur))

	steps := cfg.steps()
	var pass func(lambda float64, from, to []r3.Vec)
	if cfg.Threads < 2 {
		rw := NewRingWeights(topo, cfg.Weight)
		pass = func(lambda float64, from, to []r3.Vec) {
			applyRange(rw, lambda, from, to, 0, len(from))
		}
	} else {
		pass = func(lambda float64, from, to []r3.Vec) {
			parallel.Each(len(from), cfg.Threads, func(start, end int) {
				applyRange(NewRingWeights(topo, cfg.Weight), lambda, from, to, start, end)
			})
		}
	}

	for range cfg.Iterations {
		for _, lambda := range steps {
			pass(lambda, cur, next)
			cur, next = next, cur
		}
	}
	return cur, nil
}

// applyRange writes p + λL(p) for vertices [start, end) of from into to.
func applyRange(rw *RingWeights, lambda float64, from, to []r3.Vec, start, end int) {
	for v := start; v < end; v++ {
		to[v] = r3.Add(from[v], r3.Scale(lambda, rw.Laplacian(v, from)))
	}
}
