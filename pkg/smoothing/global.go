package smoothing

import (
	"fmt"
	"log"

	"github.com/chazu/geoproc/pkg/linalg"
	"github.com/chazu/geoproc/pkg/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// System is the sparse linear system −x_i + Σ_j w_ij x_j = 0 written for
// every variable vertex i. Unknowns are the variable vertices; terms on
// constant vertices are kept in a separate matrix and moved to the
// right-hand side when solving.
type System struct {
	// A has one row and one column per variable vertex.
	A *linalg.CSR
	// B has one row per variable vertex and one column per constant vertex.
	B *linalg.CSR
	// Variables lists the vertex of each unknown, Constants the vertex of
	// each column of B.
	Variables []int
	Constants []int
}

// NewSystem assembles the system over topo. Cotangent weights are measured
// on ps. constant has one flag per vertex.
func NewSystem(topo *mesh.Topology, ps []r3.Vec, w Weight, constant []bool) *System {
	s := &System{}
	// col maps a vertex to its unknown or to its column of B.
	col := make([]int, len(constant))
	for v, fixed := range constant {
		if fixed {
			col[v] = len(s.Constants)
			s.Constants = append(s.Constants, v)
		} else {
			col[v] = len(s.Variables)
			s.Variables = append(s.Variables, v)
		}
	}

	var at, bt []linalg.Triplet
	rw := NewRingWeights(topo, w)
	for row, v := range s.Variables {
		at = append(at, linalg.Triplet{Row: row, Col: row, Val: -1})
		ns, ws := rw.Compute(v, ps)
		for k, n := range ns {
			if ws[k] == 0 {
				continue
			}
			if constant[n] {
				bt = append(bt, linalg.Triplet{Row: row, Col: col[n], Val: ws[k]})
			} else {
				at = append(at, linalg.Triplet{Row: row, Col: col[n], Val: ws[k]})
			}
		}
	}
	s.A = linalg.NewCSR(len(s.Variables), len(s.Variables), at)
	s.B = linalg.NewCSR(len(s.Variables), len(s.Constants), bt)
	return s
}

// Solve returns the least-squares values of the unknowns for each set of
// constant values. fixed[d][k] is coordinate d of constant vertex
// Constants[k]; the result has the same layout over Variables.
func (s *System) Solve(fixed [][]float64, opts linalg.SolveOptions) ([][]float64, error) {
	rhs := make([][]float64, len(fixed))
	for d, values := range fixed {
		if len(values) != len(s.Constants) {
			return nil, fmt.Errorf("%w: %d constant values for %d constant vertices", linalg.ErrDimension, len(values), len(s.Constants))
		}
		b := make([]float64, len(s.Variables))
		s.B.MulVecTo(b, values)
		for i := range b {
			b[i] = -b[i]
		}
		rhs[d] = b
	}
	return linalg.LeastSquares(s.A, rhs, opts)
}

// GlobalOptions configures Global.
type GlobalOptions struct {
	// Constant flags the vertices that keep their position. Nil selects
	// the boundary vertices. Isolated vertices are always constant.
	Constant []bool
	Solver   linalg.SolveOptions
}

// Global solves for every variable vertex at once so that each satisfies
// p_i = Σ_j w_ij p_j, keeping the constant vertices in place. Only the
// Laplacian operator has a global form.
func Global(m *mesh.TriangleMesh, op Operator, w Weight, opts GlobalOptions) ([]r3.Vec, error) {
	if op != Laplacian {
		log.Printf("smoothing: global smoothing rejected operator %v", op)
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedOperator, op)
	}
	if w != Uniform && w != Cotangent {
		return nil, fmt.Errorf("%w: weight %v", ErrInvalidConfig, w)
	}
	topo := m.Topology()
	n := m.NumVertices()

	constant := make([]bool, n)
	if opts.Constant != nil {
		if len(opts.Constant) != n {
			return nil, fmt.Errorf("%w: %d constant flags for %d vertices", ErrInvalidConfig, len(opts.Constant), n)
		}
		copy(constant, opts.Constant)
	} else {
		for v := range constant {
			constant[v] = topo.IsBoundaryVertex(v)
		}
	}
	anchored := false
	for v := range constant {
		if topo.IsIsolated(v) {
			constant[v] = true
		} else if constant[v] {
			anchored = true
		}
	}
	if !anchored {
		log.Printf("smoothing: global smoothing needs at least one constant vertex")
		return nil, ErrNoConstantVertices
	}

	vs := m.Vertices()
	sys := NewSystem(topo, vs, w, constant)
	if len(sys.Variables) == 0 {
		return nil, ErrNoVariableVertices
	}
	xs, err := sys.Solve(splitAxes(vs, sys.Constants), opts.Solver)
	if err != nil {
		return nil, fmt.Errorf("smoothing: global: %w", err)
	}

	out := append([]r3.Vec(nil), vs...)
	for i, v := range sys.Variables {
		out[v] = r3.Vec{X: xs[0][i], Y: xs[1][i], Z: xs[2][i]}
	}
	return out, nil
}

// splitAxes returns the X, Y and Z coordinates of the listed vertices.
func splitAxes(vs []r3.Vec, idx []int) [][]float64 {
	out := [][]float64{make([]float64, len(idx)), make([]float64, len(idx)), make([]float64, len(idx))}
	for k, v := range idx {
		out[0][k], out[1][k], out[2][k] = vs[v].X, vs[v].Y, vs[v].Z
	}
	return out
}
