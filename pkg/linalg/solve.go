package linalg

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingular is returned when AᵗA is not positive definite.
	ErrSingular = errors.New("linalg: normal matrix is not positive definite")
	// ErrNotConverged is returned when conjugate gradient runs out of iterations.
	ErrNotConverged = errors.New("linalg: conjugate gradient did not converge")
	// ErrDimension is returned when a right-hand side does not match A.
	ErrDimension = errors.New("linalg: dimension mismatch")
)

// Method selects the normal-equation solver.
type Method int

const (
	Auto              Method = iota // Cholesky up to DenseLimit unknowns, CG above
	Cholesky                        // dense Cholesky factorization of AᵗA
	ConjugateGradient               // Jacobi-preconditioned CG on AᵗA, matrix free
)

func (m Method) String() string {
	switch m {
	case Auto:
		return "auto"
	case Cholesky:
		return "cholesky"
	case ConjugateGradient:
		return "cg"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod converts a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "auto":
		return Auto, nil
	case "cholesky":
		return Cholesky, nil
	case "cg", "conjugate-gradient":
		return ConjugateGradient, nil
	}
	return 0, fmt.Errorf("linalg: unknown solver %q, expected auto, cholesky or cg", s)
}

// Default solver settings.
const (
	DefaultDenseLimit = 1500
	DefaultTolerance  = 1e-10
)

// SolveOptions configures LeastSquares. The zero value selects Auto with the
// default limits.
type SolveOptions struct {
	Method        Method
	DenseLimit    int     // largest unknown count solved densely by Auto
	Tolerance     float64 // CG stop: ‖Aᵗb − AᵗA x‖ ≤ Tolerance·‖Aᵗb‖
	MaxIterations int     // CG iteration cap; 0 means 10·n + 100
}

func (o SolveOptions) withDefaults(n int) SolveOptions {
	if o.DenseLimit <= 0 {
		o.DenseLimit = DefaultDenseLimit
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 10*n + 100
	}
	if o.Method == Auto {
		if n <= o.DenseLimit {
			o.Method = Cholesky
		} else {
			o.Method = ConjugateGradient
		}
	}
	return o
}

// LeastSquares solves min ‖A·x − b‖ for every right-hand side b through
// the normal equations AᵗA·x = Aᵗb. The factorization is shared between
// right-hand sides.
func LeastSquares(a *CSR, rhs [][]float64, opts SolveOptions) ([][]float64, error) {
	rows, n := a.Dims()
	for i, b := range rhs {
		if len(b) != rows {
			return nil, fmt.Errorf("%w: right-hand side %d has %d entries, want %d", ErrDimension, i, len(b), rows)
		}
	}
	if n == 0 {
		out := make([][]float64, len(rhs))
		for i := range out {
			out[i] = []float64{}
		}
		return out, nil
	}

	opts = opts.withDefaults(n)
	atbs := make([][]float64, len(rhs))
	for i, b := range rhs {
		atbs[i] = make([]float64, n)
		a.MulTransVecTo(atbs[i], b)
	}

	switch opts.Method {
	case Cholesky:
		return solveCholesky(a, atbs)
	case ConjugateGradient:
		out := make([][]float64, len(atbs))
		for i, atb := range atbs {
			x, err := conjugateGradient(a, atb, opts.Tolerance, opts.MaxIterations)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	}
	return nil, fmt.Errorf("linalg: unsupported method %v", opts.Method)
}

func solveCholesky(a *CSR, atbs [][]float64) ([][]float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(NormalMatrix(a)); !ok {
		return nil, ErrSingular
	}
	out := make([][]float64, len(atbs))
	for i, atb := range atbs {
		var x mat.VecDense
		err := chol.SolveVecTo(&x, mat.NewVecDense(len(atb), atb))
		var cond mat.Condition
		if errors.As(err, &cond) {
			log.Printf("linalg: normal matrix is ill-conditioned (condition %g)", float64(cond))
		} else if err != nil {
			return nil, fmt.Errorf("linalg: cholesky solve: %w", err)
		}
		out[i] = slices.Clone(x.RawVector().Data)
	}
	return out, nil
}

// conjugateGradient solves AᵗA·x = atb without forming AᵗA, preconditioned
// with the inverse diagonal of AᵗA.
func conjugateGradient(a *CSR, atb []float64, tol float64, maxIter int) ([]float64, error) {
	rows, n := a.Dims()
	diag := columnNormsSquared(a)
	for _, d := range diag {
		if d == 0 {
			return nil, ErrSingular
		}
	}

	x := make([]float64, n)
	bnorm := floats.Norm(atb, 2)
	if bnorm == 0 {
		return x, nil
	}

	r := slices.Clone(atb)
	z := make([]float64, n)
	floats.DivTo(z, r, diag)
	p := slices.Clone(z)
	ap := make([]float64, n)
	tmp := make([]float64, rows)
	rz := floats.Dot(r, z)

	for range maxIter {
		a.MulVecTo(tmp, p)
		a.MulTransVecTo(ap, tmp)
		pap := floats.Dot(p, ap)
		if pap <= 0 || math.IsNaN(pap) {
			return nil, ErrSingular
		}
		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)
		if floats.Norm(r, 2) <= tol*bnorm {
			return x, nil
		}
		floats.DivTo(z, r, diag)
		rzNext := floats.Dot(r, z)
		beta := rzNext / rz
		rz = rzNext
		floats.Scale(beta, p)
		floats.Add(p, z)
	}
	return nil, fmt.Errorf("%w after %d iterations", ErrNotConverged, maxIter)
}
