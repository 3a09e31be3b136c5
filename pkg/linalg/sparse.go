// Package linalg holds the sparse matrix type and the least-squares solvers
// used by global smoothing and harmonic parametrisation.
package linalg

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Triplet is one (row, column, value) entry of a matrix under assembly.
type Triplet struct {
	Row, Col int
	Val      float64
}

// CSR is an immutable compressed sparse row matrix. It implements
// mat.Matrix so it can be handed to gonum routines that only read entries.
type CSR struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

var _ mat.Matrix = (*CSR)(nil)

// NewCSR assembles a rows×cols matrix from triplets. Duplicate entries are
// summed and explicit zeros are kept. It panics on out-of-range triplets.
func NewCSR(rows, cols int, ts []Triplet) *CSR {
	sorted := slices.Clone(ts)
	slices.SortFunc(sorted, func(a, b Triplet) int {
		if r := cmp.Compare(a.Row, b.Row); r != 0 {
			return r
		}
		return cmp.Compare(a.Col, b.Col)
	})

	a := &CSR{rows: rows, cols: cols, indptr: make([]int, rows+1)}
	for k, t := range sorted {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			panic(fmt.Sprintf("linalg: triplet (%d, %d) outside %d×%d matrix", t.Row, t.Col, rows, cols))
		}
		if k > 0 && sorted[k-1].Row == t.Row && sorted[k-1].Col == t.Col {
			a.data[len(a.data)-1] += t.Val
			continue
		}
		a.indices = append(a.indices, t.Col)
		a.data = append(a.data, t.Val)
		a.indptr[t.Row+1]++
	}
	for i := 0; i < rows; i++ {
		a.indptr[i+1] += a.indptr[i]
	}
	return a
}

// Dims returns the matrix dimensions.
func (a *CSR) Dims() (r, c int) { return a.rows, a.cols }

// At returns the entry at row i, column j.
func (a *CSR) At(i, j int) float64 {
	if i < 0 || i >= a.rows || j < 0 || j >= a.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	row := a.indices[a.indptr[i]:a.indptr[i+1]]
	if k, ok := slices.BinarySearch(row, j); ok {
		return a.data[a.indptr[i]+k]
	}
	return 0
}

// T returns the implicit transpose.
func (a *CSR) T() mat.Matrix { return mat.Transpose{Matrix: a} }

// NNZ returns the number of stored entries.
func (a *CSR) NNZ() int { return len(a.data) }

// RowDo calls fn for every stored entry of row i in column order.
func (a *CSR) RowDo(i int, fn func(j int, v float64)) {
	for k := a.indptr[i]; k < a.indptr[i+1]; k++ {
		fn(a.indices[k], a.data[k])
	}
}

// MulVecTo stores A·x in dst.
func (a *CSR) MulVecTo(dst, x []float64) {
	if len(x) != a.cols || len(dst) != a.rows {
		panic(mat.ErrShape)
	}
	for i := 0; i < a.rows; i++ {
		var s float64
		for k := a.indptr[i]; k < a.indptr[i+1]; k++ {
			s += a.data[k] * x[a.indices[k]]
		}
		dst[i] = s
	}
}

// MulTransVecTo stores Aᵗ·x in dst.
func (a *CSR) MulTransVecTo(dst, x []float64) {
	if len(x) != a.rows || len(dst) != a.cols {
		panic(mat.ErrShape)
	}
	clear(dst)
	for i := 0; i < a.rows; i++ {
		xi := x[i]
		for k := a.indptr[i]; k < a.indptr[i+1]; k++ {
			dst[a.indices[k]] += a.data[k] * xi
		}
	}
}

// NormalMatrix returns AᵗA as a dense symmetric matrix.
func NormalMatrix(a *CSR) *mat.SymDense {
	ata := mat.NewSymDense(a.cols, nil)
	for i := 0; i < a.rows; i++ {
		lo, hi := a.indptr[i], a.indptr[i+1]
		for p := lo; p < hi; p++ {
			j, vj := a.indices[p], a.data[p]
			for q := p; q < hi; q++ {
				k := a.indices[q]
				ata.SetSym(j, k, ata.At(j, k)+vj*a.data[q])
			}
		}
	}
	return ata
}

// columnNormsSquared returns the diagonal of AᵗA.
func columnNormsSquared(a *CSR) []float64 {
	d := make([]float64, a.cols)
	for k, j := range a.indices {
		d[j] += a.data[k] * a.data[k]
	}
	return d
}
