package mesh

import "gonum.org/v1/gonum/spatial/r3"

// GridTriangles returns the triangulation of an n×m vertex grid whose vertex
// (i, j) has index i*m+j. Each cell is split along the diagonal from (i, j)
// to (i+1, j+1), and the triangles are counterclockwise when i runs along x
// and j along y.
func GridTriangles(n, m int) []int {
	if n < 2 || m < 2 {
		return nil
	}
	tris := make([]int, 0, 6*(n-1)*(m-1))
	for i := 0; i < n-1; i++ {
		for j := 0; j < m-1; j++ {
			tris = append(tris,
				i*m+j, (i+1)*m+j, (i+1)*m+j+1,
				i*m+j, (i+1)*m+j+1, i*m+j+1,
			)
		}
	}
	return tris
}

// NewGrid returns a flat n×m vertex grid over the unit square in the z=0
// plane: vertex (i, j) sits at (i/(n-1), j/(m-1), 0).
func NewGrid(n, m int) *TriangleMesh {
	vs := make([]r3.Vec, 0, n*m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			vs = append(vs, r3.Vec{X: frac(i, n), Y: frac(j, m)})
		}
	}
	g := New()
	// Indices are in range by construction.
	_ = g.SetVertices(vs)
	_ = g.SetTriangles(GridTriangles(n, m))
	return g
}

func frac(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}
