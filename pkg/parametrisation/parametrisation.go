// Package parametrisation flattens a disk-like mesh onto the unit square
// with harmonic maps.
package parametrisation

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/chazu/geoproc/pkg/linalg"
	"github.com/chazu/geoproc/pkg/mesh"
	"github.com/chazu/geoproc/pkg/smoothing"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrNoBoundary is returned for closed meshes.
	ErrNoBoundary = errors.New("parametrisation: mesh has no boundary")
	// ErrTooManyBoundaries is returned for meshes with more than one
	// boundary loop.
	ErrTooManyBoundaries = errors.New("parametrisation: mesh has more than one boundary")
	// ErrUnknownShape is returned for shapes other than Circle and Square.
	ErrUnknownShape = errors.New("parametrisation: unknown boundary shape")
)

// Shape is the curve the boundary loop is pinned to.
type Shape int

const (
	Circle Shape = iota // unit circle centred at the origin
	Square              // square of side 2 centred at the origin
)

func (s Shape) String() string {
	switch s {
	case Circle:
		return "circle"
	case Square:
		return "square"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape converts a shape name to a Shape.
func ParseShape(s string) (Shape, error) {
	switch s {
	case "circle":
		return Circle, nil
	case "square":
		return Square, nil
	}
	return 0, fmt.Errorf("%w: %q, expected circle or square", ErrUnknownShape, s)
}

// Options configures HarmonicMaps.
type Options struct {
	Solver linalg.SolveOptions
}

// BoundaryPositions places the vertices of a loop on s, counterclockwise,
// in [-1, 1]².
//
// On the circle they are spaced evenly by angle starting at angle 0. On
// the square the loop is split over the sides x = 1, y = 1, x = −1 and
// y = −1 in that order, starting at (1, −1); every side gets len/4 vertices
// and the first len%4 sides one more.
func BoundaryPositions(loop []int, s Shape) ([]r2.Vec, error) {
	n := len(loop)
	out := make([]r2.Vec, n)
	switch s {
	case Circle:
		inc := 2 * math.Pi / float64(n)
		for i := range out {
			a := float64(i) * inc
			out[i] = r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
		}
	case Square:
		k := 0
		for side := 0; side < 4; side++ {
			count := n / 4
			if side < n%4 {
				count++
			}
			for i := 0; i < count; i++ {
				d := float64(i) * (2 / float64(count))
				switch side {
				case 0:
					out[k] = r2.Vec{X: 1, Y: -1 + d}
				case 1:
					out[k] = r2.Vec{X: 1 - d, Y: 1}
				case 2:
					out[k] = r2.Vec{X: -1, Y: 1 - d}
				case 3:
					out[k] = r2.Vec{X: -1 + d, Y: -1}
				}
				k++
			}
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownShape, s)
	}
	return out, nil
}

// HarmonicMaps computes texture coordinates in [0, 1]² for a mesh with
// exactly one boundary loop. The loop is pinned to s and every interior
// vertex is the weighted average of its neighbours. Isolated vertices map
// to (0, 0).
func HarmonicMaps(m *mesh.TriangleMesh, w smoothing.Weight, s Shape, opts Options) ([]r2.Vec, error) {
	bounds, err := m.Boundaries()
	if err != nil {
		return nil, fmt.Errorf("parametrisation: %w", err)
	}
	switch bounds.Len() {
	case 0:
		log.Printf("parametrisation: harmonic maps: no boundaries in input mesh")
		return nil, ErrNoBoundary
	case 1:
	default:
		log.Printf("parametrisation: harmonic maps: %d boundaries in input mesh, need exactly one", bounds.Len())
		return nil, fmt.Errorf("%w: %d loops", ErrTooManyBoundaries, bounds.Len())
	}

	loop := bounds.Loops[0]
	pinned, err := BoundaryPositions(loop, s)
	if err != nil {
		return nil, err
	}

	topo := m.Topology()
	uvs := make([]r2.Vec, m.NumVertices())
	constant := make([]bool, m.NumVertices())
	for v := range uvs {
		if topo.IsIsolated(v) {
			uvs[v] = r2.Vec{X: -1, Y: -1}
			constant[v] = true
		}
	}
	for i, v := range loop {
		uvs[v] = pinned[i]
		constant[v] = true
	}

	sys := smoothing.NewSystem(topo, m.Vertices(), w, constant)
	if len(sys.Variables) > 0 {
		fixed := [][]float64{make([]float64, len(sys.Constants)), make([]float64, len(sys.Constants))}
		for k, v := range sys.Constants {
			fixed[0][k], fixed[1][k] = uvs[v].X, uvs[v].Y
		}
		xs, err := sys.Solve(fixed, opts.Solver)
		if err != nil {
			return nil, fmt.Errorf("parametrisation: harmonic maps: %w", err)
		}
		for i, v := range sys.Variables {
			uvs[v] = r2.Vec{X: xs[0][i], Y: xs[1][i]}
		}
	}

	for v, p := range uvs {
		uvs[v] = r2.Vec{X: 0.5*p.X + 0.5, Y: 0.5*p.Y + 0.5}
	}
	return uvs, nil
}
