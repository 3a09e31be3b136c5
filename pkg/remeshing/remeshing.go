// Package remeshing resamples a disk-like mesh on a regular grid laid over
// its harmonic parametrisation.
//
// Grid point idx of an N×M grid sits at ((idx/M+1)/(N+1), (idx%M+1)/(M+1))
// in the unit square. Each point is located in the parametrised
// triangulation and mapped back to 3D with barycentric weights; the new
// connectivity is the regular grid triangulation of mesh.GridTriangles.
package remeshing

import (
	"errors"
	"fmt"
	"log"

	"github.com/chazu/geoproc/pkg/mesh"
	"github.com/chazu/geoproc/pkg/parallel"
	"github.com/chazu/geoproc/pkg/parametrisation"
	"github.com/chazu/geoproc/pkg/smoothing"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrCircleUnsupported is returned when remeshing over a circular
	// parametrisation, whose grid corners fall outside the domain.
	ErrCircleUnsupported = errors.New("remeshing: not implemented for shape circle")
	// ErrInvalidGrid is returned for grids smaller than 2×2.
	ErrInvalidGrid = errors.New("remeshing: grid must be at least 2×2")
	// ErrUVCount is returned when the parametrisation does not cover every
	// vertex.
	ErrUVCount = errors.New("remeshing: one texture coordinate per vertex required")
)

// LocationError reports a grid point that could not be placed in the
// parametrised mesh.
type LocationError struct {
	Index  int
	Point  r2.Vec
	Reason string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("remeshing: cannot locate grid point %d at (%g, %g): %s", e.Index, e.Point.X, e.Point.Y, e.Reason)
}

// Options configures remeshing.
type Options struct {
	// Threads splits the grid points across goroutines. Each goroutine
	// scans for its first point and walks from there. Values below 2 run
	// a single walk over the whole grid.
	Threads int
	// Parametrisation configures the harmonic map used by HarmonicMaps.
	Parametrisation parametrisation.Options
}

// Sample is a grid point expressed in a triangle of the source mesh.
type Sample struct {
	Triangle int        `json:"triangle"`
	Weights  [3]float64 `json:"weights"`
}

// GridPoint returns the parametric position of grid point idx.
func GridPoint(idx, n, m int) r2.Vec {
	return r2.Vec{
		X: float64(idx/m+1) / float64(n+1),
		Y: float64(idx%m+1) / float64(m+1),
	}
}

// HarmonicMaps parametrises src with a harmonic map onto shape and
// resamples it on an n×m grid.
func HarmonicMaps(src *mesh.TriangleMesh, n, m int, w smoothing.Weight, shape parametrisation.Shape, opts Options) (*mesh.TriangleMesh, error) {
	if shape == parametrisation.Circle {
		log.Printf("remeshing: harmonic maps: not implemented for shape %v", shape)
		return nil, ErrCircleUnsupported
	}
	uvs, err := parametrisation.HarmonicMaps(src, w, shape, opts.Parametrisation)
	if err != nil {
		return nil, err
	}
	return FromUVs(src, n, m, uvs, opts)
}

// FromUVs resamples src on an n×m grid over the given parametrisation. It
// fails without producing a mesh if any grid point cannot be located.
func FromUVs(src *mesh.TriangleMesh, n, m int, uvs []r2.Vec, opts Options) (*mesh.TriangleMesh, error) {
	samples, err := Locate(src, n, m, uvs, opts.Threads)
	if err != nil {
		return nil, err
	}
	vs := make([]r3.Vec, len(samples))
	for i, s := range samples {
		tri := src.Triangle(s.Triangle)
		for k, v := range tri {
			vs[i] = r3.Add(vs[i], r3.Scale(s.Weights[k], src.Vertex(v)))
		}
	}
	out := mesh.New()
	if err := out.SetVertices(vs); err != nil {
		return nil, err
	}
	if err := out.SetTriangles(mesh.GridTriangles(n, m)); err != nil {
		return nil, err
	}
	return out, nil
}

// Locate finds, for every point of an n×m grid, the triangle of src that
// contains it in parameter space and its barycentric weights there.
func Locate(src *mesh.TriangleMesh, n, m int, uvs []r2.Vec, threads int) ([]Sample, error) {
	if n < 2 || m < 2 {
		return nil, fmt.Errorf("%w: got %d×%d", ErrInvalidGrid, n, m)
	}
	if len(uvs) != src.NumVertices() {
		return nil, fmt.Errorf("%w: %d for %d vertices", ErrUVCount, len(uvs), src.NumVertices())
	}
	loc := newLocator(src, uvs)
	samples := make([]Sample, n*m)

	var err error
	if threads < 2 {
		err = loc.locateRange(samples, n, m, 0, len(samples))
	} else {
		err = parallel.For(len(samples), threads, func(start, end int) error {
			return loc.locateRange(samples, n, m, start, end)
		})
	}
	if err != nil {
		log.Printf("%v", err)
		return nil, err
	}
	return samples, nil
}

// locateRange fills samples[start:end]. The first point is found by a
// linear scan and every later one by walking from its predecessor.
func (l *locator) locateRange(samples []Sample, n, m, start, end int) error {
	prev := GridPoint(start, n, m)
	t := l.scan(prev)
	if t < 0 {
		return &LocationError{Index: start, Point: prev, Reason: "no triangle contains the point"}
	}
	samples[start] = Sample{Triangle: t, Weights: l.barycentric(t, prev)}
	for idx := start + 1; idx < end; idx++ {
		next := GridPoint(idx, n, m)
		nt, reason := l.walk(t, prev, next)
		if nt < 0 {
			return &LocationError{Index: idx, Point: next, Reason: reason}
		}
		samples[idx] = Sample{Triangle: nt, Weights: l.barycentric(nt, next)}
		t, prev = nt, next
	}
	return nil
}
