// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/geoproc/pkg/kernel"
	"github.com/chazu/geoproc/pkg/mesh"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultCells is the marching cubes resolution used when ToMesh is given
// a non-positive cell count.
const DefaultCells = 64

// weldFraction is the weld tolerance as a fraction of one cell.
const weldFraction = 1e-4

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Sphere creates a sphere centred at the origin.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return wrap(s), nil
}

// Box creates a box with the given side lengths, centred at the origin.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a cylinder along Z, centred at the origin.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return wrap(s), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
//
// Marching cubes emits every triangle with its own three corners. Corners
// closer than a small fraction of a cell are merged into one vertex, and
// triangles that collapse under the merge are dropped, so the result has
// shared vertices and a usable corner table.
func (k *SdfxKernel) ToMesh(s kernel.Solid, cells int) (*kernel.Mesh, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(sdf3, renderer)
	if len(triangles) == 0 {
		return nil, kernel.ErrEmpty
	}

	bb := sdf3.BoundingBox()
	size := bb.Size()
	step := math.Max(size.X, math.Max(size.Y, size.Z)) / float64(cells) * weldFraction

	w := newWelder(step)
	indices := make([]int, 0, 3*len(triangles))
	for _, tri := range triangles {
		var idx [3]int
		for j := 0; j < 3; j++ {
			v := tri[j]
			idx[j] = w.add(r3.Vec{X: v.X, Y: v.Y, Z: v.Z})
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[2] == idx[0] {
			continue
		}
		indices = append(indices, idx[0], idx[1], idx[2])
	}
	if len(indices) == 0 {
		return nil, kernel.ErrEmpty
	}

	tm := mesh.New()
	if err := tm.SetVertices(w.vertices); err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	if err := tm.SetTriangles(indices); err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	return kernel.FromTriangleMesh(tm, ""), nil
}

// welder merges points closer than step. Points are bucketed by their
// rounded coordinates and a lookup scans the 27 surrounding buckets, so two
// nearby points on either side of a bucket boundary still merge.
type welder struct {
	step     float64
	index    map[[3]int64][]int
	vertices []r3.Vec
}

func newWelder(step float64) *welder {
	if step <= 0 {
		step = 1e-9
	}
	return &welder{step: step, index: make(map[[3]int64][]int)}
}

func (w *welder) add(p r3.Vec) int {
	key := [3]int64{
		int64(math.Round(p.X / w.step)),
		int64(math.Round(p.Y / w.step)),
		int64(math.Round(p.Z / w.step)),
	}
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.index[[3]int64{key[0] + dx, key[1] + dy, key[2] + dz}] {
					if r3.Norm(r3.Sub(w.vertices[i], p)) <= w.step {
						return i
					}
				}
			}
		}
	}
	i := len(w.vertices)
	w.index[key] = append(w.index[key], i)
	w.vertices = append(w.vertices, p)
	return i
}
