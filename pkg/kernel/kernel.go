// Package kernel defines the shape kernel that produces input meshes for
// processing. Implementations (sdfx) model solids and boolean operations
// behind this interface and turn them into indexed triangle meshes.
package kernel

import "errors"

// ErrEmpty is returned by ToMesh when a solid produces no triangles.
var ErrEmpty = errors.New("kernel: solid produced no triangles")

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the shape kernel interface.
type Kernel interface {
	// Primitives, centred at the origin.
	Sphere(radius float64) (Solid, error)
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh samples the solid on a grid with cells cells along its longest
	// side and returns a welded mesh.
	ToMesh(s Solid, cells int) (*Mesh, error)
}
