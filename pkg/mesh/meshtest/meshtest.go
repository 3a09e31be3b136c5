// Package meshtest provides small reference meshes for tests.
package meshtest

import (
	"math"

	"github.com/chazu/geoproc/pkg/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// mustMesh builds a mesh from literal data and panics on malformed input.
func mustMesh(vs []r3.Vec, tris []int) *mesh.TriangleMesh {
	m := mesh.New()
	if err := m.SetVertices(vs); err != nil {
		panic(err)
	}
	if err := m.SetTriangles(tris); err != nil {
		panic(err)
	}
	return m
}

// Cube returns the unit cube [0,1]³ as 8 vertices and 12 outward-facing
// triangles.
func Cube() *mesh.TriangleMesh {
	vs := []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	tris := []int{
		0, 2, 1, 0, 3, 2, // z = 0
		4, 5, 6, 4, 6, 7, // z = 1
		0, 1, 5, 0, 5, 4, // y = 0
		3, 7, 6, 3, 6, 2, // y = 1
		0, 4, 7, 0, 7, 3, // x = 0
		1, 2, 6, 1, 6, 5, // x = 1
	}
	return mustMesh(vs, tris)
}

// Tetrahedron returns the corner tetrahedron spanned by the unit axes.
func Tetrahedron() *mesh.TriangleMesh {
	vs := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	tris := []int{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3}
	return mustMesh(vs, tris)
}

// Icosahedron returns a regular icosahedron inscribed in the unit sphere.
func Icosahedron() *mesh.TriangleMesh {
	t := (1 + math.Sqrt(5)) / 2
	raw := []r3.Vec{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	vs := make([]r3.Vec, len(raw))
	for i, p := range raw {
		vs[i] = r3.Unit(p)
	}
	tris := []int{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}
	return mustMesh(vs, tris)
}

// Fan returns a vertex 0 at the origin surrounded by k rim vertices on the
// unit circle, joined by the first `faces` triangles (0, i, i+1) of the full
// disk. With faces == k the centre is interior; with fewer it lies on the
// boundary.
func Fan(k, faces int) *mesh.TriangleMesh {
	vs := []r3.Vec{{}}
	for i := 0; i < k; i++ {
		a := 2 * math.Pi * float64(i) / float64(k)
		vs = append(vs, r3.Vec{X: math.Cos(a), Y: math.Sin(a)})
	}
	var tris []int
	for i := 0; i < faces; i++ {
		tris = append(tris, 0, 1+i, 1+(i+1)%k)
	}
	return mustMesh(vs, tris)
}
