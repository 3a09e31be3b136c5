package kernel

import (
	"fmt"

	"github.com/chazu/geoproc/pkg/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is the flat exchange form of a triangle mesh.
// Vertices has 3 floats per vertex (x,y,z), normals has 3 floats per
// vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which output node this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// TriangleMesh converts the exchange mesh into a processing mesh. Normals
// are dropped; the processing mesh derives its own.
func (m *Mesh) TriangleMesh() (*mesh.TriangleMesh, error) {
	if len(m.Vertices)%3 != 0 {
		return nil, fmt.Errorf("kernel: %d vertex floats is not a multiple of 3", len(m.Vertices))
	}
	coords := make([]float64, len(m.Vertices))
	for i, f := range m.Vertices {
		coords[i] = float64(f)
	}
	indices := make([]int, len(m.Indices))
	for i, v := range m.Indices {
		indices[i] = int(v)
	}
	tm, err := mesh.FromArrays(coords, indices)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	return tm, nil
}

// FromTriangleMesh flattens a processing mesh, with area-weighted vertex
// normals.
func FromTriangleMesh(tm *mesh.TriangleMesh, name string) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, 0, 3*tm.NumVertices()),
		Normals:  make([]float32, 0, 3*tm.NumVertices()),
		Indices:  make([]uint32, len(tm.Triangles())),
		Name:     name,
	}
	for _, p := range tm.Vertices() {
		out.Vertices = appendVec(out.Vertices, p)
	}
	for _, n := range tm.VertexNormals() {
		out.Normals = appendVec(out.Normals, n)
	}
	for i, v := range tm.Triangles() {
		out.Indices[i] = uint32(v)
	}
	return out
}

func appendVec(dst []float32, v r3.Vec) []float32 {
	return append(dst, float32(v.X), float32(v.Y), float32(v.Z))
}
