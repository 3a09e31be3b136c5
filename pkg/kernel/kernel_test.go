package kernel

import (
	"testing"

	"github.com/chazu/geoproc/pkg/mesh"
)

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	if !(&Mesh{}).IsEmpty() {
		t.Error("IsEmpty() = false for empty mesh, want true")
	}
	if (&Mesh{Vertices: []float32{1, 2, 3}}).IsEmpty() {
		t.Error("IsEmpty() = true for non-empty mesh, want false")
	}
}

func TestRoundTrip(t *testing.T) {
	grid := mesh.NewGrid(3, 4)
	flat := FromTriangleMesh(grid, "grid")

	if flat.Name != "grid" {
		t.Errorf("Name = %q, want %q", flat.Name, "grid")
	}
	if flat.VertexCount() != 12 || flat.TriangleCount() != 12 {
		t.Fatalf("got %d vertices, %d triangles; want 12, 12", flat.VertexCount(), flat.TriangleCount())
	}
	// A flat grid in z=0 with counterclockwise triangles faces +Z.
	for i := 0; i < flat.VertexCount(); i++ {
		if nz := flat.Normals[3*i+2]; nz < 0.999 {
			t.Errorf("normal %d z = %f, want 1", i, nz)
		}
	}

	back, err := flat.TriangleMesh()
	if err != nil {
		t.Fatalf("TriangleMesh() error = %v", err)
	}
	for i, v := range back.Triangles() {
		if v != grid.Triangles()[i] {
			t.Fatalf("index %d = %d, want %d", i, v, grid.Triangles()[i])
		}
	}
	for i, p := range back.Vertices() {
		q := grid.Vertex(i)
		if float32(p.X) != float32(q.X) || float32(p.Y) != float32(q.Y) {
			t.Errorf("vertex %d = %v, want %v", i, p, q)
		}
	}
}

func TestTriangleMeshRejectsBadIndices(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 5},
	}
	if _, err := m.TriangleMesh(); err == nil {
		t.Error("expected an error for an out-of-range index")
	}
	m = &Mesh{Vertices: []float32{0, 0}}
	if _, err := m.TriangleMesh(); err == nil {
		t.Error("expected an error for a partial vertex")
	}
}

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel proves the interface is satisfiable.
type stubKernel struct{}

func (k *stubKernel) Sphere(r float64) (Solid, error) {
	return &stubSolid{minBB: [3]float64{-r, -r, -r}, maxBB: [3]float64{r, r, r}}, nil
}

func (k *stubKernel) Box(x, y, z float64) (Solid, error) {
	return &stubSolid{maxBB: [3]float64{x, y, z}}, nil
}

func (k *stubKernel) Cylinder(height, radius float64) (Solid, error) {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}, nil
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(Solid, int) (*Mesh, error) {
	return nil, ErrEmpty
}

var _ Kernel = (*stubKernel)(nil)

func TestStubKernelSphere(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Sphere(2)
	if err != nil {
		t.Fatal(err)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{-2, -2, -2} || max != [3]float64{2, 2, 2} {
		t.Errorf("bounds = %v %v", min, max)
	}
}
