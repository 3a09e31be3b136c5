package graph

import (
	"github.com/chazu/geoproc/pkg/parametrisation"
	"github.com/chazu/geoproc/pkg/smoothing"
)

var (
	solidIn   = []ValueKind{ValueSolid}
	solidPair = []ValueKind{ValueSolid, ValueSolid}
	meshIn    = []ValueKind{ValueMesh}
)

// ---------------------------------------------------------------------------
// Sources
// ---------------------------------------------------------------------------

// SphereData is a sphere centred at the origin.
type SphereData struct {
	Radius float64 `json:"radius"`
}

func (SphereData) Op() string                          { return "sphere" }
func (SphereData) Signature() ([]ValueKind, ValueKind) { return nil, ValueSolid }

// BoxData is an axis-aligned box centred at the origin.
type BoxData struct {
	Size Vec3 `json:"size"`
}

func (BoxData) Op() string                          { return "box" }
func (BoxData) Signature() ([]ValueKind, ValueKind) { return nil, ValueSolid }

// CylinderData is a cylinder along Z centred at the origin.
type CylinderData struct {
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

func (CylinderData) Op() string                          { return "cylinder" }
func (CylinderData) Signature() ([]ValueKind, ValueKind) { return nil, ValueSolid }

// GridData is an N×M vertex grid over the unit square. A non-zero
// DomeHeight lifts the interior into a bump of that height.
type GridData struct {
	N          int     `json:"n"`
	M          int     `json:"m"`
	DomeHeight float64 `json:"dome_height,omitempty"`
}

func (GridData) Op() string                          { return "grid" }
func (GridData) Signature() ([]ValueKind, ValueKind) { return nil, ValueMesh }

// ---------------------------------------------------------------------------
// Solid operations
// ---------------------------------------------------------------------------

// BooleanOp selects a constructive solid operation.
type BooleanOp int

const (
	Union BooleanOp = iota
	Difference
	Intersection
)

func (o BooleanOp) String() string {
	switch o {
	case Union:
		return "union"
	case Difference:
		return "difference"
	case Intersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData combines its two solid inputs.
type BooleanData struct {
	Kind BooleanOp `json:"kind"`
}

func (d BooleanData) Op() string                        { return d.Kind.String() }
func (BooleanData) Signature() ([]ValueKind, ValueKind) { return solidPair, ValueSolid }

// TransformData moves its solid input. Rotation is applied first.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (d TransformData) Op() string {
	if d.Translation == nil && d.Rotation != nil {
		return "rotate"
	}
	return "translate"
}

func (TransformData) Signature() ([]ValueKind, ValueKind) { return solidIn, ValueSolid }

// ---------------------------------------------------------------------------
// Mesh operations
//
// A mesh input also accepts a solid, which is tessellated with the default
// resolution first.
// ---------------------------------------------------------------------------

// TessellateData meshes its input with an explicit resolution. Zero
// selects the default.
type TessellateData struct {
	Cells int `json:"cells"`
}

func (TessellateData) Op() string                          { return "tessellate" }
func (TessellateData) Signature() ([]ValueKind, ValueKind) { return solidIn, ValueMesh }

// ScaleToUnitData centres the mesh and scales it into the unit cube.
type ScaleToUnitData struct{}

func (ScaleToUnitData) Op() string                          { return "scale_to_unit" }
func (ScaleToUnitData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// CurvatureKind selects which curvature to compute.
type CurvatureKind int

const (
	CurvatureGauss CurvatureKind = iota
	CurvatureMean
)

func (k CurvatureKind) String() string {
	switch k {
	case CurvatureGauss:
		return "gauss"
	case CurvatureMean:
		return "mean"
	default:
		return "unknown"
	}
}

// CurvatureData attaches per-vertex curvature to its input mesh.
type CurvatureData struct {
	Kind CurvatureKind `json:"kind"`
}

func (CurvatureData) Op() string                          { return "curvature" }
func (CurvatureData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// LocalSmoothingData runs explicit smoothing iterations.
type LocalSmoothingData struct {
	Config smoothing.Config `json:"config"`
}

func (LocalSmoothingData) Op() string                          { return "local_smoothing" }
func (LocalSmoothingData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// GlobalSmoothingData solves for the smoothed interior in one linear
// system, keeping the boundary fixed.
type GlobalSmoothingData struct {
	Operator smoothing.Operator `json:"operator"`
	Weight   smoothing.Weight   `json:"weight"`
}

func (GlobalSmoothingData) Op() string                          { return "global_smoothing" }
func (GlobalSmoothingData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// BandFrequenciesData amplifies the bands between successive smoothing
// configurations by the matching gain.
type BandFrequenciesData struct {
	Configs []smoothing.Config `json:"configs"`
	Mus     []float64          `json:"mus"`
}

func (BandFrequenciesData) Op() string                          { return "band_frequencies" }
func (BandFrequenciesData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// HighFrequenciesData exaggerates what smoothing removes by Scale and
// attaches the magnitude of the removed detail.
type HighFrequenciesData struct {
	Config smoothing.Config `json:"config"`
	Scale  float64          `json:"scale"`
}

func (HighFrequenciesData) Op() string                          { return "high_frequencies" }
func (HighFrequenciesData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// HarmonicMapsData attaches texture coordinates from a harmonic map.
type HarmonicMapsData struct {
	Weight smoothing.Weight      `json:"weight"`
	Shape  parametrisation.Shape `json:"shape"`
}

func (HarmonicMapsData) Op() string                          { return "harmonic_maps" }
func (HarmonicMapsData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// RemeshingData resamples its input on an N×M grid over its harmonic map.
type RemeshingData struct {
	N      int                   `json:"n"`
	M      int                   `json:"m"`
	Weight smoothing.Weight      `json:"weight"`
	Shape  parametrisation.Shape `json:"shape"`
}

func (RemeshingData) Op() string                          { return "remeshing" }
func (RemeshingData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// BoundariesData attaches the boundary loops.
type BoundariesData struct{}

func (BoundariesData) Op() string                          { return "boundaries" }
func (BoundariesData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// InspectData attaches the mesh counts.
type InspectData struct{}

func (InspectData) Op() string                          { return "inspect" }
func (InspectData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// IterateData attaches the 1-ring of Vertex.
type IterateData struct {
	Vertex int `json:"vertex"`
}

func (IterateData) Op() string                          { return "iterate" }
func (IterateData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

// OutputData reports its input under the node name.
type OutputData struct{}

func (OutputData) Op() string                          { return "output" }
func (OutputData) Signature() ([]ValueKind, ValueKind) { return meshIn, ValueMesh }
