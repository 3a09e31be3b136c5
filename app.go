package main

import (
	"log"
	"math"

	"github.com/chazu/geoproc/pkg/config"
	"github.com/chazu/geoproc/pkg/curvature"
	"github.com/chazu/geoproc/pkg/engine"
	"github.com/chazu/geoproc/pkg/kernel"
	"github.com/chazu/geoproc/pkg/kernel/sdfx"
	"github.com/chazu/geoproc/pkg/mesh"
	"github.com/chazu/geoproc/pkg/pipeline"
)

// colorPalette is a default palette used to assign distinct colors to outputs.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates scripts end to end: source to graph to processed meshes.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable form of one output.
type MeshData struct {
	Vertices []float32             `json:"vertices"`
	Normals  []float32             `json:"normals"`
	Indices  []uint32              `json:"indices"`
	Name     string                `json:"name"`
	Color    string                `json:"color"`
	Scalars  map[string]ScalarData `json:"scalars,omitempty"`
	UVs      []float32             `json:"uvs,omitempty"`
	Loops    [][]int               `json:"loops,omitempty"`
	Stats    *mesh.Stats           `json:"stats,omitempty"`
	Ring     *pipeline.Ring        `json:"ring,omitempty"`
}

// ScalarData is a per-vertex scalar field. Vertices where the value is not
// computable are null, as are Min and Max when no vertex is computable.
type ScalarData struct {
	Values []*float64 `json:"values"`
	Min    *float64   `json:"min"`
	Max    *float64   `json:"max"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine carrying defaults and the sdfx
// kernel.
func NewApp(defaults config.Defaults) *App {
	return &App{
		engine: engine.NewEngine(defaults),
		kernel: sdfx.New(),
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a processing graph.
	res, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    w.Line,
			Col:     w.Col,
			Message: w.Message,
		})
	}

	// Step 2: Convert eval errors to the output format.
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Run the graph.
	outputs, err := pipeline.Run(res.Graph, a.kernel)
	if err != nil {
		log.Printf("Pipeline error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "processing failed: " + err.Error(),
		})
		return result
	}

	// Step 4: Convert the results to MeshData.
	for i, r := range outputs {
		result.Meshes = append(result.Meshes, toMeshData(r, colorPalette[i%len(colorPalette)]))
	}

	return result
}

func toMeshData(r *pipeline.Result, color string) MeshData {
	km := kernel.FromTriangleMesh(r.Mesh, r.Name)
	md := MeshData{
		Vertices: km.Vertices,
		Normals:  km.Normals,
		Indices:  km.Indices,
		Name:     km.Name,
		Color:    color,
		Loops:    r.Loops,
		Stats:    r.Stats,
		Ring:     r.Ring,
	}
	if len(r.Scalars) > 0 {
		md.Scalars = make(map[string]ScalarData, len(r.Scalars))
		for name, s := range r.Scalars {
			md.Scalars[name] = toScalarData(s)
		}
	}
	if r.UVs != nil {
		md.UVs = make([]float32, 0, 2*len(r.UVs))
		for _, uv := range r.UVs {
			md.UVs = append(md.UVs, float32(uv.X), float32(uv.Y))
		}
	}
	return md
}

func toScalarData(s curvature.Result) ScalarData {
	sd := ScalarData{
		Values: make([]*float64, len(s.Values)),
		Min:    finite(s.Min),
		Max:    finite(s.Max),
	}
	for i, v := range s.Values {
		sd.Values[i] = finite(v)
	}
	return sd
}

// finite returns a pointer to x, or nil when x is NaN or infinite.
func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}
