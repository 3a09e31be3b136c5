package graph

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/geoproc/pkg/parametrisation"
	"github.com/chazu/geoproc/pkg/smoothing"
)

// chain builds source → ops... → output with one node per data value and
// returns the graph and the node ids in order.
func chain(source NodeData, ops ...NodeData) (*Graph, []NodeID) {
	g := New()
	ids := []NodeID{NewNodeID("0/" + source.Op())}
	g.AddNode(&Node{ID: ids[0], Kind: NodeSource, Data: source})
	for i, d := range ops {
		id := NewNodeID(string(rune('1'+i)) + "/" + d.Op())
		g.AddNode(&Node{ID: id, Kind: NodeOp, Inputs: []NodeID{ids[len(ids)-1]}, Data: d})
		ids = append(ids, id)
	}
	out := NewNodeID("output")
	g.AddNode(&Node{ID: out, Kind: NodeOutput, Name: "out", Inputs: []NodeID{ids[len(ids)-1]}, Data: OutputData{}})
	g.AddRoot(out)
	return g, append(ids, out)
}

// hasError returns true if errs contains at least one error-severity
// finding whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func logAll(t *testing.T, errs []ValidationError) {
	t.Helper()
	for _, e := range errs {
		t.Logf("  %s", e)
	}
}

func TestValidate_ValidPipeline(t *testing.T) {
	cfg := smoothing.Config{Operator: smoothing.Laplacian, Weight: smoothing.Cotangent, Lambda: 0.5, Iterations: 2}
	g, _ := chain(GridData{N: 6, M: 6, DomeHeight: 0.3},
		LocalSmoothingData{Config: cfg},
		CurvatureData{Kind: CurvatureMean},
		HarmonicMapsData{Weight: smoothing.Uniform, Shape: parametrisation.Square},
		RemeshingData{N: 8, M: 8, Shape: parametrisation.Square},
		InspectData{},
	)
	if errs := Validate(g); len(errs) != 0 {
		t.Error("unexpected findings")
		logAll(t, errs)
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	if errs := Validate(New()); len(errs) != 0 {
		t.Error("unexpected findings on empty graph")
		logAll(t, errs)
	}
}

func TestValidate_CycleDetection(t *testing.T) {
	g := New()
	a, b, c := NewNodeID("a"), NewNodeID("b"), NewNodeID("c")
	g.AddNode(&Node{ID: a, Kind: NodeOp, Inputs: []NodeID{c}, Data: InspectData{}})
	g.AddNode(&Node{ID: b, Kind: NodeOp, Inputs: []NodeID{a}, Data: InspectData{}})
	g.AddNode(&Node{ID: c, Kind: NodeOp, Inputs: []NodeID{b}, Data: InspectData{}})

	errs := Validate(g)
	if !hasError(errs, "cycle") {
		t.Error("expected cycle detection error, got none")
		logAll(t, errs)
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	g, ids := chain(SphereData{Radius: 1}, ScaleToUnitData{})
	g.Nodes[ids[1]].Inputs = []NodeID{NewNodeID("missing")}

	errs := Validate(g)
	if !hasError(errs, "does not exist") {
		t.Error("expected dangling reference error")
		logAll(t, errs)
	}
	// The sphere no longer feeds the output.
	if !hasWarning(errs, "orphan") {
		t.Error("expected orphan warning")
		logAll(t, errs)
	}
}

func TestValidate_RootMustBeOutput(t *testing.T) {
	g, ids := chain(SphereData{Radius: 1})
	g.AddRoot(ids[0])
	g.AddRoot(NewNodeID("nowhere"))

	errs := Validate(g)
	if !hasError(errs, "not an output") {
		t.Error("expected non-output root error")
	}
	if !hasError(errs, "root reference") {
		t.Error("expected missing root error")
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	g, ids := chain(SphereData{Radius: 1})
	g.Nodes[ids[0]].Name = "out"

	if errs := Validate(g); !hasError(errs, "duplicate name") {
		t.Error("expected duplicate name error")
		logAll(t, errs)
	}
}

func TestValidate_Signatures(t *testing.T) {
	t.Run("solid op on mesh", func(t *testing.T) {
		g, _ := chain(GridData{N: 3, M: 3}, TransformData{Translation: &Vec3{1, 0, 0}})
		if errs := Validate(g); !hasError(errs, "must be a solid") {
			t.Error("expected solid input error")
			logAll(t, errs)
		}
	})
	t.Run("mesh op on solid", func(t *testing.T) {
		g, _ := chain(SphereData{Radius: 1}, CurvatureData{})
		if errs := Validate(g); HasErrors(errs) {
			t.Error("a solid should feed a mesh input")
			logAll(t, errs)
		}
	})
	t.Run("arity", func(t *testing.T) {
		g, _ := chain(SphereData{Radius: 1}, BooleanData{Kind: Union})
		if errs := Validate(g); !hasError(errs, "takes 2 inputs, got 1") {
			t.Error("expected arity error")
			logAll(t, errs)
		}
	})
	t.Run("no data", func(t *testing.T) {
		g, ids := chain(SphereData{Radius: 1}, InspectData{})
		g.Nodes[ids[1]].Data = nil
		if errs := Validate(g); !hasError(errs, "no data") {
			t.Error("expected missing data error")
			logAll(t, errs)
		}
	})
}

func TestValidate_Params(t *testing.T) {
	good := smoothing.Config{Lambda: 0.5, Iterations: 1}
	tests := []struct {
		name   string
		source NodeData
		op     NodeData
		substr string
	}{
		{"zero radius", SphereData{}, nil, "radius"},
		{"nan radius", SphereData{Radius: math.NaN()}, nil, "radius"},
		{"flat box", BoxData{Size: Vec3{1, 0, 1}}, nil, "size"},
		{"thin cylinder", CylinderData{Height: 1}, nil, "height"},
		{"small grid", GridData{N: 1, M: 4}, nil, "2×2"},
		{"infinite dome", GridData{N: 3, M: 3, DomeHeight: math.Inf(1)}, nil, "dome"},
		{"few cells", SphereData{Radius: 1}, TessellateData{Cells: 2}, "cells"},
		{"curvature kind", GridData{N: 3, M: 3}, CurvatureData{Kind: 7}, "curvature kind"},
		{"negative iterations", GridData{N: 3, M: 3}, LocalSmoothingData{Config: smoothing.Config{Iterations: -1}}, "iterations"},
		{"nan lambda", GridData{N: 3, M: 3}, LocalSmoothingData{Config: smoothing.Config{Lambda: math.NaN()}}, "lambda"},
		{"global weight", GridData{N: 3, M: 3}, GlobalSmoothingData{Weight: 9}, "weight"},
		{"band gains", GridData{N: 3, M: 3}, BandFrequenciesData{Configs: []smoothing.Config{good, good}}, "gains"},
		{"single band", GridData{N: 3, M: 3}, BandFrequenciesData{Configs: []smoothing.Config{good}}, "gains"},
		{"high scale", GridData{N: 3, M: 3}, HighFrequenciesData{Config: good, Scale: math.Inf(-1)}, "scale"},
		{"harmonic shape", GridData{N: 3, M: 3}, HarmonicMapsData{Shape: 4}, "shape"},
		{"remesh grid", GridData{N: 3, M: 3}, RemeshingData{N: 1, M: 5}, "2×2"},
		{"iterate vertex", GridData{N: 3, M: 3}, IterateData{Vertex: -1}, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g *Graph
			if tt.op == nil {
				g, _ = chain(tt.source)
			} else {
				g, _ = chain(tt.source, tt.op)
			}
			errs := Validate(g)
			if !hasError(errs, tt.substr) {
				t.Errorf("expected an error mentioning %q", tt.substr)
				logAll(t, errs)
			}
		})
	}
}

func TestValidate_SortedErrorsFirst(t *testing.T) {
	g, _ := chain(SphereData{Radius: -1})
	orphan := NewNodeID("orphan")
	g.AddNode(&Node{ID: orphan, Kind: NodeSource, Data: BoxData{Size: Vec3{1, 1, 1}}})

	errs := Validate(g)
	if len(errs) != 2 {
		t.Fatalf("got %d findings, want 2", len(errs))
	}
	if errs[0].Severity != SeverityError || errs[1].Severity != SeverityWarning {
		t.Errorf("findings not sorted by severity: %v", errs)
	}
	if !strings.Contains(errs[1].Error(), "[warning] node ") {
		t.Errorf("Error() = %q", errs[1].Error())
	}
}
