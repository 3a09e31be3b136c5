package graph

import (
	"testing"

	"github.com/chazu/geoproc/pkg/config"
)

func TestNewGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.Defaults != config.Default() {
		t.Errorf("defaults = %+v, want built-in defaults", g.Defaults)
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("sphere/ball")
	g.AddNode(&Node{ID: id, Kind: NodeSource, Name: "ball", Data: SphereData{Radius: 1}})

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}
	found := g.Lookup("ball")
	if found == nil || found.ID != id {
		t.Fatal("Lookup(\"ball\") did not return the node")
	}
	if g.MustLookup("ball").ID != id {
		t.Error("MustLookup returned wrong node")
	}
	if g.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}
	if got := g.Get(id); got == nil || got.Name != "ball" {
		t.Error("Get by ID failed")
	}
}

func TestMustLookupPanics(t *testing.T) {
	g := New()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic on missing name")
		}
	}()
	g.MustLookup("missing")
}

func TestInputsAndOutputs(t *testing.T) {
	g := New()
	a := NewNodeID("a")
	b := NewNodeID("b")
	u := NewNodeID("u")
	out := NewNodeID("out")
	missing := NewNodeID("missing")

	g.AddNode(&Node{ID: a, Kind: NodeSource, Data: SphereData{Radius: 1}})
	g.AddNode(&Node{ID: b, Kind: NodeSource, Data: BoxData{Size: Vec3{1, 1, 1}}})
	g.AddNode(&Node{ID: u, Kind: NodeOp, Inputs: []NodeID{a, missing, b}, Data: BooleanData{Kind: Union}})
	g.AddNode(&Node{ID: out, Kind: NodeOutput, Name: "result", Inputs: []NodeID{u}, Data: OutputData{}})
	g.AddRoot(out)
	g.AddRoot(missing)

	inputs := g.Inputs(g.Get(u))
	if len(inputs) != 2 || inputs[0].ID != a || inputs[1].ID != b {
		t.Errorf("Inputs() = %v, want [a b] in order", inputs)
	}
	outs := g.Outputs()
	if len(outs) != 1 || outs[0].Name != "result" {
		t.Errorf("Outputs() = %v, want [result]", outs)
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	if NewNodeID("sphere/1") != NewNodeID("sphere/1") {
		t.Error("same path should produce same NodeID")
	}
	if NewNodeID("sphere/1") == NewNodeID("sphere/2") {
		t.Error("different paths should produce different NodeIDs")
	}
}

func TestNodeIDZero(t *testing.T) {
	var id NodeID
	if !id.IsZero() {
		t.Error("zero-value NodeID should be zero")
	}
	if NewNodeID("something").IsZero() {
		t.Error("non-zero NodeID should not be zero")
	}
	if len(NewNodeID("test").Short()) != 12 {
		t.Errorf("Short() len = %d, want 12", len(NewNodeID("test").Short()))
	}
}

func TestVec3(t *testing.T) {
	a := Vec3{1, 2, 3}
	if got := a.Add(Vec3{4, 5, 6}); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add = %v, want (5, 7, 9)", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale = %v, want (2, 4, 6)", got)
	}
	if (Vec3{1.5, 2.5, 3.5}).String() != "(1.5, 2.5, 3.5)" {
		t.Errorf("String() = %q", Vec3{1.5, 2.5, 3.5}.String())
	}
	if !(Vec3{}).IsZero() || a.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestOpNames(t *testing.T) {
	tests := []struct {
		data NodeData
		want string
	}{
		{SphereData{}, "sphere"},
		{BoxData{}, "box"},
		{CylinderData{}, "cylinder"},
		{GridData{}, "grid"},
		{BooleanData{Kind: Difference}, "difference"},
		{TransformData{Translation: &Vec3{}}, "translate"},
		{TransformData{Rotation: &Vec3{}}, "rotate"},
		{TessellateData{}, "tessellate"},
		{ScaleToUnitData{}, "scale_to_unit"},
		{CurvatureData{}, "curvature"},
		{LocalSmoothingData{}, "local_smoothing"},
		{GlobalSmoothingData{}, "global_smoothing"},
		{BandFrequenciesData{}, "band_frequencies"},
		{HighFrequenciesData{}, "high_frequencies"},
		{HarmonicMapsData{}, "harmonic_maps"},
		{RemeshingData{}, "remeshing"},
		{BoundariesData{}, "boundaries"},
		{InspectData{}, "inspect"},
		{IterateData{}, "iterate"},
		{OutputData{}, "output"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.data.Op(); got != tt.want {
				t.Errorf("Op() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringers(t *testing.T) {
	if NodeSource.String() != "source" || NodeOp.String() != "op" || NodeOutput.String() != "output" {
		t.Error("NodeKind.String() mismatch")
	}
	if ValueSolid.String() != "solid" || ValueMesh.String() != "mesh" {
		t.Error("ValueKind.String() mismatch")
	}
	if CurvatureMean.String() != "mean" {
		t.Errorf("CurvatureMean.String() = %q", CurvatureMean.String())
	}
	if SeverityWarning.String() != "warning" {
		t.Errorf("SeverityWarning.String() = %q", SeverityWarning.String())
	}
}
