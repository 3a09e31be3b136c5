// Package pipeline walks a processing graph and evaluates it. Solids are
// built with a shape kernel and meshed on demand; mesh operations run the
// geometry packages. One Result is produced per output node.
package pipeline

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/geoproc/pkg/curvature"
	"github.com/chazu/geoproc/pkg/filter"
	"github.com/chazu/geoproc/pkg/graph"
	"github.com/chazu/geoproc/pkg/kernel"
	"github.com/chazu/geoproc/pkg/linalg"
	"github.com/chazu/geoproc/pkg/mesh"
	"github.com/chazu/geoproc/pkg/parametrisation"
	"github.com/chazu/geoproc/pkg/remeshing"
	"github.com/chazu/geoproc/pkg/smoothing"
)

// DetailScalar names the scalar attached by high_frequencies.
const DetailScalar = "detail"

var (
	// ErrNotSolid is returned when a solid operation receives a mesh.
	ErrNotSolid = errors.New("pipeline: input is not a solid")
	// ErrMissingInput is returned when a node references an absent node.
	ErrMissingInput = errors.New("pipeline: missing input")
	// ErrVertexRange is returned by iterate for a vertex outside the mesh.
	ErrVertexRange = errors.New("pipeline: vertex out of range")
)

// Ring is the 1-ring of a vertex in iteration order. Both lists are empty
// for an isolated vertex.
type Ring struct {
	Vertex     int   `json:"vertex"`
	Neighbours []int `json:"neighbours"`
	Faces      []int `json:"faces"`
}

// Result is the evaluated value of an output node. Annotations are set by
// the query operations upstream of the output and cleared by any operation
// that produces new geometry.
type Result struct {
	Name    string
	Mesh    *mesh.TriangleMesh
	Scalars map[string]curvature.Result
	UVs     []r2.Vec
	Loops   [][]int
	Stats   *mesh.Stats
	Ring    *Ring
}

// value is what flows along a graph edge: a solid, or a mesh with its
// annotations.
type value struct {
	solid kernel.Solid
	Result
}

// annotate returns a copy of v that can take new annotations without
// touching v.
func (v *value) annotate() *value {
	c := *v
	c.Scalars = make(map[string]curvature.Result, len(v.Scalars)+1)
	for k, s := range v.Scalars {
		c.Scalars[k] = s
	}
	return &c
}

// walker evaluates nodes once each.
type walker struct {
	g       *graph.Graph
	k       kernel.Kernel
	threads int
	cells   int
	solver  linalg.SolveOptions
	memo    map[graph.NodeID]*value
}

// Run evaluates every output of g and returns one Result per output, in
// root order. The graph is never mutated. Threads, the default meshing
// resolution and the solver come from g.Defaults.
func Run(g *graph.Graph, k kernel.Kernel) ([]*Result, error) {
	if g == nil {
		return nil, nil
	}
	method, err := g.Defaults.SolverMethod()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	w := &walker{
		g:       g,
		k:       k,
		threads: g.Defaults.Threads,
		cells:   g.Defaults.Cells,
		solver:  linalg.SolveOptions{Method: method},
		memo:    make(map[graph.NodeID]*value),
	}

	var results []*Result
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			return nil, fmt.Errorf("pipeline: root %s: %w", rootID.Short(), ErrMissingInput)
		}
		v, err := w.eval(root)
		if err != nil {
			return nil, err
		}
		m, err := w.meshOf(v)
		if err != nil {
			return nil, fmt.Errorf("pipeline: output %s: %w", root.Name, err)
		}
		r := v.Result
		r.Mesh = m
		r.Name = root.Name
		if r.Name == "" {
			r.Name = root.ID.Short()
		}
		results = append(results, &r)
	}
	return results, nil
}

func (w *walker) eval(n *graph.Node) (*value, error) {
	if v, ok := w.memo[n.ID]; ok {
		return v, nil
	}
	inputs := make([]*value, 0, len(n.Inputs))
	for _, id := range n.Inputs {
		in := w.g.Get(id)
		if in == nil {
			return nil, fmt.Errorf("pipeline: node %s: input %s: %w", n.ID.Short(), id.Short(), ErrMissingInput)
		}
		v, err := w.eval(in)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, v)
	}
	v, err := w.apply(n, inputs)
	if err != nil {
		op := "?"
		if n.Data != nil {
			op = n.Data.Op()
		}
		return nil, fmt.Errorf("pipeline: node %s (%s): %w", n.ID.Short(), op, err)
	}
	w.memo[n.ID] = v
	return v, nil
}

func (w *walker) apply(n *graph.Node, in []*value) (*value, error) {
	want, _ := n.Data.Signature()
	if len(in) != len(want) {
		return nil, fmt.Errorf("%w: takes %d inputs, got %d", ErrMissingInput, len(want), len(in))
	}

	switch d := n.Data.(type) {
	case graph.SphereData:
		return w.solid(w.k.Sphere(d.Radius))
	case graph.BoxData:
		return w.solid(w.k.Box(d.Size.X, d.Size.Y, d.Size.Z))
	case graph.CylinderData:
		return w.solid(w.k.Cylinder(d.Height, d.Radius))
	case graph.GridData:
		return &value{Result: Result{Mesh: dome(mesh.NewGrid(d.N, d.M), d.DomeHeight)}}, nil

	case graph.BooleanData:
		a, b := in[0].solid, in[1].solid
		if a == nil || b == nil {
			return nil, ErrNotSolid
		}
		switch d.Kind {
		case graph.Union:
			return &value{solid: w.k.Union(a, b)}, nil
		case graph.Difference:
			return &value{solid: w.k.Difference(a, b)}, nil
		case graph.Intersection:
			return &value{solid: w.k.Intersection(a, b)}, nil
		}
		return nil, fmt.Errorf("unknown boolean %d", int(d.Kind))
	case graph.TransformData:
		s := in[0].solid
		if s == nil {
			return nil, ErrNotSolid
		}
		if r := d.Rotation; r != nil && !r.IsZero() {
			s = w.k.Rotate(s, r.X, r.Y, r.Z)
		}
		if t := d.Translation; t != nil && !t.IsZero() {
			s = w.k.Translate(s, t.X, t.Y, t.Z)
		}
		return &value{solid: s}, nil
	case graph.TessellateData:
		if in[0].solid == nil {
			return nil, ErrNotSolid
		}
		cells := d.Cells
		if cells == 0 {
			cells = w.cells
		}
		m, err := w.tessellate(in[0].solid, cells)
		if err != nil {
			return nil, err
		}
		return &value{Result: Result{Mesh: m}}, nil
	}

	m, err := w.meshOf(in[0])
	if err != nil {
		return nil, err
	}

	switch d := n.Data.(type) {
	case graph.ScaleToUnitData:
		c := m.Clone()
		c.ScaleToUnit()
		return &value{Result: Result{Mesh: c}}, nil

	case graph.LocalSmoothingData:
		cfg := d.Config
		cfg.Threads = w.threads
		return reposition(m)(smoothing.Local(m, cfg))
	case graph.GlobalSmoothingData:
		return reposition(m)(smoothing.Global(m, d.Operator, d.Weight, smoothing.GlobalOptions{Solver: w.solver}))
	case graph.BandFrequenciesData:
		return reposition(m)(filter.BandFrequencies(m, w.withThreads(d.Configs), d.Mus))
	case graph.HighFrequenciesData:
		cfg := d.Config
		cfg.Threads = w.threads
		details, err := filter.HighFrequencyDetails(m, cfg)
		if err != nil {
			return nil, err
		}
		ps := make([]r3.Vec, len(details))
		norms := make([]float64, len(details))
		for i, dv := range details {
			ps[i] = r3.Add(m.Vertex(i), r3.Scale(d.Scale, dv))
			norms[i] = r3.Norm(dv)
		}
		v, err := reposition(m)(ps, nil)
		if err != nil {
			return nil, err
		}
		v.Scalars = map[string]curvature.Result{DetailScalar: scalar(norms)}
		return v, nil
	case graph.RemeshingData:
		out, err := remeshing.HarmonicMaps(m, d.N, d.M, d.Weight, d.Shape, remeshing.Options{
			Threads:         w.threads,
			Parametrisation: parametrisation.Options{Solver: w.solver},
		})
		if err != nil {
			return nil, err
		}
		return &value{Result: Result{Mesh: out}}, nil

	case graph.CurvatureData:
		opts := curvature.Options{Threads: w.threads}
		v := in[0].annotate()
		v.Mesh = m
		switch d.Kind {
		case graph.CurvatureGauss:
			v.Scalars[d.Kind.String()] = curvature.Gauss(m, opts)
		case graph.CurvatureMean:
			v.Scalars[d.Kind.String()] = curvature.Mean(m, opts)
		default:
			return nil, fmt.Errorf("unknown curvature kind %d", int(d.Kind))
		}
		return v, nil
	case graph.HarmonicMapsData:
		uvs, err := parametrisation.HarmonicMaps(m, d.Weight, d.Shape, parametrisation.Options{Solver: w.solver})
		if err != nil {
			return nil, err
		}
		v := in[0].annotate()
		v.Mesh = m
		v.UVs = uvs
		return v, nil
	case graph.BoundariesData:
		b, err := m.Boundaries()
		if err != nil {
			return nil, err
		}
		v := in[0].annotate()
		v.Mesh = m
		v.Loops = b.Loops
		return v, nil
	case graph.InspectData:
		st, err := m.Stats()
		if err != nil {
			return nil, err
		}
		v := in[0].annotate()
		v.Mesh = m
		v.Stats = &st
		return v, nil
	case graph.IterateData:
		if d.Vertex >= m.NumVertices() {
			return nil, fmt.Errorf("%w: %d of %d", ErrVertexRange, d.Vertex, m.NumVertices())
		}
		v := in[0].annotate()
		v.Mesh = m
		v.Ring = ring(m, d.Vertex)
		return v, nil

	case graph.OutputData:
		v := in[0].annotate()
		v.Mesh = m
		return v, nil
	}
	return nil, fmt.Errorf("unsupported node data %T", n.Data)
}

func (w *walker) solid(s kernel.Solid, err error) (*value, error) {
	if err != nil {
		return nil, err
	}
	return &value{solid: s}, nil
}

// meshOf returns the mesh carried by v, tessellating a solid with the
// default resolution. The tessellation is kept on v for later consumers.
func (w *walker) meshOf(v *value) (*mesh.TriangleMesh, error) {
	if v.Mesh != nil {
		return v.Mesh, nil
	}
	if v.solid == nil {
		return nil, errors.New("pipeline: value carries neither a solid nor a mesh")
	}
	m, err := w.tessellate(v.solid, w.cells)
	if err != nil {
		return nil, err
	}
	v.Mesh = m
	return m, nil
}

func (w *walker) tessellate(s kernel.Solid, cells int) (*mesh.TriangleMesh, error) {
	km, err := w.k.ToMesh(s, cells)
	if err != nil {
		return nil, err
	}
	return km.TriangleMesh()
}

func (w *walker) withThreads(configs []smoothing.Config) []smoothing.Config {
	out := make([]smoothing.Config, len(configs))
	for i, c := range configs {
		c.Threads = w.threads
		out[i] = c
	}
	return out
}

// reposition returns a function that moves a copy of m to new positions.
// It takes the (positions, error) pair of the geometry operations directly.
func reposition(m *mesh.TriangleMesh) func([]r3.Vec, error) (*value, error) {
	return func(ps []r3.Vec, err error) (*value, error) {
		if err != nil {
			return nil, err
		}
		c := m.Clone()
		if err := c.SetVertices(ps); err != nil {
			return nil, err
		}
		return &value{Result: Result{Mesh: c}}, nil
	}
}

// dome lifts the grid interior by h·(1−x²)(1−y²) over [−1, 1]².
func dome(m *mesh.TriangleMesh, h float64) *mesh.TriangleMesh {
	if h == 0 {
		return m
	}
	ps := make([]r3.Vec, m.NumVertices())
	for i, p := range m.Vertices() {
		x, y := 2*p.X-1, 2*p.Y-1
		ps[i] = r3.Vec{X: p.X, Y: p.Y, Z: h * (1 - x*x) * (1 - y*y)}
	}
	// Same vertex count, so SetVertices cannot fail.
	_ = m.SetVertices(ps)
	return m
}

func ring(m *mesh.TriangleMesh, v int) *Ring {
	topo := m.Topology()
	r := &Ring{Vertex: v, Neighbours: []int{}, Faces: []int{}}
	if topo.IsIsolated(v) {
		return r
	}
	r.Neighbours = mesh.VertexNeighbours(topo, v)
	r.Faces = mesh.VertexFaces(topo, v)
	return r
}

func scalar(values []float64) curvature.Result {
	r := curvature.Result{Values: values, Min: math.NaN(), Max: math.NaN()}
	if len(values) > 0 {
		r.Min = floats.Min(values)
		r.Max = floats.Max(values)
	}
	return r
}
