package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/geoproc/pkg/graph"
	"github.com/chazu/geoproc/pkg/parametrisation"
	"github.com/chazu/geoproc/pkg/smoothing"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms geoproc Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: local-smoothing -> local_smoothing
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSmoothing wraps a smoothing.Config so it can be built once and
// handed to several operations.
type sexpSmoothing struct {
	cfg smoothing.Config
}

func (s *sexpSmoothing) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(smoothing-config :operator :%s :weight :%s :lambda %g :iterations %d)",
		s.cfg.Operator, s.cfg.Weight, s.cfg.Lambda, s.cfg.Iterations)
}
func (s *sexpSmoothing) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// number returns the keyword value as a number, or def when absent.
func (pa kwArgs) number(key string, def float64) (float64, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// integer returns the keyword value as an integer, or def when absent.
func (pa kwArgs) integer(key string, def int) (int, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// word returns the keyword value as a keyword name, or def when absent.
func (pa kwArgs) word(key, def string) (string, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt, or from a SexpFloat with no
// fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_mean) and plain strings ("mean").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toSmoothing extracts a smoothing.Config from a sexpSmoothing.
func toSmoothing(s zygo.Sexp) (smoothing.Config, error) {
	if c, ok := s.(*sexpSmoothing); ok {
		return c.cfg, nil
	}
	return smoothing.Config{}, fmt.Errorf("expected smoothing config, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Graph building
// ---------------------------------------------------------------------------

// builder adds nodes to the graph of one evaluation. Node IDs are derived
// from the operation and a per-evaluation counter, so the same source
// always produces the same IDs.
type builder struct {
	g *graph.Graph
	n int
}

func (b *builder) add(kind graph.NodeKind, name string, data graph.NodeData, inputs ...graph.NodeID) *sexpNodeRef {
	id := graph.NewNodeID(fmt.Sprintf("%s/%d", data.Op(), b.n))
	b.n++
	b.g.AddNode(&graph.Node{
		ID:     id,
		Kind:   kind,
		Name:   name,
		Inputs: inputs,
		Data:   data,
	})
	return &sexpNodeRef{id: id, name: name}
}

// input returns the node reference at positional argument i.
func input(pa kwArgs, i int) (graph.NodeID, error) {
	if len(pa.positional) <= i {
		return graph.ZeroID, fmt.Errorf("missing input %d", i+1)
	}
	return toNodeRef(pa.positional[i])
}

// smoothingConfig builds a smoothing.Config from the keywords in pa.
// Missing keywords default to a single Laplacian pass with λ = 0.5 and the
// graph's default weight.
func (b *builder) smoothingConfig(pa kwArgs) (smoothing.Config, error) {
	cfg := smoothing.Config{Operator: smoothing.Laplacian, Lambda: 0.5, Iterations: 1}
	var err error
	if cfg.Weight, err = b.weight(pa); err != nil {
		return cfg, err
	}
	op, err := pa.word("operator", cfg.Operator.String())
	if err != nil {
		return cfg, err
	}
	if cfg.Operator, err = smoothing.ParseOperator(op); err != nil {
		return cfg, err
	}
	if cfg.Lambda, err = pa.number("lambda", cfg.Lambda); err != nil {
		return cfg, err
	}
	if cfg.Iterations, err = pa.integer("iterations", cfg.Iterations); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// configArg returns the smoothing config passed under key, or one built
// from the keywords in pa when key is absent.
func (b *builder) configArg(pa kwArgs, key string) (smoothing.Config, error) {
	if v, ok := pa.kw[key]; ok {
		cfg, err := toSmoothing(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", key, err)
		}
		return cfg, nil
	}
	return b.smoothingConfig(pa)
}

func (b *builder) weight(pa kwArgs) (smoothing.Weight, error) {
	w, err := pa.word("weight", b.g.Defaults.Weight)
	if err != nil {
		return 0, err
	}
	return smoothing.ParseWeight(w)
}

func (b *builder) shape(pa kwArgs) (parametrisation.Shape, error) {
	s, err := pa.word("shape", b.g.Defaults.Shape)
	if err != nil {
		return 0, err
	}
	return parametrisation.ParseShape(s)
}

func parseCurvatureKind(s string) (graph.CurvatureKind, error) {
	switch s {
	case "gauss", "gaussian":
		return graph.CurvatureGauss, nil
	case "mean":
		return graph.CurvatureMean, nil
	}
	return 0, fmt.Errorf("invalid curvature kind %q, expected gauss or mean", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinFunc is a builtin that only sees its parsed arguments. Errors are
// prefixed with the builtin name on the way out.
type builtinFunc func(pa kwArgs) (zygo.Sexp, error)

// meshOp builds a single-input op node from the keywords of a call whose
// first positional argument is the input mesh or solid.
type meshOp func(pa kwArgs) (graph.NodeData, error)

// registerBuiltins installs the geoproc DSL builtins into a zygomys
// environment. The builtins populate g during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.Graph) {
	b := &builder{g: g}

	register := func(name string, fn builtinFunc) {
		display := strings.ReplaceAll(name, "_", "-")
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			out, err := fn(parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", display, err)
			}
			return out, nil
		})
	}
	registerOp := func(name string, build meshOp) {
		register(name, func(pa kwArgs) (zygo.Sexp, error) {
			in, err := input(pa, 0)
			if err != nil {
				return nil, err
			}
			data, err := build(pa)
			if err != nil {
				return nil, err
			}
			return b.add(graph.NodeOp, "", data, in), nil
		})
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	register("vec3", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 3 {
			return nil, fmt.Errorf("requires exactly 3 arguments, got %d", len(pa.positional))
		}
		var xyz [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return nil, fmt.Errorf("%c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: graph.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// Solids: (sphere :radius 1) (box :x 1 :y 2 :z 3) (cylinder :height 2 :radius 0.5)
	// -----------------------------------------------------------------------
	register("sphere", func(pa kwArgs) (zygo.Sexp, error) {
		r, err := pa.number("radius", 0)
		if err != nil {
			return nil, err
		}
		return b.add(graph.NodeSource, "", graph.SphereData{Radius: r}), nil
	})
	register("box", func(pa kwArgs) (zygo.Sexp, error) {
		var size graph.Vec3
		var err error
		if size.X, err = pa.number("x", 0); err != nil {
			return nil, err
		}
		if size.Y, err = pa.number("y", 0); err != nil {
			return nil, err
		}
		if size.Z, err = pa.number("z", 0); err != nil {
			return nil, err
		}
		return b.add(graph.NodeSource, "", graph.BoxData{Size: size}), nil
	})
	register("cylinder", func(pa kwArgs) (zygo.Sexp, error) {
		h, err := pa.number("height", 0)
		if err != nil {
			return nil, err
		}
		r, err := pa.number("radius", 0)
		if err != nil {
			return nil, err
		}
		return b.add(graph.NodeSource, "", graph.CylinderData{Height: h, Radius: r}), nil
	})

	// -----------------------------------------------------------------------
	// (union a b) (difference a b) (intersection a b)
	// -----------------------------------------------------------------------
	for _, op := range []graph.BooleanOp{graph.Union, graph.Difference, graph.Intersection} {
		op := op
		register(op.String(), func(pa kwArgs) (zygo.Sexp, error) {
			if len(pa.positional) != 2 {
				return nil, fmt.Errorf("requires exactly 2 solids, got %d", len(pa.positional))
			}
			a, err := input(pa, 0)
			if err != nil {
				return nil, err
			}
			c, err := input(pa, 1)
			if err != nil {
				return nil, err
			}
			return b.add(graph.NodeOp, "", graph.BooleanData{Kind: op}, a, c), nil
		})
	}

	// -----------------------------------------------------------------------
	// (translate s :by (vec3 1 0 0)) (rotate s :by (vec3 0 0 90))
	// -----------------------------------------------------------------------
	registerOp("translate", func(pa kwArgs) (graph.NodeData, error) {
		v, err := vecArg(pa, "by")
		if err != nil {
			return nil, err
		}
		return graph.TransformData{Translation: &v}, nil
	})
	registerOp("rotate", func(pa kwArgs) (graph.NodeData, error) {
		v, err := vecArg(pa, "by")
		if err != nil {
			return nil, err
		}
		return graph.TransformData{Rotation: &v}, nil
	})

	// -----------------------------------------------------------------------
	// (tessellate s :cells 32)
	// -----------------------------------------------------------------------
	registerOp("tessellate", func(pa kwArgs) (graph.NodeData, error) {
		cells, err := pa.integer("cells", 0)
		if err != nil {
			return nil, err
		}
		return graph.TessellateData{Cells: cells}, nil
	})

	// -----------------------------------------------------------------------
	// (grid :n 10 :m 10 :dome-height 0.3)
	// -----------------------------------------------------------------------
	register("grid", func(pa kwArgs) (zygo.Sexp, error) {
		var d graph.GridData
		var err error
		if d.N, err = pa.integer("n", 0); err != nil {
			return nil, err
		}
		if d.M, err = pa.integer("m", d.N); err != nil {
			return nil, err
		}
		if d.DomeHeight, err = pa.number("dome-height", 0); err != nil {
			return nil, err
		}
		return b.add(graph.NodeSource, "", d), nil
	})

	// -----------------------------------------------------------------------
	// (smoothing-config :operator :taubin :weight :cotangent :lambda 0.5 :iterations 10)
	// -----------------------------------------------------------------------
	register("smoothing_config", func(pa kwArgs) (zygo.Sexp, error) {
		cfg, err := b.smoothingConfig(pa)
		if err != nil {
			return nil, err
		}
		return &sexpSmoothing{cfg: cfg}, nil
	})

	// -----------------------------------------------------------------------
	// Mesh operations. The input is the first positional argument.
	// -----------------------------------------------------------------------
	registerOp("scale_to_unit", func(kwArgs) (graph.NodeData, error) {
		return graph.ScaleToUnitData{}, nil
	})

	// (curvature m :kind :mean)
	registerOp("curvature", func(pa kwArgs) (graph.NodeData, error) {
		k, err := pa.word("kind", "gauss")
		if err != nil {
			return nil, err
		}
		kind, err := parseCurvatureKind(k)
		if err != nil {
			return nil, err
		}
		return graph.CurvatureData{Kind: kind}, nil
	})

	// (local-smoothing m cfg) or (local-smoothing m :lambda 0.5 :iterations 3 ...)
	registerOp("local_smoothing", func(pa kwArgs) (graph.NodeData, error) {
		if len(pa.positional) > 1 {
			cfg, err := toSmoothing(pa.positional[1])
			if err != nil {
				return nil, err
			}
			return graph.LocalSmoothingData{Config: cfg}, nil
		}
		cfg, err := b.smoothingConfig(pa)
		if err != nil {
			return nil, err
		}
		return graph.LocalSmoothingData{Config: cfg}, nil
	})

	// (global-smoothing m :operator :laplacian :weight :cotangent)
	registerOp("global_smoothing", func(pa kwArgs) (graph.NodeData, error) {
		op, err := pa.word("operator", smoothing.Laplacian.String())
		if err != nil {
			return nil, err
		}
		d := graph.GlobalSmoothingData{}
		if d.Operator, err = smoothing.ParseOperator(op); err != nil {
			return nil, err
		}
		if d.Weight, err = b.weight(pa); err != nil {
			return nil, err
		}
		return d, nil
	})

	// (band-frequencies m :configs (list c1 c2 c3) :mus (list 0.5 2))
	registerOp("band_frequencies", func(pa kwArgs) (graph.NodeData, error) {
		var d graph.BandFrequenciesData
		if v, ok := pa.kw["configs"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return nil, fmt.Errorf("configs: %w", err)
			}
			for i, item := range items {
				cfg, err := toSmoothing(item)
				if err != nil {
					return nil, fmt.Errorf("configs entry %d: %w", i, err)
				}
				d.Configs = append(d.Configs, cfg)
			}
		}
		if v, ok := pa.kw["mus"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return nil, fmt.Errorf("mus: %w", err)
			}
			for i, item := range items {
				mu, err := toFloat64(item)
				if err != nil {
					return nil, fmt.Errorf("mus entry %d: %w", i, err)
				}
				d.Mus = append(d.Mus, mu)
			}
		}
		return d, nil
	})

	// (high-frequencies m :config cfg :scale 2)
	registerOp("high_frequencies", func(pa kwArgs) (graph.NodeData, error) {
		cfg, err := b.configArg(pa, "config")
		if err != nil {
			return nil, err
		}
		scale, err := pa.number("scale", 1)
		if err != nil {
			return nil, err
		}
		return graph.HighFrequenciesData{Config: cfg, Scale: scale}, nil
	})

	// (harmonic-maps m :weight :cotangent :shape :circle)
	registerOp("harmonic_maps", func(pa kwArgs) (graph.NodeData, error) {
		w, err := b.weight(pa)
		if err != nil {
			return nil, err
		}
		s, err := b.shape(pa)
		if err != nil {
			return nil, err
		}
		return graph.HarmonicMapsData{Weight: w, Shape: s}, nil
	})

	// (remeshing m :n 20 :m 20 :weight :uniform :shape :square)
	registerOp("remeshing", func(pa kwArgs) (graph.NodeData, error) {
		var d graph.RemeshingData
		var err error
		if d.N, err = pa.integer("n", 0); err != nil {
			return nil, err
		}
		if d.M, err = pa.integer("m", d.N); err != nil {
			return nil, err
		}
		if d.Weight, err = b.weight(pa); err != nil {
			return nil, err
		}
		if d.Shape, err = b.shape(pa); err != nil {
			return nil, err
		}
		return d, nil
	})

	registerOp("boundaries", func(kwArgs) (graph.NodeData, error) {
		return graph.BoundariesData{}, nil
	})
	registerOp("inspect", func(kwArgs) (graph.NodeData, error) {
		return graph.InspectData{}, nil
	})

	// (iterate m :vertex 12)
	registerOp("iterate", func(pa kwArgs) (graph.NodeData, error) {
		v, err := pa.integer("vertex", 0)
		if err != nil {
			return nil, err
		}
		return graph.IterateData{Vertex: v}, nil
	})

	// -----------------------------------------------------------------------
	// (output "name" m)
	// -----------------------------------------------------------------------
	register("output", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 2 {
			return nil, fmt.Errorf("requires a name and an input")
		}
		name, err := toString(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		in, err := input(pa, 1)
		if err != nil {
			return nil, err
		}
		if g.Lookup(name) != nil {
			return nil, fmt.Errorf("duplicate output %q", name)
		}
		ref := b.add(graph.NodeOutput, name, graph.OutputData{}, in)
		g.AddRoot(ref.id)
		return ref, nil
	})
}

// vecArg returns the vec3 under key, which is required.
func vecArg(pa kwArgs, key string) (graph.Vec3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return graph.Vec3{}, fmt.Errorf("missing :%s", key)
	}
	vec, err := toVec3(v)
	if err != nil {
		return graph.Vec3{}, fmt.Errorf("%s: %w", key, err)
	}
	return vec, nil
}
