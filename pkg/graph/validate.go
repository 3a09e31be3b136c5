package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/geoproc/pkg/parametrisation"
	"github.com/chazu/geoproc/pkg/smoothing"
)

// ValidationSeverity indicates whether a validation finding blocks
// evaluation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// HasErrors reports whether any finding blocks evaluation.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate runs the structural and parameter checks on the graph and
// returns every finding. It never mutates the graph. Findings are sorted
// errors first, so the order does not depend on map iteration.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateSignatures(g)...)
	errs = append(errs, validateParams(g)...)
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Severity != errs[j].Severity {
			return errs[i].Severity < errs[j].Severity
		}
		if errs[i].NodeID != errs[j].NodeID {
			return errs[i].NodeID < errs[j].NodeID
		}
		return errs[i].Message < errs[j].Message
	})
	return errs
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = on the current path, black (2) = done.
// Reaching a gray node means a cycle.
func validateDAG(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, in := range node.Inputs {
			if visit(in) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range sortedIDs(g) {
		if color[id] == white && visit(id) {
			// One cycle error is sufficient.
			break
		}
	}
	return errs
}

// validateReferences checks that every input points to an existing node.
func validateReferences(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		for _, in := range node.Inputs {
			if _, ok := g.Nodes[in]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("input reference %s does not exist", in.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that the NameIndex points at existing nodes and
// that no two nodes share a name.
func validateNames(g *Graph) []ValidationError {
	var errs []ValidationError
	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string]int)
	for _, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name]++
		}
	}
	for name, n := range nameToNodes {
		if n > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, n),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that every root is an existing output node and
// warns about nodes no output depends on.
func validateRoots(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, rid := range g.Roots {
		n, ok := g.Nodes[rid]
		if !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if n.Kind != NodeOutput {
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  fmt.Sprintf("root is a %s node, not an output", n.Kind),
				Severity: SeverityError,
			})
		}
	}

	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		node := g.Nodes[queue[0]]
		queue = queue[1:]
		if node == nil {
			continue
		}
		for _, in := range node.Inputs {
			if !reachable[in] {
				reachable[in] = true
				queue = append(queue, in)
			}
		}
	}

	for id, node := range g.Nodes {
		if reachable[id] {
			continue
		}
		name := node.Name
		if name == "" && node.Data != nil {
			name = node.Data.Op()
		}
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf("node %q does not feed any output (orphan)", name),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateSignatures checks input counts and kinds. A mesh input accepts a
// solid, which is tessellated on the way in; a solid input needs a solid.
func validateSignatures(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		if node.Data == nil {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "node has no data",
				Severity: SeverityError,
			})
			continue
		}
		want, _ := node.Data.Signature()
		if len(node.Inputs) != len(want) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s takes %d inputs, got %d", node.Data.Op(), len(want), len(node.Inputs)),
				Severity: SeverityError,
			})
			continue
		}
		for i, in := range node.Inputs {
			src, ok := g.Nodes[in]
			if !ok || src.Data == nil {
				continue
			}
			_, got := src.Data.Signature()
			if want[i] == ValueSolid && got != ValueSolid {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("%s input %d must be a solid, got a %s from %s", node.Data.Op(), i, got, src.Data.Op()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateParams checks the parameter ranges of each kind of node.
func validateParams(g *Graph) []ValidationError {
	var errs []ValidationError
	bad := func(n *Node, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  n.Data.Op() + ": " + fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}
	checkConfig := func(n *Node, c smoothing.Config) {
		if err := c.Validate(); err != nil {
			bad(n, "%v", err)
		}
		if !finite(c.Lambda) {
			bad(n, "lambda %v is not finite", c.Lambda)
		}
	}

	for _, n := range g.Nodes {
		switch d := n.Data.(type) {
		case SphereData:
			if !(d.Radius > 0) {
				bad(n, "radius %v must be positive", d.Radius)
			}
		case BoxData:
			if !(d.Size.X > 0 && d.Size.Y > 0 && d.Size.Z > 0) {
				bad(n, "size %s must be positive", d.Size)
			}
		case CylinderData:
			if !(d.Height > 0 && d.Radius > 0) {
				bad(n, "height %v and radius %v must be positive", d.Height, d.Radius)
			}
		case GridData:
			if d.N < 2 || d.M < 2 {
				bad(n, "grid must be at least 2×2, got %d×%d", d.N, d.M)
			}
			if !finite(d.DomeHeight) {
				bad(n, "dome height %v is not finite", d.DomeHeight)
			}
		case TransformData:
			for _, v := range []*Vec3{d.Translation, d.Rotation} {
				if v != nil && !(finite(v.X) && finite(v.Y) && finite(v.Z)) {
					bad(n, "vector %s is not finite", *v)
				}
			}
		case TessellateData:
			if d.Cells != 0 && d.Cells < 4 {
				bad(n, "cells %d, need at least 4", d.Cells)
			}
		case CurvatureData:
			if d.Kind != CurvatureGauss && d.Kind != CurvatureMean {
				bad(n, "unknown curvature kind %d", int(d.Kind))
			}
		case LocalSmoothingData:
			checkConfig(n, d.Config)
		case GlobalSmoothingData:
			checkConfig(n, smoothing.Config{Operator: d.Operator, Weight: d.Weight})
		case BandFrequenciesData:
			if len(d.Configs) < 2 || len(d.Mus) != len(d.Configs)-1 {
				bad(n, "%d configurations need %d gains, got %d", len(d.Configs), max(len(d.Configs)-1, 1), len(d.Mus))
			}
			for _, c := range d.Configs {
				checkConfig(n, c)
			}
			for _, mu := range d.Mus {
				if !finite(mu) {
					bad(n, "gain %v is not finite", mu)
				}
			}
		case HighFrequenciesData:
			checkConfig(n, d.Config)
			if !finite(d.Scale) {
				bad(n, "scale %v is not finite", d.Scale)
			}
		case HarmonicMapsData:
			checkConfig(n, smoothing.Config{Weight: d.Weight})
			if !validShape(d.Shape) {
				bad(n, "unknown shape %v", d.Shape)
			}
		case RemeshingData:
			if d.N < 2 || d.M < 2 {
				bad(n, "grid must be at least 2×2, got %d×%d", d.N, d.M)
			}
			checkConfig(n, smoothing.Config{Weight: d.Weight})
			if !validShape(d.Shape) {
				bad(n, "unknown shape %v", d.Shape)
			}
		case IterateData:
			if d.Vertex < 0 {
				bad(n, "vertex %d is negative", d.Vertex)
			}
		}
	}
	return errs
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func validShape(s parametrisation.Shape) bool {
	return s == parametrisation.Circle || s == parametrisation.Square
}

// sortedIDs returns the node ids in a fixed order.
func sortedIDs(g *Graph) []NodeID {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
