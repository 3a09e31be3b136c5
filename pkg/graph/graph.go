package graph

import (
	"fmt"

	"github.com/chazu/geoproc/pkg/config"
)

// Graph is the top-level immutable data structure produced by script
// evaluation. It is never mutated in place; each evaluation produces a new
// graph.
type Graph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  config.Defaults   `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty Graph with the built-in defaults.
func New() *Graph {
	return NewWithDefaults(config.Default())
}

// NewWithDefaults creates an empty Graph carrying d.
func NewWithDefaults(d config.Defaults) *Graph {
	return &Graph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults:  d,
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *Graph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *Graph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *Graph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *Graph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *Graph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Inputs returns the input nodes of n in order, skipping dangling ids.
func (g *Graph) Inputs(n *Node) []*Node {
	inputs := make([]*Node, 0, len(n.Inputs))
	for _, id := range n.Inputs {
		if in := g.Nodes[id]; in != nil {
			inputs = append(inputs, in)
		}
	}
	return inputs
}

// Outputs returns the root nodes in registration order.
func (g *Graph) Outputs() []*Node {
	out := make([]*Node, 0, len(g.Roots))
	for _, id := range g.Roots {
		if n := g.Nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}
