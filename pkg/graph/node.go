package graph

// NodeKind enumerates the types of nodes in the processing graph.
type NodeKind int

const (
	NodeSource NodeKind = iota // shape primitive or generated grid
	NodeOp                     // operation on one or more inputs
	NodeOutput                 // named result, always a root
)

func (k NodeKind) String() string {
	switch k {
	case NodeSource:
		return "source"
	case NodeOp:
		return "op"
	case NodeOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the processing graph. Inputs are the
// nodes whose values the node consumes, in order.
type Node struct {
	ID     NodeID   `json:"id"`
	Kind   NodeKind `json:"kind"`
	Name   string   `json:"name,omitempty"`
	Inputs []NodeID `json:"inputs,omitempty"`
	Data   NodeData `json:"data"`
}

// ValueKind is the type of value flowing along a graph edge.
type ValueKind int

const (
	ValueSolid ValueKind = iota // kernel solid, meshed on demand
	ValueMesh                   // triangle mesh
)

func (k ValueKind) String() string {
	switch k {
	case ValueSolid:
		return "solid"
	case ValueMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	// Op names the operation, as written in scripts.
	Op() string
	// Signature returns the value kinds the node consumes and produces.
	Signature() (in []ValueKind, out ValueKind)
}
