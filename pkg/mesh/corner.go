package mesh

// Next returns the corner that follows c inside its triangle.
func Next(c int) int {
	return 3*(c/3) + (c+1)%3
}

// Prev returns the corner that precedes c inside its triangle.
func Prev(c int) int {
	return 3*(c/3) + (c+2)%3
}

// TriangleOf returns the triangle a corner belongs to.
func TriangleOf(c int) int {
	return c / 3
}

// AdjacencyKind distinguishes the possible contents of an opposite-corner slot.
type AdjacencyKind uint8

const (
	NoAdjacency      AdjacencyKind = iota // boundary edge, never consulted by ring walks
	RealAdjacency                         // genuine opposite corner on the neighbouring triangle
	ClosureAdjacency                      // synthetic link that closes a ring walk at the boundary
)

func (k AdjacencyKind) String() string {
	switch k {
	case NoAdjacency:
		return "none"
	case RealAdjacency:
		return "real"
	case ClosureAdjacency:
		return "closure"
	default:
		return "unknown"
	}
}

// Adjacency is the content of an opposite-corner slot. Corner is only
// meaningful when Kind is RealAdjacency or ClosureAdjacency.
type Adjacency struct {
	Kind   AdjacencyKind `json:"kind"`
	Corner int           `json:"corner"`
}

// IsReal reports whether the slot holds a genuine opposite corner.
func (a Adjacency) IsReal() bool { return a.Kind == RealAdjacency }

// IsClosure reports whether the slot holds a boundary-closure link.
func (a Adjacency) IsClosure() bool { return a.Kind == ClosureAdjacency }
