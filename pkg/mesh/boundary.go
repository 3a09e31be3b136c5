package mesh

import (
	"errors"
	"fmt"
)

// ErrTopologyInconsistent is returned when boundary edges cannot be chained
// into closed loops.
var ErrTopologyInconsistent = errors.New("mesh: topology inconsistent")

// Boundaries holds the boundary loops of a mesh. Each loop lists its
// vertices in the orientation of the triangles, so the mesh interior lies to
// the left when walking the loop; the closing edge from the last vertex back
// to the first is implicit.
type Boundaries struct {
	Loops [][]int `json:"loops"`
}

// Len returns the number of loops.
func (b *Boundaries) Len() int { return len(b.Loops) }

// assembleBoundaries chains the boundary edges of t into loops. Loops are
// started from the first unvisited edge in boundary-edge order and follow an
// index of outgoing edges per vertex.
func assembleBoundaries(t *Topology) (*Boundaries, error) {
	edges := t.boundaryEdges
	outgoing := make(map[int][]int, len(edges))
	for i, e := range edges {
		outgoing[e.From] = append(outgoing[e.From], i)
	}
	visited := make([]bool, len(edges))

	b := &Boundaries{Loops: [][]int{}}
	for i, e := range edges {
		if visited[i] {
			continue
		}
		visited[i] = true
		start := e.From
		loop := []int{start}
		cur := e.To
		for cur != start {
			next := -1
			for _, j := range outgoing[cur] {
				if !visited[j] {
					next = j
					break
				}
			}
			if next < 0 {
				return nil, fmt.Errorf("%w: boundary loop from vertex %d stops at vertex %d", ErrTopologyInconsistent, start, cur)
			}
			visited[next] = true
			loop = append(loop, cur)
			cur = edges[next].To
		}
		b.Loops = append(b.Loops, loop)
	}
	return b, nil
}
