// Package graph defines the undirected graphs whose colorings chromatree
// explores, along with their canonical JSON serialization.
//
// A graph is a set of node identifiers 0..n-1 and a set of undirected edges
// between distinct nodes. The package enforces the structural invariants the
// rest of the engine relies on (no self-loops, no duplicate edges, endpoints
// in range) but does not judge graph semantics: disconnected and
// multi-component graphs are accepted.
package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeCount is returned by [New] when the node count is < 1.
	ErrInvalidNodeCount = errors.New("node count must be at least 1")

	// ErrSelfLoop is returned by [Graph.AddEdge] when both endpoints are the
	// same node. Self-loops can never be properly colored and are rejected.
	ErrSelfLoop = errors.New("edge endpoints must be distinct")

	// ErrEdgeOutOfRange is returned by [Graph.AddEdge] and [Graph.Validate]
	// when an edge references a node outside 0..n-1.
	ErrEdgeOutOfRange = errors.New("edge references non-existent node")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the edge already
	// exists. The edge set is a set, not a multiset.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Edge is an undirected edge between two distinct nodes.
// Edges are stored normalized with U < V so that {2,5} and {5,2} compare equal.
type Edge struct {
	U int `json:"u"`
	V int `json:"v"`
}

// Normalize returns the edge with its endpoints ordered U < V.
func (e Edge) Normalize() Edge {
	if e.U > e.V {
		return Edge{U: e.V, V: e.U}
	}
	return e
}

// Graph is an undirected graph over nodes 0..n-1.
//
// The zero value is not usable - use New to create a valid Graph.
// Graph is not safe for concurrent mutation without external synchronization;
// once built it is read-only and may be shared freely.
type Graph struct {
	nodeCount int
	edges     []Edge
}

// New creates a graph with the given number of nodes and no edges.
// Returns ErrInvalidNodeCount if nodes < 1.
func New(nodes int) (*Graph, error) {
	if nodes < 1 {
		return nil, ErrInvalidNodeCount
	}
	return &Graph{nodeCount: nodes}, nil
}

// NodeCount returns the number of nodes n. Node identifiers are 0..n-1.
func (g *Graph) NodeCount() int { return g.nodeCount }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edges returns the edge set in normalized, sorted order.
// The returned slice is a copy and safe to modify.
func (g *Graph) Edges() []Edge {
	out := slices.Clone(g.edges)
	slices.SortFunc(out, compareEdges)
	return out
}

// AddEdge adds the undirected edge {u, v}.
// Returns ErrSelfLoop if u == v, ErrEdgeOutOfRange if either endpoint is
// outside 0..n-1, or ErrDuplicateEdge if the edge already exists.
func (g *Graph) AddEdge(u, v int) error {
	if u == v {
		return ErrSelfLoop
	}
	if u < 0 || u >= g.nodeCount || v < 0 || v >= g.nodeCount {
		return ErrEdgeOutOfRange
	}
	e := Edge{U: u, V: v}.Normalize()
	if slices.Contains(g.edges, e) {
		return ErrDuplicateEdge
	}
	g.edges = append(g.edges, e)
	return nil
}

// Validate checks the structural invariants: every edge references existing
// nodes, has distinct endpoints, and appears at most once.
// A graph built exclusively through New and AddEdge always validates; this
// exists for graphs decoded from external input.
func (g *Graph) Validate() error {
	if g.nodeCount < 1 {
		return ErrInvalidNodeCount
	}
	seen := make(map[Edge]bool, len(g.edges))
	for _, e := range g.edges {
		if e.U == e.V {
			return ErrSelfLoop
		}
		if e.U < 0 || e.U >= g.nodeCount || e.V < 0 || e.V >= g.nodeCount {
			return ErrEdgeOutOfRange
		}
		if seen[e.Normalize()] {
			return ErrDuplicateEdge
		}
		seen[e.Normalize()] = true
	}
	return nil
}

func compareEdges(a, b Edge) int {
	if a.U != b.U {
		return a.U - b.U
	}
	return a.V - b.V
}
