// Package tree builds and owns the complete labeled decision tree of a
// coloring problem.
//
// The tree has branching factor k (one child per color, ordered by color
// value) and depth n (one level per node of the graph). Internal nodes carry
// the partial assignment chosen along the path from the root; leaves carry a
// complete assignment and its classification. No pruning happens at internal
// nodes even when a prefix already forces a conflict: internal nodes mean
// "partial assignment, not yet evaluated", matching an exhaustive explorer.
//
// The tree is immutable once built, with one exception: the enumeration
// driver annotates leaf provenance after cross-checking against the external
// solver.
package tree

import (
	"iter"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/graph"
)

// Kind classifies a tree node by its position and, for leaves, its verdict.
type Kind int

const (
	// KindRoot is the depth-0 node with an empty path assignment.
	KindRoot Kind = iota
	// KindInternal is a node at 0 < depth < n holding a partial assignment.
	KindInternal
	// KindValidLeaf is a depth-n node whose assignment violates no edge.
	KindValidLeaf
	// KindInvalidLeaf is a depth-n node with at least one violated edge.
	KindInvalidLeaf
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindInternal:
		return "internal"
	case KindValidLeaf:
		return "valid"
	case KindInvalidLeaf:
		return "invalid"
	default:
		return "unknown"
	}
}

// IsLeaf reports whether the kind is a leaf kind.
func (k Kind) IsLeaf() bool { return k == KindValidLeaf || k == KindInvalidLeaf }

// Provenance records how a leaf's validity was established.
type Provenance int

const (
	// ProvenanceNone means enumeration has not run for this tree.
	ProvenanceNone Provenance = iota
	// ProvenanceLocalOnly means only the local classifier vouches for the
	// leaf. After a fixed-point enumeration this state on a valid leaf is a
	// reconciliation mismatch.
	ProvenanceLocalOnly
	// ProvenanceSolverConfirmed means the external solver independently
	// reported this leaf's assignment.
	ProvenanceSolverConfirmed
)

// String returns the lowercase name of the provenance.
func (p Provenance) String() string {
	switch p {
	case ProvenanceLocalOnly:
		return "local-only"
	case ProvenanceSolverConfirmed:
		return "solver-confirmed"
	default:
		return "none"
	}
}

// Node is one node of the decision tree.
//
// Children are indexed by color value and fully populated on every non-leaf
// node, so iteration order is always increasing color order.
type Node struct {
	Depth    int
	Path     coloring.Assignment
	Children []*Node
	Kind     Kind

	// Leaf-only fields.
	ViolatedEdges []graph.Edge
	Provenance    Provenance
}

// IsLeaf reports whether the node is at full depth.
func (n *Node) IsLeaf() bool { return n.Kind.IsLeaf() }

// Tree is a fully built, classified decision tree for one (graph, colors)
// configuration.
type Tree struct {
	Root   *Node
	Graph  *graph.Graph
	Colors int

	// Cached census, filled during the build.
	totalNodes    int
	validLeaves   int
	invalidLeaves int
}

// TotalNodes returns the node count across all levels: sum of k^d for
// d = 0..n.
func (t *Tree) TotalNodes() int { return t.totalNodes }

// LeafCount returns the number of leaves, k^n.
func (t *Tree) LeafCount() int { return t.validLeaves + t.invalidLeaves }

// ValidLeafCount returns the number of constraint-satisfying leaves.
func (t *Tree) ValidLeafCount() int { return t.validLeaves }

// InvalidLeafCount returns the number of constraint-violating leaves.
func (t *Tree) InvalidLeafCount() int { return t.invalidLeaves }

// Depth returns the leaf depth, which equals the graph's node count.
func (t *Tree) Depth() int { return t.Graph.NodeCount() }

// Walk yields every node in pre-order, children in increasing color order.
func (t *Tree) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		walk(t.Root, yield)
	}
}

func walk(n *Node, yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}

// Leaves yields every leaf in increasing assignment order.
func (t *Tree) Leaves() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := range t.Walk() {
			if n.IsLeaf() {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// ValidLeaves yields every valid leaf in increasing assignment order.
func (t *Tree) ValidLeaves() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := range t.Leaves() {
			if n.Kind == KindValidLeaf {
				if !yield(n) {
					return
				}
			}
		}
	}
}
