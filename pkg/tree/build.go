package tree

import (
	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/errors"
	"github.com/chromatree/chromatree/pkg/graph"
)

// DefaultNodeCeiling bounds the total node count of a build.
// The full tree for n nodes and k colors has sum of k^d (d = 0..n) nodes;
// anything past this ceiling is refused with TREE_TOO_LARGE instead of
// exhausting memory. 10 nodes at 4 colors is ~1.4M tree nodes, which still
// fits comfortably under this bound.
const DefaultNodeCeiling = 2_000_000

// Options configures a tree build.
type Options struct {
	// NodeCeiling overrides DefaultNodeCeiling when > 0.
	NodeCeiling int
}

func (o Options) ceiling() int {
	if o.NodeCeiling > 0 {
		return o.NodeCeiling
	}
	return DefaultNodeCeiling
}

// CountNodes returns the total node count of the complete tree for n graph
// nodes and k colors, without building it. The second return is false if the
// count exceeds limit (the exact total is not computed past the limit, to
// avoid overflow).
func CountNodes(n, k, limit int) (int, bool) {
	total := 0
	level := 1 // k^0
	for d := 0; d <= n; d++ {
		// Guard both the addition and the multiplication against exceeding
		// the limit before performing them, so the count can never wrap for
		// huge k and slip past the ceiling.
		if level > limit-total {
			return limit + 1, false
		}
		total += level
		if d < n {
			if level > limit/k {
				return limit + 1, false
			}
			level *= k
		}
	}
	return total, true
}

// Build constructs the complete classified decision tree for the graph with
// the given number of colors.
//
// Every complete assignment becomes a leaf, classified by
// [coloring.Classify] against the graph's edge set. Two builds for the same
// inputs produce identical trees.
//
// Fails with INVALID_CONFIGURATION if colors < 1 or the graph's invariants
// do not hold, and with TREE_TOO_LARGE if the total node count would exceed
// the configured ceiling. On failure no partial tree is returned.
func Build(g *graph.Graph, colors int, opts Options) (*Tree, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "graph is nil")
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "invalid graph")
	}
	if colors < 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "color count must be at least 1, got %d", colors)
	}

	n := g.NodeCount()
	ceiling := opts.ceiling()
	total, ok := CountNodes(n, colors, ceiling)
	if !ok {
		return nil, errors.New(errors.ErrCodeTreeTooLarge,
			"tree for n=%d k=%d exceeds node ceiling %d", n, colors, ceiling)
	}

	t := &Tree{Graph: g, Colors: colors, totalNodes: total}
	edges := g.Edges()
	t.Root = t.expand(coloring.Assignment{}, n, edges)
	return t, nil
}

// expand grows the subtree below the given partial assignment.
// At full depth the assignment is classified and the node becomes a leaf.
func (t *Tree) expand(path coloring.Assignment, n int, edges []graph.Edge) *Node {
	depth := len(path)
	node := &Node{Depth: depth, Path: path}

	if depth == n {
		r := coloring.Classify(path, edges)
		if r.Valid {
			node.Kind = KindValidLeaf
			t.validLeaves++
		} else {
			node.Kind = KindInvalidLeaf
			node.ViolatedEdges = r.ViolatedEdges
			t.invalidLeaves++
		}
		return node
	}

	if depth == 0 {
		node.Kind = KindRoot
	} else {
		node.Kind = KindInternal
	}
	node.Children = make([]*Node, t.Colors)
	for c := 0; c < t.Colors; c++ {
		node.Children[c] = t.expand(path.Extend(c), n, edges)
	}
	return node
}

// Annotate records provenance on every leaf: valid leaves whose assignment
// appears in confirmed become solver-confirmed, all other leaves local-only.
// This is the only mutation permitted after a build; the enumeration driver
// calls it once per completed run.
func (t *Tree) Annotate(confirmed map[string]bool) {
	for leaf := range t.Leaves() {
		if confirmed[leaf.Path.Key()] {
			leaf.Provenance = ProvenanceSolverConfirmed
		} else {
			leaf.Provenance = ProvenanceLocalOnly
		}
	}
}
