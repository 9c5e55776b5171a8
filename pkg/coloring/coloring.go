// Package coloring defines label assignments over a graph's nodes and the
// pure classifier that decides whether a complete assignment satisfies the
// coloring constraints.
//
// The classifier is the single source of truth for validity: the tree builder
// uses it to classify every leaf, and the enumeration driver uses it to
// re-validate solver-reported colorings before trusting them.
package coloring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chromatree/chromatree/pkg/graph"
)

// Unassigned is the sentinel for a not-yet-decided position in a partial
// assignment.
const Unassigned = -1

// Assignment is an ordered sequence of color choices, one per node.
// A partial assignment covers a prefix of the nodes (or uses Unassigned);
// a complete assignment has a color in [0, k) at every position.
type Assignment []int

// Complete reports whether every position holds a decided color.
func (a Assignment) Complete() bool {
	return !slices.Contains(a, Unassigned)
}

// InDomain reports whether every decided color lies in [0, colors).
func (a Assignment) InDomain(colors int) bool {
	for _, c := range a {
		if c != Unassigned && (c < 0 || c >= colors) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the assignment.
func (a Assignment) Clone() Assignment { return slices.Clone(a) }

// Extend returns a new assignment with one more color choice appended.
// The receiver is not modified.
func (a Assignment) Extend(color int) Assignment {
	out := make(Assignment, len(a)+1)
	copy(out, a)
	out[len(a)] = color
	return out
}

// Key returns a canonical string form ("0,2,1") usable as a map key for
// exclusion sets and cache keys.
func (a Assignment) Key() string {
	parts := make([]string, len(a))
	for i, c := range a {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return strings.Join(parts, ",")
}

// Result is the outcome of classifying a complete assignment.
type Result struct {
	// Valid is true iff no edge has equal colors at both endpoints.
	Valid bool

	// ViolatedEdges lists every edge whose endpoints share a color, not just
	// the first. Presentation layers need all conflicts.
	ViolatedEdges []graph.Edge
}

// Classify evaluates a complete assignment against an edge set.
//
// It is a pure function: deterministic, no shared state, O(len(edges)).
// The result is invariant under edge-list permutation (violated edges are
// reported in normalized sorted order) and under consistent node relabeling.
// Positions holding Unassigned are treated as conflicting with nothing;
// callers that require completeness should check [Assignment.Complete] first.
func Classify(a Assignment, edges []graph.Edge) Result {
	var violated []graph.Edge
	for _, e := range edges {
		if e.U >= len(a) || e.V >= len(a) {
			continue
		}
		cu, cv := a[e.U], a[e.V]
		if cu == Unassigned || cv == Unassigned {
			continue
		}
		if cu == cv {
			violated = append(violated, e.Normalize())
		}
	}
	slices.SortFunc(violated, func(x, y graph.Edge) int {
		if x.U != y.U {
			return x.U - y.U
		}
		return x.V - y.V
	})
	return Result{Valid: len(violated) == 0, ViolatedEdges: violated}
}

// Conflict describes one violated edge for presentation: both endpoints and
// the color they share.
type Conflict struct {
	Edge  graph.Edge `json:"edge"`
	Color int        `json:"color"`
}

// Explain converts a classification result into per-conflict explanation
// data: each violated edge with the color both endpoints received.
func Explain(a Assignment, r Result) []Conflict {
	out := make([]Conflict, len(r.ViolatedEdges))
	for i, e := range r.ViolatedEdges {
		out[i] = Conflict{Edge: e, Color: a[e.U]}
	}
	return out
}
