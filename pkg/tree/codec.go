package tree

import (
	"encoding/json"
	"fmt"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/graph"
)

// treeDoc is the serialization form of a tree. Structure and internal
// nodes are fully determined by (nodes, colors), so only the per-leaf
// verdicts need to travel: the violated edge set of each leaf in
// pre-order, nil meaning a valid leaf. Provenance is never serialized;
// a decoded tree always starts unannotated.
type treeDoc struct {
	Nodes  int            `json:"nodes"`
	Colors int            `json:"colors"`
	Edges  []graph.Edge   `json:"edges"`
	Leaves [][]graph.Edge `json:"leaves"`
}

// MarshalTree converts a tree to JSON bytes.
func MarshalTree(t *Tree) ([]byte, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	doc := treeDoc{
		Nodes:  t.Graph.NodeCount(),
		Colors: t.Colors,
		Edges:  t.Graph.Edges(),
		Leaves: make([][]graph.Edge, 0, t.LeafCount()),
	}
	for leaf := range t.Leaves() {
		doc.Leaves = append(doc.Leaves, leaf.ViolatedEdges)
	}
	return json.Marshal(doc)
}

// UnmarshalTree reconstructs a tree from MarshalTree output without
// re-running classification.
func UnmarshalTree(data []byte) (*Tree, error) {
	var doc treeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	if doc.Colors < 1 {
		return nil, fmt.Errorf("invalid color count %d", doc.Colors)
	}

	g, err := graph.New(doc.Nodes)
	if err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(e.U, e.V); err != nil {
			return nil, fmt.Errorf("invalid edge {%d,%d}: %w", e.U, e.V, err)
		}
	}

	total, ok := CountNodes(doc.Nodes, doc.Colors, DefaultNodeCeiling)
	if !ok {
		return nil, fmt.Errorf("tree for n=%d k=%d exceeds node ceiling", doc.Nodes, doc.Colors)
	}

	t := &Tree{Graph: g, Colors: doc.Colors, totalNodes: total}
	leafIdx := 0
	t.Root = t.decode(coloring.Assignment{}, doc.Nodes, doc.Leaves, &leafIdx)
	if t.Root == nil {
		return nil, fmt.Errorf("leaf count %d does not match n=%d k=%d", len(doc.Leaves), doc.Nodes, doc.Colors)
	}
	if leafIdx != len(doc.Leaves) {
		return nil, fmt.Errorf("leaf count %d does not match n=%d k=%d", len(doc.Leaves), doc.Nodes, doc.Colors)
	}
	return t, nil
}

// decode mirrors the build recursion but takes leaf verdicts from the
// document instead of classifying. Returns nil if the document runs out
// of leaves.
func (t *Tree) decode(path coloring.Assignment, n int, leaves [][]graph.Edge, leafIdx *int) *Node {
	depth := len(path)
	node := &Node{Depth: depth, Path: path}

	if depth == n {
		if *leafIdx >= len(leaves) {
			return nil
		}
		violated := leaves[*leafIdx]
		*leafIdx++
		if len(violated) == 0 {
			node.Kind = KindValidLeaf
			t.validLeaves++
		} else {
			node.Kind = KindInvalidLeaf
			node.ViolatedEdges = violated
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
		child := t.decode(path.Extend(c), n, leaves, leafIdx)
		if child == nil {
			return nil
		}
		node.Children[c] = child
	}
	return node
}
