// Package layout assigns 2-D coordinates to every node of a decision tree
// for rendering.
//
// The algorithm is a two-pass recursion. The first pass (post-order) computes
// each subtree's width in leaf units: a leaf is one unit wide, an internal
// node as wide as the sum of its children. The second pass (pre-order) places
// children left to right from the parent's left edge and centers each node
// over its own span, with y growing by a fixed step per level.
//
// Children are always placed in increasing color order, so two layouts of the
// same tree produce identical coordinates.
package layout

import (
	"github.com/chromatree/chromatree/pkg/errors"
	"github.com/chromatree/chromatree/pkg/tree"
)

// Defaults for the geometric spacing, in pixels.
const (
	DefaultLeafGap     = 50.0
	DefaultLevelHeight = 70.0
)

// Options configures a layout computation.
type Options struct {
	// LeafGap is the horizontal distance between adjacent leaves.
	LeafGap float64
	// LevelHeight is the vertical distance between tree levels.
	LevelHeight float64
	// NodeCeiling refuses layouts over this node count when > 0;
	// defaults to the tree builder's ceiling.
	NodeCeiling int
}

func (o Options) withDefaults() Options {
	if o.LeafGap <= 0 {
		o.LeafGap = DefaultLeafGap
	}
	if o.LevelHeight <= 0 {
		o.LevelHeight = DefaultLevelHeight
	}
	if o.NodeCeiling <= 0 {
		o.NodeCeiling = tree.DefaultNodeCeiling
	}
	return o
}

// Point is a node position. X grows rightward, Y downward from the root.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout maps every node of one tree to its position.
type Layout struct {
	positions map[*tree.Node]Point
	widths    map[*tree.Node]float64
	opts      Options

	// Width is the horizontal extent of the leaf row.
	Width float64
	// Height is the vertical extent, LevelHeight per level below the root.
	Height float64
}

// Pos returns the position of a node from the laid-out tree.
// The second return is false for nodes that were not part of the layout.
func (l *Layout) Pos(n *tree.Node) (Point, bool) {
	p, ok := l.positions[n]
	return p, ok
}

// Len returns the number of positioned nodes.
func (l *Layout) Len() int { return len(l.positions) }

// Compute lays out every node of the tree.
//
// Fails with LAYOUT_TOO_LARGE if the tree's node count exceeds the configured
// ceiling; no partial layout is returned.
func Compute(t *tree.Tree, opts Options) (*Layout, error) {
	if t == nil || t.Root == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "tree is nil")
	}
	opts = opts.withDefaults()
	if total := t.TotalNodes(); total > opts.NodeCeiling {
		return nil, errors.New(errors.ErrCodeLayoutTooLarge,
			"layout for %d nodes exceeds ceiling %d", total, opts.NodeCeiling)
	}

	l := &Layout{
		positions: make(map[*tree.Node]Point, t.TotalNodes()),
		widths:    make(map[*tree.Node]float64, t.TotalNodes()),
		opts:      opts,
	}

	l.Width = subtreeWidth(t.Root, opts.LeafGap, l.widths)
	l.Height = float64(t.Depth()) * opts.LevelHeight

	l.place(t.Root, 0)
	return l, nil
}

// subtreeWidth computes widths post-order: a leaf occupies one gap unit, an
// internal node the sum of its children.
func subtreeWidth(n *tree.Node, leafGap float64, widths map[*tree.Node]float64) float64 {
	if len(n.Children) == 0 {
		widths[n] = leafGap
		return leafGap
	}
	total := 0.0
	for _, c := range n.Children {
		total += subtreeWidth(c, leafGap, widths)
	}
	widths[n] = total
	return total
}

// place assigns positions pre-order. left is the subtree's left edge; the
// node itself is centered over its span.
func (l *Layout) place(n *tree.Node, left float64) {
	l.positions[n] = Point{
		X: left + l.widths[n]/2,
		Y: float64(n.Depth) * l.opts.LevelHeight,
	}
	childLeft := left
	for _, c := range n.Children {
		l.place(c, childLeft)
		childLeft += l.widths[c]
	}
}

// Span returns the x-range [left, right) occupied by a node's subtree.
func (l *Layout) Span(n *tree.Node) (left, right float64) {
	p := l.positions[n]
	w := l.widths[n]
	return p.X - w/2, p.X + w/2
}
