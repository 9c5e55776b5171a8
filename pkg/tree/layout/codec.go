package layout

import (
	"encoding/json"
	"fmt"

	"github.com/chromatree/chromatree/pkg/tree"
)

// layoutDoc is the serialization form of a layout. Positions and
// subtree widths are stored in the tree's pre-order, so a decoded
// layout is only meaningful against a tree with identical structure.
type layoutDoc struct {
	LeafGap     float64   `json:"leaf_gap"`
	LevelHeight float64   `json:"level_height"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Points      []Point   `json:"points"`
	Widths      []float64 `json:"widths"`
}

// Marshal converts a layout to JSON bytes. t must be the tree the
// layout was computed for.
func Marshal(l *Layout, t *tree.Tree) ([]byte, error) {
	if l == nil || t == nil || t.Root == nil {
		return nil, fmt.Errorf("layout and tree are required")
	}
	doc := layoutDoc{
		LeafGap:     l.opts.LeafGap,
		LevelHeight: l.opts.LevelHeight,
		Width:       l.Width,
		Height:      l.Height,
		Points:      make([]Point, 0, l.Len()),
		Widths:      make([]float64, 0, l.Len()),
	}
	for n := range t.Walk() {
		p, ok := l.positions[n]
		if !ok {
			return nil, fmt.Errorf("layout does not cover node at depth %d", n.Depth)
		}
		doc.Points = append(doc.Points, p)
		doc.Widths = append(doc.Widths, l.widths[n])
	}
	return json.Marshal(doc)
}

// Unmarshal reconstructs a layout from Marshal output, binding it to t.
// Fails if the node count does not match the tree.
func Unmarshal(data []byte, t *tree.Tree) (*Layout, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("tree is required")
	}
	var doc layoutDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(doc.Points) != t.TotalNodes() || len(doc.Widths) != t.TotalNodes() {
		return nil, fmt.Errorf("layout covers %d nodes, tree has %d", len(doc.Points), t.TotalNodes())
	}

	l := &Layout{
		positions: make(map[*tree.Node]Point, len(doc.Points)),
		widths:    make(map[*tree.Node]float64, len(doc.Widths)),
		opts:      Options{LeafGap: doc.LeafGap, LevelHeight: doc.LevelHeight},
		Width:     doc.Width,
		Height:    doc.Height,
	}
	i := 0
	for n := range t.Walk() {
		l.positions[n] = doc.Points[i]
		l.widths[n] = doc.Widths[i]
		i++
	}
	return l, nil
}
