// Package treeviz renders classified decision trees to Graphviz DOT and
// image formats.
//
// Positions come from the layout package, pinned into the DOT output, so
// the rendered picture matches the deterministic two-pass layout instead
// of whatever Graphviz would compute on its own.
package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/tree"
	"github.com/chromatree/chromatree/pkg/tree/layout"
)

// Leaf fill colors by verdict.
const (
	fillValid    = "#c8e6c9" // green
	fillInvalid  = "#ffcdd2" // red
	fillInternal = "white"
)

// Options configures DOT generation.
type Options struct {
	// MaxDepth truncates rendering below this depth when > 0. Truncated
	// subtrees are summarized in their parent's label.
	MaxDepth int

	// ColorLeaves fills leaves green or red by verdict. When false all
	// nodes render white.
	ColorLeaves bool
}

// ToDOT converts a tree and its layout to Graphviz DOT. Node positions
// are pinned, so the output must be rendered with the neato engine.
func ToDOT(t *tree.Tree, l *layout.Layout, opts Options) (string, error) {
	if t == nil || t.Root == nil || l == nil {
		return "", fmt.Errorf("tree and layout are required")
	}

	var buf bytes.Buffer
	buf.WriteString("graph coloring_tree {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12, fixedsize=true, width=0.6];\n")
	buf.WriteString("\n")

	if err := writeNode(&buf, t.Root, l, opts); err != nil {
		return "", err
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func writeNode(buf *bytes.Buffer, n *tree.Node, l *layout.Layout, opts Options) error {
	pos, ok := l.Pos(n)
	if !ok {
		return fmt.Errorf("layout does not cover node %q", nodeID(n))
	}

	truncated := opts.MaxDepth > 0 && n.Depth == opts.MaxDepth && !n.IsLeaf()

	label := nodeLabel(n)
	if truncated {
		label += fmt.Sprintf("\\n+%d", subtreeCount(n)-1)
	}
	fill := fillInternal
	if opts.ColorLeaves {
		switch n.Kind {
		case tree.KindValidLeaf:
			fill = fillValid
		case tree.KindInvalidLeaf:
			fill = fillInvalid
		}
	}

	// Graphviz points grow upward; flip y so the root renders on top.
	fmt.Fprintf(buf, "  %q [label=%q, fillcolor=%q, pos=\"%.2f,%.2f!\"];\n",
		nodeID(n), label, fill, pos.X, l.Height-pos.Y)

	if truncated {
		return nil
	}
	for _, c := range n.Children {
		if err := writeNode(buf, c, l, opts); err != nil {
			return err
		}
		fmt.Fprintf(buf, "  %q -- %q;\n", nodeID(n), nodeID(c))
	}
	return nil
}

func nodeID(n *tree.Node) string {
	if n.Depth == 0 {
		return "root"
	}
	return n.Path.Key()
}

// nodeLabel shows the color chosen by the last branch on the node's path.
func nodeLabel(n *tree.Node) string {
	if n.Depth == 0 {
		return "·"
	}
	return coloring.Name(n.Path[len(n.Path)-1])
}

func subtreeCount(n *tree.Node) int {
	total := 1
	for _, c := range n.Children {
		total += subtreeCount(c)
	}
	return total
}

// RenderSVG renders pinned DOT to SVG using the neato engine.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG, normalizeViewBox)
}

// RenderPNG renders pinned DOT to PNG using the neato engine.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG, nil)
}

func render(dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out := buf.Bytes()
	if post != nil {
		out = post(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the drawing starts
// at origin with explicit pixel dimensions, which embeds cleanly in
// HTML.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
