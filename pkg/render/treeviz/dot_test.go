package treeviz

import (
	"strings"
	"testing"

	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/tree"
	"github.com/chromatree/chromatree/pkg/tree/layout"
)

func builtTree(t *testing.T) (*tree.Tree, *layout.Layout) {
	t.Helper()
	g, err := graph.New(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(0, 1); err != nil {
		t.Fatal(err)
	}
	tr, err := tree.Build(g, 2, tree.Options{})
	if err != nil {
		t.Fatal(err)
	}
	l, err := layout.Compute(tr, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return tr, l
}

func TestToDOT(t *testing.T) {
	tr, l := builtTree(t)

	dot, err := ToDOT(tr, l, Options{ColorLeaves: true})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	if !strings.HasPrefix(dot, "graph coloring_tree {") {
		t.Errorf("missing graph header:\n%s", dot)
	}
	if !strings.Contains(dot, `"root"`) {
		t.Error("missing root node")
	}
	// 2 nodes, 2 colors: 7 tree nodes, 6 parent-child edges
	if got := strings.Count(dot, " -- "); got != 6 {
		t.Errorf("edge count = %d, want 6", got)
	}
	if !strings.Contains(dot, "!\"") {
		t.Error("positions are not pinned")
	}
	// {0,1} and {1,0} are proper; {0,0} and {1,1} are not
	if strings.Count(dot, fillValid) != 2 {
		t.Errorf("valid leaf fills:\n%s", dot)
	}
	if strings.Count(dot, fillInvalid) != 2 {
		t.Errorf("invalid leaf fills:\n%s", dot)
	}
	// Color names label the branches
	if !strings.Contains(dot, "RED") || !strings.Contains(dot, "BLUE") {
		t.Errorf("missing color labels:\n%s", dot)
	}
}

func TestToDOTWithoutLeafColoring(t *testing.T) {
	tr, l := builtTree(t)

	dot, err := ToDOT(tr, l, Options{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	if strings.Contains(dot, fillValid) || strings.Contains(dot, fillInvalid) {
		t.Error("leaves colored despite ColorLeaves=false")
	}
}

func TestToDOTTruncation(t *testing.T) {
	tr, l := builtTree(t)

	dot, err := ToDOT(tr, l, Options{MaxDepth: 1})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	// Depth-1 nodes summarize their hidden subtrees: 2 leaves each.
	if !strings.Contains(dot, "+2") {
		t.Errorf("missing truncation summary:\n%s", dot)
	}
	if got := strings.Count(dot, " -- "); got != 2 {
		t.Errorf("edge count after truncation = %d, want 2", got)
	}
}

func TestToDOTRejectsNil(t *testing.T) {
	tr, l := builtTree(t)
	if _, err := ToDOT(nil, l, Options{}); err == nil {
		t.Error("nil tree accepted")
	}
	if _, err := ToDOT(tr, nil, Options{}); err == nil {
		t.Error("nil layout accepted")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>
<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg">
<g></g>
</svg>`)
	out := normalizeViewBox(in)
	if !strings.Contains(string(out), `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized:\n%s", out)
	}
	if !strings.Contains(string(out), `width="100" height="50"`) {
		t.Errorf("pixel dimensions missing:\n%s", out)
	}

	// SVG without a viewBox passes through untouched
	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Error("plain SVG modified")
	}
}
