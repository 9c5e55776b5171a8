package tree

import (
	"math"
	"testing"

	"github.com/chromatree/chromatree/pkg/errors"
	"github.com/chromatree/chromatree/pkg/graph"
)

func triangle(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(3)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range [][2]int{{0, 1}, {1, 2}, {0, 2}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestBuildTriangle(t *testing.T) {
	// Scenario: triangle with 3 colors has exactly the 6 permutations of
	// {0,1,2} as proper colorings, and 27 leaves total.
	tr, err := Build(triangle(t), 3, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := tr.LeafCount(); got != 27 {
		t.Errorf("LeafCount = %d, want 27", got)
	}
	if got := tr.ValidLeafCount(); got != 6 {
		t.Errorf("ValidLeafCount = %d, want 6", got)
	}
	if got := tr.InvalidLeafCount(); got != 21 {
		t.Errorf("InvalidLeafCount = %d, want 21", got)
	}
	// 1 + 3 + 9 + 27
	if got := tr.TotalNodes(); got != 40 {
		t.Errorf("TotalNodes = %d, want 40", got)
	}

	for leaf := range tr.ValidLeaves() {
		seen := map[int]bool{}
		for _, c := range leaf.Path {
			seen[c] = true
		}
		if len(seen) != 3 {
			t.Errorf("valid leaf %v is not a permutation of {0,1,2}", leaf.Path)
		}
	}
}

func TestBuildIsolatedNodes(t *testing.T) {
	// Scenario: two isolated nodes, 3 colors: all 9 leaves valid.
	g, _ := graph.New(2)
	tr, err := Build(g, 3, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tr.ValidLeafCount() != 9 || tr.InvalidLeafCount() != 0 {
		t.Errorf("valid/invalid = %d/%d, want 9/0", tr.ValidLeafCount(), tr.InvalidLeafCount())
	}
}

func TestBuildSingleEdge(t *testing.T) {
	// Scenario: one edge, 2 colors: (0,1) and (1,0) valid, (0,0) and (1,1) not.
	g, _ := graph.New(2)
	g.AddEdge(0, 1)
	tr, err := Build(g, 2, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tr.ValidLeafCount() != 2 || tr.InvalidLeafCount() != 2 {
		t.Errorf("valid/invalid = %d/%d, want 2/2", tr.ValidLeafCount(), tr.InvalidLeafCount())
	}

	wantValid := map[string]bool{"0,1": true, "1,0": true}
	for leaf := range tr.ValidLeaves() {
		if !wantValid[leaf.Path.Key()] {
			t.Errorf("unexpected valid leaf %v", leaf.Path)
		}
	}
}

func TestBuildCounts(t *testing.T) {
	// Node and leaf counts must match the closed forms for a range of n, k.
	for n := 1; n <= 6; n++ {
		for k := 1; k <= 3; k++ {
			g, _ := graph.New(n)
			tr, err := Build(g, k, Options{})
			if err != nil {
				t.Fatalf("Build(n=%d,k=%d): %v", n, k, err)
			}

			leaves, total := 1, 0
			level := 1
			for d := 0; d <= n; d++ {
				total += level
				if d == n {
					leaves = level
				}
				level *= k
			}
			if tr.LeafCount() != leaves {
				t.Errorf("n=%d k=%d: leaves = %d, want %d", n, k, tr.LeafCount(), leaves)
			}
			if tr.TotalNodes() != total {
				t.Errorf("n=%d k=%d: total = %d, want %d", n, k, tr.TotalNodes(), total)
			}

			walked := 0
			for range tr.Walk() {
				walked++
			}
			if walked != total {
				t.Errorf("n=%d k=%d: walked %d nodes, want %d", n, k, walked, total)
			}
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(triangle(t), 3, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(triangle(t), 3, Options{})
	if err != nil {
		t.Fatal(err)
	}

	var pathsA, pathsB []string
	for n := range a.Walk() {
		pathsA = append(pathsA, n.Path.Key()+":"+n.Kind.String())
	}
	for n := range b.Walk() {
		pathsB = append(pathsB, n.Path.Key()+":"+n.Kind.String())
	}
	if len(pathsA) != len(pathsB) {
		t.Fatalf("walk lengths differ: %d vs %d", len(pathsA), len(pathsB))
	}
	for i := range pathsA {
		if pathsA[i] != pathsB[i] {
			t.Fatalf("node %d differs: %q vs %q", i, pathsA[i], pathsB[i])
		}
	}
}

func TestBuildChildrenOrdered(t *testing.T) {
	tr, err := Build(triangle(t), 3, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for n := range tr.Walk() {
		for c, child := range n.Children {
			if got := child.Path[len(child.Path)-1]; got != c {
				t.Fatalf("child %d of %v has last color %d", c, n.Path, got)
			}
		}
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	g, _ := graph.New(3)

	if _, err := Build(g, 0, Options{}); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("k=0: %v, want INVALID_CONFIGURATION", err)
	}
	if _, err := Build(nil, 2, Options{}); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("nil graph: %v, want INVALID_CONFIGURATION", err)
	}
}

func TestBuildCeiling(t *testing.T) {
	g, _ := graph.New(10)
	_, err := Build(g, 4, Options{NodeCeiling: 1000})
	if !errors.Is(err, errors.ErrCodeTreeTooLarge) {
		t.Errorf("Build over ceiling = %v, want TREE_TOO_LARGE", err)
	}
}

func TestCountNodes(t *testing.T) {
	tests := []struct {
		n, k, limit int
		want        int
		wantOK      bool
	}{
		{3, 3, 1000, 40, true},
		{2, 2, 1000, 7, true},
		{1, 1, 1000, 2, true},
		{10, 4, 1000, 0, false},
		{60, 10, 1 << 30, 0, false},            // would overflow without the guard
		{1, math.MaxInt, DefaultNodeCeiling, 0, false}, // single level already past the limit
		{2, math.MaxInt / 2, 1000, 0, false},
	}
	for _, tt := range tests {
		got, ok := CountNodes(tt.n, tt.k, tt.limit)
		if ok != tt.wantOK {
			t.Errorf("CountNodes(%d,%d,%d) ok = %v, want %v", tt.n, tt.k, tt.limit, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("CountNodes(%d,%d,%d) = %d, want %d", tt.n, tt.k, tt.limit, got, tt.want)
		}
		if got < 0 {
			t.Errorf("CountNodes(%d,%d,%d) = %d, count must never go negative", tt.n, tt.k, tt.limit, got)
		}
	}
}

func TestBuildRefusesHugeColorCount(t *testing.T) {
	// The per-level addition must not wrap past the ceiling check; a wrapped
	// negative total would send Build into an impossible allocation.
	g, _ := graph.New(1)
	_, err := Build(g, math.MaxInt, Options{})
	if !errors.Is(err, errors.ErrCodeTreeTooLarge) {
		t.Errorf("Build(n=1, k=MaxInt) = %v, want TREE_TOO_LARGE", err)
	}
}

func TestAnnotate(t *testing.T) {
	tr, err := Build(triangle(t), 3, Options{})
	if err != nil {
		t.Fatal(err)
	}

	confirmed := map[string]bool{"0,1,2": true, "2,1,0": true}
	tr.Annotate(confirmed)

	var solverConfirmed, localValid int
	for leaf := range tr.ValidLeaves() {
		switch leaf.Provenance {
		case ProvenanceSolverConfirmed:
			solverConfirmed++
		case ProvenanceLocalOnly:
			localValid++
		default:
			t.Errorf("leaf %v left unannotated", leaf.Path)
		}
	}
	if solverConfirmed != 2 || localValid != 4 {
		t.Errorf("confirmed/local = %d/%d, want 2/4", solverConfirmed, localValid)
	}
}

func TestInvalidLeafCarriesAllViolations(t *testing.T) {
	tr, err := Build(triangle(t), 3, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for leaf := range tr.Leaves() {
		if leaf.Path.Key() == "1,1,1" {
			if len(leaf.ViolatedEdges) != 3 {
				t.Errorf("monochrome leaf violated = %d edges, want all 3", len(leaf.ViolatedEdges))
			}
			return
		}
	}
	t.Fatal("leaf 1,1,1 not found")
}
