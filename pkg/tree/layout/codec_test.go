package layout

import (
	"testing"

	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/tree"
)

func TestLayoutCodecRoundTrip(t *testing.T) {
	g, err := graph.New(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(0, 1); err != nil {
		t.Fatal(err)
	}
	tr, err := tree.Build(g, 3, tree.Options{})
	if err != nil {
		t.Fatal(err)
	}
	computed, err := Compute(tr, Options{LeafGap: 40, LevelHeight: 60})
	if err != nil {
		t.Fatal(err)
	}

	data, err := Marshal(computed, tr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := Unmarshal(data, tr)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Width != computed.Width || decoded.Height != computed.Height {
		t.Errorf("extent = %v×%v, want %v×%v", decoded.Width, decoded.Height, computed.Width, computed.Height)
	}
	if decoded.Len() != computed.Len() {
		t.Fatalf("Len = %d, want %d", decoded.Len(), computed.Len())
	}
	for n := range tr.Walk() {
		want, _ := computed.Pos(n)
		got, ok := decoded.Pos(n)
		if !ok || got != want {
			t.Fatalf("node depth %d path %s: pos %v, want %v", n.Depth, n.Path.Key(), got, want)
		}
		wl, wr := computed.Span(n)
		gl, gr := decoded.Span(n)
		if wl != gl || wr != gr {
			t.Fatalf("span mismatch: [%v,%v) vs [%v,%v)", gl, gr, wl, wr)
		}
	}
}

func TestLayoutUnmarshalRejectsMismatchedTree(t *testing.T) {
	small, err := graph.New(1)
	if err != nil {
		t.Fatal(err)
	}
	smallTree, err := tree.Build(small, 2, tree.Options{})
	if err != nil {
		t.Fatal(err)
	}
	l, err := Compute(smallTree, Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(l, smallTree)
	if err != nil {
		t.Fatal(err)
	}

	big, err := graph.New(2)
	if err != nil {
		t.Fatal(err)
	}
	bigTree, err := tree.Build(big, 2, tree.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data, bigTree); err == nil {
		t.Error("Unmarshal accepted a layout for a different tree")
	}

	if _, err := Unmarshal([]byte("garbage"), smallTree); err == nil {
		t.Error("Unmarshal accepted garbage")
	}
}
