package tree

import (
	"testing"

	"github.com/chromatree/chromatree/pkg/graph"
)

func TestTreeCodecRoundTrip(t *testing.T) {
	g, err := graph.New(3)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range [][2]int{{0, 1}, {1, 2}, {0, 2}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	built, err := Build(g, 3, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// Annotations must not survive serialization.
	built.Annotate(map[string]bool{"0,1,2": true})

	data, err := MarshalTree(built)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	decoded, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}

	if decoded.TotalNodes() != built.TotalNodes() {
		t.Errorf("TotalNodes = %d, want %d", decoded.TotalNodes(), built.TotalNodes())
	}
	if decoded.ValidLeafCount() != built.ValidLeafCount() {
		t.Errorf("ValidLeafCount = %d, want %d", decoded.ValidLeafCount(), built.ValidLeafCount())
	}
	if decoded.InvalidLeafCount() != built.InvalidLeafCount() {
		t.Errorf("InvalidLeafCount = %d, want %d", decoded.InvalidLeafCount(), built.InvalidLeafCount())
	}

	// Per-node comparison in walk order.
	wantNodes := collect(built)
	gotNodes := collect(decoded)
	if len(wantNodes) != len(gotNodes) {
		t.Fatalf("node count = %d, want %d", len(gotNodes), len(wantNodes))
	}
	for i := range wantNodes {
		want, got := wantNodes[i], gotNodes[i]
		if got.Kind != want.Kind || got.Depth != want.Depth || got.Path.Key() != want.Path.Key() {
			t.Fatalf("node %d: got %v/%d/%s, want %v/%d/%s",
				i, got.Kind, got.Depth, got.Path.Key(), want.Kind, want.Depth, want.Path.Key())
		}
		if len(got.ViolatedEdges) != len(want.ViolatedEdges) {
			t.Fatalf("node %d: %d violations, want %d", i, len(got.ViolatedEdges), len(want.ViolatedEdges))
		}
		if got.Provenance != ProvenanceNone {
			t.Fatalf("node %d: decoded provenance %v, want none", i, got.Provenance)
		}
	}
}

func collect(t *Tree) []*Node {
	var out []*Node
	for n := range t.Walk() {
		out = append(out, n)
	}
	return out
}

func TestUnmarshalTreeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"garbage", "not json"},
		{"zero colors", `{"nodes":2,"colors":0,"edges":[],"leaves":[]}`},
		{"leaf shortfall", `{"nodes":2,"colors":2,"edges":[],"leaves":[null,null]}`},
		{"leaf surplus", `{"nodes":1,"colors":2,"edges":[],"leaves":[null,null,null]}`},
		{"bad edge", `{"nodes":2,"colors":2,"edges":[{"u":0,"v":9}],"leaves":[null,null,null,null]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := UnmarshalTree([]byte(tc.data)); err == nil {
				t.Error("UnmarshalTree accepted bad input")
			}
		})
	}
}
