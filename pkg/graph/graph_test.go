package graph

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrInvalidNodeCount) {
		t.Errorf("New(0) = %v, want ErrInvalidNodeCount", err)
	}
	g, err := New(3)
	if err != nil {
		t.Fatalf("New(3): %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", g.NodeCount())
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name    string
		u, v    int
		wantErr error
	}{
		{"Valid", 0, 1, nil},
		{"Reversed", 1, 0, ErrDuplicateEdge}, // {0,1} already added
		{"SelfLoop", 2, 2, ErrSelfLoop},
		{"OutOfRange", 0, 3, ErrEdgeOutOfRange},
		{"Negative", -1, 1, ErrEdgeOutOfRange},
	}

	g, _ := New(3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddEdge(tt.u, tt.v)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge(%d,%d) = %v, want %v", tt.u, tt.v, err, tt.wantErr)
			}
		})
	}
}

func TestEdgesNormalizedAndSorted(t *testing.T) {
	g, _ := New(4)
	for _, e := range [][2]int{{3, 1}, {2, 0}, {1, 0}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
	}

	want := []Edge{{0, 1}, {0, 2}, {1, 3}}
	got := g.Edges()
	if len(got) != len(want) {
		t.Fatalf("Edges len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Edges[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	g := &Graph{nodeCount: 2, edges: []Edge{{0, 1}, {1, 0}}}
	if err := g.Validate(); !errors.Is(err, ErrDuplicateEdge) {
		t.Errorf("Validate = %v, want ErrDuplicateEdge", err)
	}

	g = &Graph{nodeCount: 2, edges: []Edge{{0, 5}}}
	if err := g.Validate(); !errors.Is(err, ErrEdgeOutOfRange) {
		t.Errorf("Validate = %v, want ErrEdgeOutOfRange", err)
	}
}

func TestProblemRoundTrip(t *testing.T) {
	g, _ := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(0, 2)
	p := FromGraph(g, 3)

	data, err := MarshalProblem(p)
	if err != nil {
		t.Fatalf("MarshalProblem: %v", err)
	}

	got, err := ReadProblem(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadProblem: %v", err)
	}
	if got.Nodes != 3 || got.Colors != 3 || len(got.Edges) != 3 {
		t.Errorf("round trip = %+v, want original", got)
	}
}

func TestReadProblemRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"SelfLoop", `{"nodes": 2, "edges": [{"u": 1, "v": 1}], "colors": 2}`},
		{"OutOfRange", `{"nodes": 2, "edges": [{"u": 0, "v": 7}], "colors": 2}`},
		{"NoNodes", `{"nodes": 0, "edges": [], "colors": 2}`},
		{"Garbage", `{nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadProblem(bytes.NewReader([]byte(tt.json))); err == nil {
				t.Error("ReadProblem accepted invalid input")
			}
		})
	}
}

func TestProblemFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problem.json")
	p := Problem{Nodes: 2, Edges: []Edge{{0, 1}}, Colors: 2}

	if err := WriteProblemFile(p, path); err != nil {
		t.Fatalf("WriteProblemFile: %v", err)
	}
	got, err := ReadProblemFile(path)
	if err != nil {
		t.Fatalf("ReadProblemFile: %v", err)
	}
	if got.Nodes != p.Nodes || got.Colors != p.Colors || len(got.Edges) != 1 {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
}
