package solver

import (
	"strings"
	"testing"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/graph"
)

func TestGenerateProgram(t *testing.T) {
	req := Request{
		Nodes:  3,
		Colors: 3,
		Edges:  []graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 0, V: 2}},
	}
	src := GenerateProgram(req)

	for _, want := range []string{
		"#include <klee/klee.h>",
		"#define NODES 3",
		"#define COLORS 3",
		"#define EDGES 3",
		`sprintf(name, "color_%d", i);`,
		"klee_make_symbolic(&color[i], sizeof(int), name);",
		"klee_assume(color[i] >= 0 && color[i] < COLORS);",
		"klee_assume(color[u] != color[v]);",
		"{0, 1},",
		"{0, 2}",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("program missing %q\n%s", want, src)
		}
	}
}

func TestGenerateProgramBlockingClauses(t *testing.T) {
	req := Request{
		Nodes:  2,
		Colors: 2,
		Edges:  []graph.Edge{{U: 0, V: 1}},
		Exclude: []coloring.Assignment{
			{0, 1},
			{1, 0},
		},
	}
	src := GenerateProgram(req)

	for _, want := range []string{
		"klee_assume(!(color[0] == 0 && color[1] == 1));",
		"klee_assume(!(color[0] == 1 && color[1] == 0));",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("program missing blocking clause %q", want)
		}
	}
}

func TestGenerateProgramNoEdges(t *testing.T) {
	src := GenerateProgram(Request{Nodes: 2, Colors: 3})

	// A zero-length C array is invalid; the edge block must be omitted
	// entirely for edgeless graphs.
	if strings.Contains(src, "int edges[") {
		t.Error("edgeless program still declares the edges array")
	}
	if strings.Contains(src, "color[u] != color[v]") {
		t.Error("edgeless program still asserts edge constraints")
	}
	if !strings.Contains(src, "#define EDGES 0") {
		t.Error("EDGES define missing")
	}
}

func TestGenerateProgramDeterministic(t *testing.T) {
	req := Request{
		Nodes:   3,
		Colors:  2,
		Edges:   []graph.Edge{{U: 0, V: 1}},
		Exclude: []coloring.Assignment{{0, 1, 0}},
	}
	if GenerateProgram(req) != GenerateProgram(req) {
		t.Error("program generation is not deterministic")
	}
}
