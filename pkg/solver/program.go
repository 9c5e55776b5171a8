package solver

import (
	"fmt"
	"strings"
)

// GenerateProgram emits the C program for one solver invocation.
//
// The program declares one symbolic int per node (named "color_%d" so result
// files can be mapped back to node indices regardless of ordering), assumes
// the color domain per node and inequality per edge, and blocks every
// excluded assignment with a negated equality conjunction. KLEE records the
// concrete variable values of each feasible path in a .ktest file on exit.
func GenerateProgram(req Request) string {
	var g programWriter

	g.line("#include <klee/klee.h>")
	g.line("#include <stdio.h>")
	g.line("")
	g.line("#define NODES %d", req.Nodes)
	g.line("#define COLORS %d", req.Colors)
	g.line("#define EDGES %d", len(req.Edges))
	g.line("")
	g.line("int main() {")
	g.line("    int color[NODES];")

	if len(req.Edges) > 0 {
		g.line("    int edges[EDGES][2] = {")
		for i, e := range req.Edges {
			sep := ","
			if i == len(req.Edges)-1 {
				sep = ""
			}
			g.line("        {%d, %d}%s", e.U, e.V, sep)
		}
		g.line("    };")
	}
	g.line("")

	g.line("    // Colors")
	g.line("    for (int i = 0; i < NODES; i++) {")
	g.line("        char name[16];")
	g.line(`        sprintf(name, "color_%d", i);`)
	g.declareSymbolic("&color[i]", "sizeof(int)", "name")
	g.assume("color[i] >= 0 && color[i] < COLORS")
	g.line("    }")
	g.line("")

	if len(req.Edges) > 0 {
		g.line("    // Edge constraints")
		g.line("    for (int i = 0; i < EDGES; i++) {")
		g.line("        int u = edges[i][0];")
		g.line("        int v = edges[i][1];")
		g.assume("color[u] != color[v]")
		g.line("    }")
		g.line("")
	}

	if len(req.Exclude) > 0 {
		g.line("    // Block previously found colorings")
		for _, a := range req.Exclude {
			g.assumeTop("!(" + blockingClause(a) + ")")
		}
		g.line("")
	}

	g.line("    return 0;")
	g.line("}")

	return g.String()
}

// blockingClause renders the equality conjunction identifying one exact
// complete assignment.
func blockingClause(a []int) string {
	terms := make([]string, len(a))
	for i, c := range a {
		terms[i] = fmt.Sprintf("color[%d] == %d", i, c)
	}
	return strings.Join(terms, " && ")
}

// programWriter collects generated lines. The solver-facing primitives are
// kept abstract so the encoding reads as declare/assume rather than raw C.
type programWriter struct {
	b strings.Builder
}

func (w *programWriter) line(format string, args ...any) {
	if len(args) == 0 {
		w.b.WriteString(format)
	} else {
		fmt.Fprintf(&w.b, format, args...)
	}
	w.b.WriteByte('\n')
}

// declareSymbolic emits a klee_make_symbolic call for one variable.
func (w *programWriter) declareSymbolic(addr, size, name string) {
	w.line("        klee_make_symbolic(%s, %s, %s);", addr, size, name)
}

// assume emits a klee_assume constraint inside a loop body.
func (w *programWriter) assume(pred string) {
	w.line("        klee_assume(%s);", pred)
}

// assumeTop emits a klee_assume constraint at function scope.
func (w *programWriter) assumeTop(pred string) {
	w.line("    klee_assume(%s);", pred)
}

func (w *programWriter) String() string { return w.b.String() }
