// Package solver integrates the external KLEE symbolic-execution engine as
// an opaque coloring oracle.
//
// Each invocation is stateless: the package generates a C program whose
// symbolic variables are the node colors, whose assumptions encode the domain
// and edge constraints plus one blocking clause per already-found coloring,
// compiles it to LLVM bitcode with clang, runs klee on it, and parses the
// resulting .ktest files back into concrete assignments.
//
// The enumeration driver depends only on the [Oracle] interface, so tests
// substitute a scripted stub and never touch a real solver.
package solver

import (
	"context"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/graph"
)

// Request describes one solver invocation: the problem plus the exclusion
// set accumulated so far.
type Request struct {
	Nodes  int
	Edges  []graph.Edge
	Colors int

	// Exclude lists complete assignments the solver must not report again.
	// Each becomes a blocking clause in the generated program.
	Exclude []coloring.Assignment
}

// Response carries the concrete complete assignments one invocation reported.
// Zero assignments means the constraints (including the blocking clauses)
// are infeasible - the enumeration fixed point.
type Response struct {
	Assignments []coloring.Assignment
}

// Oracle is an opaque, stateless-per-invocation constraint solver.
//
// Implementations must honor ctx cancellation, terminating any in-flight
// external process and releasing its resources. A non-nil error means the
// solver failed or was cut off, which callers must distinguish from an empty
// successful Response (genuine infeasibility).
type Oracle interface {
	Solve(ctx context.Context, req Request) (Response, error)
}
