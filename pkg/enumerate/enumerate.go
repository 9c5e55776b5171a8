// Package enumerate drives the external solver to exhaustively discover every
// proper coloring, and reconciles the result against the locally built tree.
//
// The protocol is blocking-clause AllSAT enumeration: invoke the solver with
// the constraints plus one exclusion per already-found coloring, ingest
// whatever new assignments it reports, and repeat until an invocation yields
// nothing new (the fixed point) or the iteration budget runs out. Every
// solver-reported assignment is re-validated with the local classifier before
// it is trusted.
//
// After a fixed-point termination every valid leaf of the tree must have been
// discovered by the solver; a leaf the solver never reported means the solver
// or the driver is broken, and is surfaced as RECONCILIATION_MISMATCH rather
// than ignored. That check is the load-bearing correctness property of the
// subsystem.
package enumerate

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/errors"
	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/observability"
	"github.com/chromatree/chromatree/pkg/solver"
	"github.com/chromatree/chromatree/pkg/tree"
)

// Defaults for the enumeration budget.
const (
	DefaultMaxIterations = 256
	DefaultRetries       = 2
	DefaultRetryDelay    = time.Second

	// NoRetries disables re-attempts entirely; a failed invocation
	// escalates immediately. The zero value of Options.Retries means
	// DefaultRetries, so disabling needs an explicit sentinel.
	NoRetries = -1
)

// Reason explains why enumeration stopped.
type Reason int

const (
	// ReasonFixedPoint means an invocation reported zero new assignments:
	// every satisfying assignment is presumed found.
	ReasonFixedPoint Reason = iota
	// ReasonBudgetExceeded means the iteration ceiling was hit or the solver
	// kept failing; enumeration is incomplete.
	ReasonBudgetExceeded
	// ReasonCancelled means the caller's context was cancelled between
	// iterations.
	ReasonCancelled
)

// String returns the lowercase name of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonFixedPoint:
		return "fixed-point"
	case ReasonBudgetExceeded:
		return "budget-exceeded"
	case ReasonCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// State is the explicit enumeration state handed back to the caller:
// what was found, how many invocations it took, and why the loop stopped.
type State struct {
	Exclusions *ExclusionSet
	Iterations int
	Reason     Reason

	// Discarded counts solver results that failed independent re-validation
	// and were thrown away.
	Discarded int
}

// Complete reports whether enumeration reached the fixed point.
// Anything else means the exclusion set may be missing colorings and must be
// presented as incomplete.
func (s *State) Complete() bool { return s.Reason == ReasonFixedPoint }

// Options configures a Driver.
type Options struct {
	// MaxIterations bounds the number of solver invocations.
	MaxIterations int
	// Retries is how often a failed invocation is re-attempted within one
	// iteration before the run escalates to SOLVER_BUDGET_EXCEEDED.
	// Zero selects DefaultRetries; pass NoRetries to disable re-attempts.
	Retries int
	// RetryDelay is the initial backoff between attempts; it doubles each
	// retry.
	RetryDelay time.Duration
	// Logger receives per-iteration progress. Defaults to discard.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Retries == 0 {
		o.Retries = DefaultRetries
	} else if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Driver runs the enumeration protocol against an oracle.
type Driver struct {
	oracle solver.Oracle
	opts   Options
}

// New creates a driver for the given oracle.
func New(oracle solver.Oracle, opts Options) *Driver {
	return &Driver{oracle: oracle, opts: opts.withDefaults()}
}

// Enumerate drives the solver to a fixed point and reconciles the tree.
//
// The returned State is always usable, even alongside a non-nil error:
// budget exhaustion returns the partial state plus SOLVER_BUDGET_EXCEEDED,
// and a reconciliation failure returns the complete state plus
// RECONCILIATION_MISMATCH. Cancellation is checked before every invocation,
// and the in-flight solver process dies with the context.
//
// The tree is annotated with per-leaf provenance exactly once, after the
// loop terminates; callers never observe a partially annotated tree.
func (d *Driver) Enumerate(ctx context.Context, g *graph.Graph, colors int, t *tree.Tree) (*State, error) {
	if g == nil || t == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "graph and tree are required")
	}
	if t.Graph.NodeCount() != g.NodeCount() || t.Colors != colors {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration,
			"tree was built for n=%d k=%d, got n=%d k=%d",
			t.Graph.NodeCount(), t.Colors, g.NodeCount(), colors)
	}

	state := &State{Exclusions: NewExclusionSet()}
	edges := g.Edges()

	for {
		if err := ctx.Err(); err != nil {
			state.Reason = ReasonCancelled
			d.finish(t, state)
			return state, errors.Wrap(errors.ErrCodeSolverBudget, err, "enumeration cancelled after %d iterations", state.Iterations)
		}
		if state.Iterations >= d.opts.MaxIterations {
			state.Reason = ReasonBudgetExceeded
			d.finish(t, state)
			return state, errors.New(errors.ErrCodeSolverBudget,
				"no fixed point after %d iterations (%d colorings found)",
				state.Iterations, state.Exclusions.Len())
		}

		state.Iterations++
		req := solver.Request{
			Nodes:   g.NodeCount(),
			Edges:   edges,
			Colors:  colors,
			Exclude: state.Exclusions.Assignments(),
		}

		resp, err := d.solveWithRetry(ctx, req)
		if err != nil {
			state.Reason = ReasonBudgetExceeded
			d.finish(t, state)
			return state, errors.Wrap(errors.ErrCodeSolverBudget, err,
				"solver failed %d times in iteration %d", d.opts.Retries+1, state.Iterations)
		}

		added := d.ingest(state, resp, edges, colors, g.NodeCount())
		observability.Enumeration().OnIteration(ctx, state.Iterations, added, state.Exclusions.Len())
		d.opts.Logger.Debug("solver iteration complete",
			"iteration", state.Iterations, "new", added, "total", state.Exclusions.Len())

		if added == 0 {
			state.Reason = ReasonFixedPoint
			break
		}
	}

	d.finish(t, state)
	if mismatches := countLocalOnlyValid(t); mismatches > 0 {
		return state, errors.New(errors.ErrCodeReconciliation,
			"%d locally valid colorings never reported by the solver after claimed exhaustion", mismatches)
	}
	return state, nil
}

// ingest re-validates and records the assignments of one response.
// A result that is incomplete, out of domain, or fails local classification
// is discarded and logged; the solver is never trusted unverified.
func (d *Driver) ingest(state *State, resp solver.Response, edges []graph.Edge, colors, nodes int) int {
	added := 0
	for _, a := range resp.Assignments {
		if len(a) != nodes || !a.Complete() || !a.InDomain(colors) {
			state.Discarded++
			d.opts.Logger.Warn("discarding malformed solver assignment", "assignment", a.Key())
			continue
		}
		if r := coloring.Classify(a, edges); !r.Valid {
			state.Discarded++
			d.opts.Logger.Warn("discarding constraint-violating solver assignment",
				"assignment", a.Key(), "violations", len(r.ViolatedEdges))
			continue
		}
		if state.Exclusions.Add(a) {
			added++
		}
	}
	return added
}

// solveWithRetry re-attempts a failed invocation with exponential backoff.
// Only solver process failures retry; cancellation aborts immediately.
func (d *Driver) solveWithRetry(ctx context.Context, req solver.Request) (solver.Response, error) {
	attempts := d.opts.Retries + 1
	delay := d.opts.RetryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		resp, err := d.oracle.Solve(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		d.opts.Logger.Warn("solver invocation failed", "attempt", i+1, "err", err)

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return solver.Response{}, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return solver.Response{}, lastErr
}

// finish annotates the tree with provenance from the final exclusion set.
// Runs on every exit path so callers always see a fully annotated tree.
func (d *Driver) finish(t *tree.Tree, state *State) {
	t.Annotate(state.Exclusions.Keys())
}

// countLocalOnlyValid counts valid leaves the solver never confirmed.
func countLocalOnlyValid(t *tree.Tree) int {
	mismatches := 0
	for leaf := range t.ValidLeaves() {
		if leaf.Provenance != tree.ProvenanceSolverConfirmed {
			mismatches++
		}
	}
	return mismatches
}

// Outcome is the result of an asynchronous enumeration.
type Outcome struct {
	State *State
	Err   error
}

// Go runs Enumerate on its own goroutine and delivers the outcome on the
// returned channel. The channel is buffered, so the goroutine never leaks
// even if the caller stops listening. Long solver work stays off the calling
// goroutine; cancel ctx to stop between iterations.
func (d *Driver) Go(ctx context.Context, g *graph.Graph, colors int, t *tree.Tree) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		state, err := d.Enumerate(ctx, g, colors, t)
		ch <- Outcome{State: state, Err: err}
	}()
	return ch
}
