package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chromatree/chromatree/pkg/cache"
	"github.com/chromatree/chromatree/pkg/enumerate"
	"github.com/chromatree/chromatree/pkg/errors"
	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/pipeline"
	"github.com/chromatree/chromatree/pkg/store"
	"github.com/chromatree/chromatree/pkg/tree"
)

// enumerateCommand creates the enumerate command for solver cross-checking.
func (c *CLI) enumerateCommand() *cobra.Command {
	var (
		noCache bool
		noSave  bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "enumerate [problem.json]",
		Short: "Enumerate proper colorings through the external solver",
		Long: `Enumerate proper colorings through the external solver.

The enumerate command builds the decision tree, then repeatedly invokes
the KLEE-based solver, excluding previously found colorings with blocking
clauses, until the solver reports nothing new. Every reported coloring is
re-validated locally; the fixed point is reached only when the solver's
view and the tree's valid leaves agree.

Solver results are never cached. Each enumeration talks to the solver,
so a disagreement between tree and solver can never be masked by a
stale cache entry. Completed runs are archived and available through
'chromatree runs'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEnumerate(cmd.Context(), args[0], opts, noCache, noSave)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable tree caching")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not archive the run")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "solver invocation budget (0 = default)")
	cmd.Flags().IntVar(&opts.Retries, "retries", 0, "retries per failed solver invocation (0 = default, -1 = disable)")
	cmd.Flags().IntVar(&opts.NodeCeiling, "node-ceiling", 0, "refuse trees above this node count (0 = default)")

	return cmd
}

// runEnumerate builds the tree, drives the solver loop, prints the
// colorings, and archives the run.
func (c *CLI) runEnumerate(ctx context.Context, input string, opts pipeline.Options, noCache, noSave bool) error {
	problem, err := graph.ReadProblemFile(input)
	if err != nil {
		return fmt.Errorf("load problem %s: %w", input, err)
	}
	logger := loggerFromContext(ctx)
	opts.Problem = problem
	opts.Logger = logger

	runner, err := c.newRunner(noCache, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Building tree...")
	spinner.Start()

	t, cacheHit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}

	spinner.SetMessage("Enumerating colorings via solver...")
	prog := newProgress(logger)
	state, enumErr := runner.Enumerate(ctx, t, opts)
	elapsed := time.Since(prog.start)

	if enumErr != nil {
		spinner.StopWithError("Enumeration failed")
	} else {
		spinner.StopWithSuccess(fmt.Sprintf("Fixed point after %d solver runs", state.Iterations))
		prog.done(fmt.Sprintf("Enumerated %d colorings", state.Exclusions.Len()))
	}
	printTreeStats(t.TotalNodes(), t.ValidLeafCount(), t.InvalidLeafCount(), cacheHit)

	if state != nil {
		printNewline()
		if n := state.Exclusions.Len(); n == 0 {
			printInfo("No proper coloring exists for this problem")
		} else {
			printInfo("Found %d proper colorings:", n)
			for i, a := range state.Exclusions.Assignments() {
				printColoring(i+1, a)
			}
		}
		if state.Discarded > 0 {
			printWarning("Discarded %d untrusted solver results", state.Discarded)
		}

		if !noSave {
			if err := c.archiveRun(ctx, problem, t, state, elapsed); err != nil {
				printWarning("Run not archived: %v", err)
			}
		}
	}

	if enumErr != nil {
		if errors.Is(enumErr, errors.ErrCodeReconciliation) {
			printError("Solver claims exhaustion but the tree disagrees")
		}
		return enumErr
	}

	printNewline()
	printNextStep("Render the reconciled tree", fmt.Sprintf("chromatree render %s", input))
	return nil
}

// archiveRun persists a completed enumeration in the run store.
func (c *CLI) archiveRun(ctx context.Context, problem graph.Problem, t *tree.Tree, state *enumerate.State, elapsed time.Duration) error {
	s, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	data, err := graph.MarshalProblem(problem)
	if err != nil {
		return err
	}
	run := store.NewRun(problem, cache.Hash(data))
	run.SetColorings(state.Exclusions.Assignments())
	run.Iterations = state.Iterations
	run.Discarded = state.Discarded
	run.Reason = state.Reason.String()
	run.Duration = elapsed
	run.TotalNodes = t.TotalNodes()
	run.ValidLeaves = t.ValidLeafCount()
	run.InvalidLeaves = t.InvalidLeafCount()

	if err := s.Save(ctx, run); err != nil {
		return err
	}
	printDetail("Archived run %s", run.ID)
	return nil
}
