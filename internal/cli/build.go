package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/pipeline"
)

// buildCommand creates the build command for constructing decision trees.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		noCache bool
		refresh bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "build [problem.json]",
		Short: "Build the complete decision tree for a coloring problem",
		Long: `Build the complete decision tree for a coloring problem.

The build command reads a problem.json file (graph plus color count),
constructs the full k-ary assignment tree without pruning, and classifies
every leaf against the edge constraints. No solver is involved; this is
the purely local view of the problem.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], opts, noCache, refresh)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild even if cached")
	cmd.Flags().IntVar(&opts.NodeCeiling, "node-ceiling", 0, "refuse trees above this node count (0 = default)")

	return cmd
}

// runBuild loads the problem and builds the tree.
func (c *CLI) runBuild(ctx context.Context, input string, opts pipeline.Options, noCache, refresh bool) error {
	problem, err := graph.ReadProblemFile(input)
	if err != nil {
		return fmt.Errorf("load problem %s: %w", input, err)
	}
	opts.Problem = problem
	opts.Refresh = refresh
	opts.Logger = c.Logger

	runner, err := c.newRunner(noCache, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building tree for %d nodes, %d colors...", problem.Nodes, problem.Colors))
	spinner.Start()

	t, cacheHit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Built tree of depth %d", t.Depth()))

	printTreeStats(t.TotalNodes(), t.ValidLeafCount(), t.InvalidLeafCount(), cacheHit)
	printNewline()
	printNextStep("Cross-check against the solver", fmt.Sprintf("chromatree enumerate %s", input))
	return nil
}
