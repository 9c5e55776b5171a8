package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/pipeline"
)

// renderCommand creates the render command, the full pipeline front door.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		noCache    bool
		skipSolver bool
		formats    string
		output     string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [problem.json]",
		Short: "Run the full pipeline and write tree artifacts",
		Long: `Run the full pipeline and write tree artifacts.

The render command builds the decision tree, cross-checks it against the
external solver, computes the layout, and renders the annotated tree.
Valid leaves are drawn green, invalid leaves red; --skip-solver leaves
the provenance annotations out.

Formats: dot, svg, png, json. Artifacts land next to the input file
unless -o points elsewhere.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			opts.Formats, err = parseFormats(formats)
			if err != nil {
				return err
			}
			opts.SkipEnumeration = skipSolver
			return c.runRender(cmd.Context(), args[0], output, opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even on cache hit")
	cmd.Flags().BoolVar(&skipSolver, "skip-solver", false, "render without solver cross-checking")
	cmd.Flags().StringVarP(&formats, "format", "f", "svg", "comma-separated output formats")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: input directory)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "truncate rendering below this depth (0 = full tree)")
	cmd.Flags().BoolVar(&opts.ColorLeaves, "color-leaves", true, "fill leaves by verdict")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "solver invocation budget (0 = default)")
	cmd.Flags().IntVar(&opts.NodeCeiling, "node-ceiling", 0, "refuse trees above this node count (0 = default)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	problem, err := graph.ReadProblemFile(input)
	if err != nil {
		return fmt.Errorf("load problem %s: %w", input, err)
	}
	opts.Problem = problem
	opts.Logger = c.Logger

	runner, err := c.newRunner(noCache, !opts.SkipEnumeration)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Running pipeline...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Pipeline failed")
		if result != nil && result.Tree != nil {
			printTreeStats(result.Tree.TotalNodes(), result.Tree.ValidLeafCount(),
				result.Tree.InvalidLeafCount(), result.CacheInfo.TreeHit)
		}
		return err
	}
	spinner.StopWithSuccess("Pipeline complete")

	printTreeStats(result.Tree.TotalNodes(), result.Tree.ValidLeafCount(),
		result.Tree.InvalidLeafCount(), result.CacheInfo.TreeHit)
	if result.Enumeration != nil {
		printKeyValue("Solver runs", fmt.Sprintf("%d", result.Enumeration.Iterations))
		printKeyValue("Colorings", fmt.Sprintf("%d", result.Enumeration.Exclusions.Len()))
	}

	printNewline()
	return writeArtifacts(input, output, result.Artifacts, result.CacheInfo.RenderHit)
}
