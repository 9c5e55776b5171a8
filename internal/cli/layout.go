package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/pipeline"
	"github.com/chromatree/chromatree/pkg/tree/layout"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		noCache bool
		output  string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [problem.json]",
		Short: "Compute deterministic node positions for the tree",
		Long: `Compute deterministic node positions for the tree.

The layout command builds the decision tree and runs the two-pass
geometric layout: a bottom-up pass that sums leaf widths into subtree
extents, and a top-down pass that centers every node over its children.
The same problem and knobs always yield the same coordinates.

The result is written as a JSON document next to the input file unless
-o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even on cache hit")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <input>.layout.json)")
	cmd.Flags().Float64Var(&opts.LeafGap, "leaf-gap", 0, "horizontal distance between adjacent leaves (0 = default)")
	cmd.Flags().Float64Var(&opts.LevelHeight, "level-height", 0, "vertical distance between tree levels (0 = default)")
	cmd.Flags().IntVar(&opts.NodeCeiling, "node-ceiling", 0, "refuse trees above this node count (0 = default)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	problem, err := graph.ReadProblemFile(input)
	if err != nil {
		return fmt.Errorf("load problem %s: %w", input, err)
	}
	opts.Problem = problem
	opts.Logger = c.Logger

	runner, err := c.newRunner(noCache, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Building tree...")
	spinner.Start()

	t, treeHit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}

	spinner.SetMessage("Computing layout...")
	l, layoutHit, err := runner.ComputeLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.StopWithSuccess("Layout computed")

	printTreeStats(t.TotalNodes(), t.ValidLeafCount(), t.InvalidLeafCount(), treeHit)
	printKeyValue("Canvas", fmt.Sprintf("%.1f x %.1f", l.Width, l.Height))
	if layoutHit {
		printDetail("Layout loaded from cache")
	}

	if output == "" {
		output = layoutOutputPath(input)
	}
	data, err := layout.Marshal(l, t)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}

	printNewline()
	printFile(output)
	printNextStep("Render the tree", fmt.Sprintf("chromatree render %s", input))
	return nil
}

// layoutOutputPath derives <input>.layout.json from the input path.
func layoutOutputPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".layout.json"
}
