package cli

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/store"
)

// runsCommand creates the runs command with its subcommands.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived enumeration runs",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsDeleteCommand())

	return cmd
}

// runsListCommand creates the "runs list" subcommand.
func (c *CLI) runsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			runs, err := s.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No archived runs")
				return nil
			}

			for _, run := range runs {
				printInfo("%s", run.ID)
				printKeyValue("Created", run.CreatedAt.Local().Format(time.RFC822))
				printKeyValue("Problem", fmt.Sprintf("n=%d k=%d edges=%d",
					run.Problem.Nodes, run.Problem.Colors, len(run.Problem.Edges)))
				printKeyValue("Colorings", fmt.Sprintf("%d", len(run.Colorings)))
				printKeyValue("Reason", run.Reason)
				printNewline()
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")

	return cmd
}

// runsShowCommand creates the "runs show" subcommand.
func (c *CLI) runsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one archived run in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			run, err := s.Get(ctx, args[0])
			if err != nil {
				if stderrors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no run with id %s", args[0])
				}
				return err
			}

			printKeyValue("ID", run.ID)
			printKeyValue("Created", run.CreatedAt.Local().Format(time.RFC822))
			printKeyValue("Graph hash", run.GraphHash[:12])
			printKeyValue("Problem", fmt.Sprintf("n=%d k=%d edges=%d",
				run.Problem.Nodes, run.Problem.Colors, len(run.Problem.Edges)))
			printKeyValue("Tree", fmt.Sprintf("%d nodes, %d valid / %d invalid leaves",
				run.TotalNodes, run.ValidLeaves, run.InvalidLeaves))
			printKeyValue("Solver runs", fmt.Sprintf("%d", run.Iterations))
			printKeyValue("Duration", run.Duration.Round(time.Millisecond).String())
			printKeyValue("Reason", run.Reason)
			if run.Discarded > 0 {
				printWarning("Discarded %d untrusted solver results", run.Discarded)
			}

			printNewline()
			if len(run.Colorings) == 0 {
				printInfo("No proper coloring exists")
				return nil
			}
			printInfo("Colorings:")
			for i, cs := range run.Colorings {
				printColoring(i+1, coloring.Assignment(cs))
			}
			return nil
		},
	}
}

// runsDeleteCommand creates the "runs delete" subcommand.
func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete archived runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			var missing []string
			deleted := 0
			for _, id := range args {
				switch err := s.Delete(ctx, id); {
				case err == nil:
					deleted++
				case stderrors.Is(err, store.ErrNotFound):
					missing = append(missing, id)
				default:
					return err
				}
			}

			if deleted > 0 {
				printSuccess("Deleted %d runs", deleted)
			}
			if len(missing) > 0 {
				printWarning("Not found: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
