package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/solver"
)

// programCommand creates the program command.
func (c *CLI) programCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "program [problem.json]",
		Short: "Print the generated solver harness for a problem",
		Long: `Print the generated solver harness for a problem.

The program command emits the C source that enumerate compiles and runs
under KLEE: symbolic color variables, domain assumptions, one constraint
per edge, and no blocking clauses. Useful for inspecting what the solver
is actually asked, or for running KLEE by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProgram(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func (c *CLI) runProgram(input, output string) error {
	problem, err := graph.ReadProblemFile(input)
	if err != nil {
		return fmt.Errorf("load problem %s: %w", input, err)
	}
	g, err := problem.Graph()
	if err != nil {
		return err
	}

	source := solver.GenerateProgram(solver.Request{
		Nodes:  g.NodeCount(),
		Edges:  g.Edges(),
		Colors: problem.Colors,
	})

	if output == "" {
		fmt.Print(source)
		return nil
	}
	if err := os.WriteFile(output, []byte(source), 0o644); err != nil {
		return fmt.Errorf("write program: %w", err)
	}
	printFile(output)
	return nil
}
