package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/pipeline"
	"github.com/chromatree/chromatree/pkg/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		noCache    bool
		skipSolver bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "explore [problem.json]",
		Short: "Browse valid colorings interactively",
		Long: `Browse valid colorings interactively.

The explore command builds the tree, cross-checks it against the solver,
and opens a terminal browser over the valid leaves. Each row is one
proper coloring with its provenance; enter prints the selected coloring
with its conflict-free edge list and exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SkipEnumeration = skipSolver
			return c.runExplore(cmd.Context(), args[0], opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&skipSolver, "skip-solver", false, "browse without solver cross-checking")
	cmd.Flags().IntVar(&opts.NodeCeiling, "node-ceiling", 0, "refuse trees above this node count (0 = default)")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, opts pipeline.Options, noCache bool) error {
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

	spinner := newSpinnerWithContext(ctx, "Building tree...")
	spinner.Start()

	t, _, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	if !opts.SkipEnumeration {
		spinner.SetMessage("Cross-checking with solver...")
		if _, err := runner.Enumerate(ctx, t, opts); err != nil {
			spinner.StopWithError("Enumeration failed")
			return err
		}
	}
	spinner.Stop()

	leaves := make([]*tree.Node, 0, t.ValidLeafCount())
	for leaf := range t.ValidLeaves() {
		leaves = append(leaves, leaf)
	}
	if len(leaves) == 0 {
		printInfo("No proper coloring exists for this problem")
		return nil
	}

	model := NewLeafListModel(leaves)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}

	if m, ok := final.(LeafListModel); ok && m.Selected != nil {
		printNewline()
		printColoring(m.SelectedIndex+1, m.Selected.Path)
		printKeyValue("Provenance", m.Selected.Provenance.String())
	}
	return nil
}

// =============================================================================
// LeafListModel - Interactive valid-leaf browser
// =============================================================================

// LeafListModel is the bubbletea model for browsing valid leaves.
type LeafListModel struct {
	Leaves        []*tree.Node
	Cursor        int
	Offset        int
	Height        int
	Selected      *tree.Node
	SelectedIndex int
}

// NewLeafListModel creates a new leaf list model.
func NewLeafListModel(leaves []*tree.Node) LeafListModel {
	return LeafListModel{
		Leaves: leaves,
		Height: 15,
	}
}

func (m LeafListModel) Init() tea.Cmd {
	return nil
}

func (m LeafListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Leaves)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Leaves[m.Cursor]
			m.SelectedIndex = m.Cursor
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LeafListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Proper Colorings"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Leaves) {
		end = len(m.Leaves)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		leaf := m.Leaves[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		confirmed := ""
		if leaf.Provenance == tree.ProvenanceSolverConfirmed {
			confirmed = "✓"
		}

		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", i+1),
			strings.Join(coloring.Names(leaf.Path), " "),
			confirmed,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Coloring", "Solver").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Leaves))))

	return b.String()
}
