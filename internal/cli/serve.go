package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chromatree/chromatree/internal/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		noCache    bool
		skipSolver bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline and run archive over HTTP",
		Long: `Serve the pipeline and run archive over HTTP.

POST /api/v1/runs enumerates a submitted problem and archives the result;
GET /api/v1/runs lists archived runs. POST /api/v1/render returns tree
artifacts directly. The store and cache backends come from the config
file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, skipSolver)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&skipSolver, "no-solver", false, "serve without a solver; enumeration requests fail")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache, skipSolver bool) error {
	if addr == "" {
		addr = c.Config.Serve.Addr
	}

	runner, err := c.newRunner(noCache, !skipSolver)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	s, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer s.Close(context.Background())

	srv := api.New(api.Config{Addr: addr}, s, runner, c.Logger)
	return srv.ListenAndServe(ctx)
}
