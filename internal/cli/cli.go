// Package cli implements the chromatree command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chromatree/chromatree/pkg/buildinfo"
	"github.com/chromatree/chromatree/pkg/cache"
	"github.com/chromatree/chromatree/pkg/pipeline"
	"github.com/chromatree/chromatree/pkg/solver"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "chromatree"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the config
// loaded from disk (defaults when no config file exists).
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{
		Logger: newLogger(w, level),
	}
	cfg, err := LoadConfig("")
	if err != nil {
		c.Logger.Warn("ignoring unreadable config file", "err", err)
		cfg = DefaultConfig()
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "chromatree",
		Short:        "Chromatree enumerates graph colorings over an exhaustive decision tree",
		Long:         `Chromatree builds the complete decision tree of a graph-coloring problem, cross-checks its valid leaves against a KLEE-based solver through blocking-clause enumeration, and renders the reconciled tree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		// Attach the logger to the command context so subcommands and the
		// packages they call pull it from there rather than from CLI state.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.enumerateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.programCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The oracle is nil
// when withSolver is false; commands that enumerate must pass true.
func (c *CLI) newRunner(noCache, withSolver bool) (*pipeline.Runner, error) {
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	var oracle solver.Oracle
	if withSolver {
		oracle, err = c.newOracle()
		if err != nil {
			return nil, err
		}
	}
	return pipeline.NewRunner(store, nil, oracle, c.Logger), nil
}

// newOracle builds the KLEE runner from the config.
func (c *CLI) newOracle() (solver.Oracle, error) {
	s := c.Config.Solver
	return solver.NewRunner(solver.Config{
		ClangPath:     s.Clang,
		KleePath:      s.Klee,
		KtestToolPath: s.KtestTool,
		IncludeDir:    s.Include,
		Timeout:       time.Duration(s.TimeoutSeconds) * time.Second,
		Logger:        c.Logger,
	})
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == cacheBackendNone {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == cacheBackendRedis {
		// Redis connection failures fall back to the file cache so the
		// CLI stays usable offline.
		rc, err := c.redisCache()
		if err == nil {
			return rc, nil
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/chromatree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a validated slice.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{pipeline.FormatSVG}, nil
	}
	formats := strings.Split(s, ",")
	for i, f := range formats {
		formats[i] = strings.TrimSpace(f)
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}
