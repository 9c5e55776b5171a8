package solver

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/errors"
)

// Default tool names, resolved against PATH unless overridden in Config.
const (
	defaultClang     = "clang"
	defaultKlee      = "klee"
	defaultKtestTool = "ktest-tool"
)

// DefaultTimeout bounds one complete invocation (compile + solve + parse).
const DefaultTimeout = 30 * time.Second

// kleeIncludeCandidates are searched for klee/klee.h when no include dir is
// configured. Snap installs keep headers under their own prefix.
var kleeIncludeCandidates = []string{
	"/snap/klee/current/usr/local/include",
	"/usr/local/include",
	"/usr/include",
}

// Config configures a KLEE runner.
type Config struct {
	// ClangPath, KleePath, KtestToolPath override the tool binaries.
	ClangPath     string
	KleePath      string
	KtestToolPath string

	// IncludeDir is the directory containing klee/klee.h.
	// Detected from known locations when empty.
	IncludeDir string

	// WorkRoot is where per-invocation scratch directories are created.
	// Defaults to the system temp directory.
	WorkRoot string

	// Timeout bounds one invocation end to end. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Logger receives per-invocation debug output. Defaults to discard.
	Logger *log.Logger
}

// Runner invokes KLEE as an external process. It implements [Oracle].
//
// Every invocation runs in its own scratch directory which is removed on all
// exit paths, including timeout and cancellation. The external processes are
// started with exec.CommandContext, so cancelling the context kills an
// in-flight compile or solve.
type Runner struct {
	cfg Config
}

// NewRunner validates the toolchain and returns a runner.
// Fails with SOLVER_UNAVAILABLE if clang, klee, or ktest-tool cannot be
// found, or if no KLEE header directory can be located.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.ClangPath == "" {
		cfg.ClangPath = defaultClang
	}
	if cfg.KleePath == "" {
		cfg.KleePath = defaultKlee
	}
	if cfg.KtestToolPath == "" {
		cfg.KtestToolPath = defaultKtestTool
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = os.TempDir()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	for _, tool := range []string{cfg.ClangPath, cfg.KleePath, cfg.KtestToolPath} {
		if _, err := exec.LookPath(tool); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSolverUnavailable, err, "%s not found", tool)
		}
	}

	if cfg.IncludeDir == "" {
		dir, err := detectKleeInclude()
		if err != nil {
			return nil, err
		}
		cfg.IncludeDir = dir
	}

	return &Runner{cfg: cfg}, nil
}

// detectKleeInclude searches the candidate directories for klee/klee.h.
func detectKleeInclude() (string, error) {
	for _, dir := range kleeIncludeCandidates {
		if _, err := os.Stat(filepath.Join(dir, "klee", "klee.h")); err == nil {
			return dir, nil
		}
	}
	return "", errors.New(errors.ErrCodeSolverUnavailable, "cannot locate klee/klee.h in any known include directory")
}

// Solve runs one complete KLEE invocation for the request.
//
// Returns SOLVER_PROCESS_FAILURE when clang or klee exits abnormally or the
// timeout fires. An empty Response with a nil error means the constraints
// are infeasible.
func (r *Runner) Solve(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	workDir, err := os.MkdirTemp(r.cfg.WorkRoot, "chromatree-klee-*")
	if err != nil {
		return Response{}, errors.Wrap(errors.ErrCodeSolverProcess, err, "create work dir")
	}
	defer os.RemoveAll(workDir)

	program := GenerateProgram(req)
	cFile := filepath.Join(workDir, "coloring.c")
	if err := os.WriteFile(cFile, []byte(program), 0644); err != nil {
		return Response{}, errors.Wrap(errors.ErrCodeSolverProcess, err, "write program")
	}

	bcFile := filepath.Join(workDir, "coloring.bc")
	if err := r.run(ctx, workDir, r.cfg.ClangPath,
		"-I", r.cfg.IncludeDir, "-O0", "-g", "-emit-llvm", "-c", "coloring.c", "-o", "coloring.bc"); err != nil {
		return Response{}, err
	}
	if _, err := os.Stat(bcFile); err != nil {
		return Response{}, errors.Wrap(errors.ErrCodeSolverProcess, err, "clang produced no bitcode")
	}

	if err := r.run(ctx, workDir, r.cfg.KleePath, "coloring.bc"); err != nil {
		return Response{}, err
	}

	outDir, err := newestKleeOut(workDir)
	if err != nil {
		return Response{}, err
	}

	return r.collect(ctx, outDir, req.Nodes)
}

// run executes one external command inside workDir.
func (r *Runner) run(ctx context.Context, workDir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.cfg.Logger.Debug("running solver tool", "cmd", name, "args", args)
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.Wrap(errors.ErrCodeSolverProcess, ctx.Err(), "%s timed out", name)
		}
		return errors.Wrap(errors.ErrCodeSolverProcess, err, "%s: %s", name, firstLine(stderr.String()))
	}
	return nil
}

// newestKleeOut locates the klee-out-* directory of this invocation.
func newestKleeOut(workDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(workDir, "klee-out-*"))
	if err != nil || len(matches) == 0 {
		return "", errors.New(errors.ErrCodeSolverProcess, "klee produced no output directory")
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// collect parses every .ktest file in the output directory.
// Files that fail to parse are logged and skipped; the enumeration driver
// re-validates whatever survives, so a bad file costs coverage, not
// soundness.
func (r *Runner) collect(ctx context.Context, outDir string, nodes int) (Response, error) {
	files, err := filepath.Glob(filepath.Join(outDir, "*.ktest"))
	if err != nil {
		return Response{}, errors.Wrap(errors.ErrCodeSolverProcess, err, "scan %s", outDir)
	}
	sort.Strings(files)

	var assignments []coloring.Assignment
	for _, f := range files {
		result, err := readKTestFile(ctx, r.cfg.KtestToolPath, f)
		if err != nil {
			r.cfg.Logger.Warn("unreadable ktest file", "path", f, "err", err)
			continue
		}
		a, err := result.Assignment(nodes)
		if err != nil {
			r.cfg.Logger.Warn("malformed ktest file", "path", f, "err", err)
			continue
		}
		assignments = append(assignments, a)
	}
	return Response{Assignments: assignments}, nil
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}

// Ensure Runner implements Oracle.
var _ Oracle = (*Runner)(nil)
