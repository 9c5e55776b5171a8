package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chromatree/chromatree/pkg/cache"
	"github.com/chromatree/chromatree/pkg/enumerate"
	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/observability"
	"github.com/chromatree/chromatree/pkg/render/treeviz"
	"github.com/chromatree/chromatree/pkg/solver"
	"github.com/chromatree/chromatree/pkg/tree"
	"github.com/chromatree/chromatree/pkg/tree/layout"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, oracle, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Oracle solver.Oracle
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer, and oracle.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// Oracle may be nil; Execute then requires SkipEnumeration.
func NewRunner(c cache.Cache, keyer cache.Keyer, oracle solver.Oracle, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Oracle: oracle,
		Logger: logger,
	}
}

// Execute runs the complete build → enumerate → layout → render
// pipeline with caching.
//
// On enumeration failure the partial result is returned alongside the
// error, so callers can still show the tree and whatever the solver
// found before the failure.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Build
	buildStart := time.Now()
	t, treeHit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Tree = t
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.TotalNodes = t.TotalNodes()
	result.Stats.ValidLeaves = t.ValidLeafCount()
	result.Stats.InvalidLeaves = t.InvalidLeafCount()
	result.CacheInfo.TreeHit = treeHit
	result.GraphHash = r.problemHash(opts)

	r.Logger.Info("built decision tree",
		"nodes", t.TotalNodes(),
		"valid", t.ValidLeafCount(),
		"invalid", t.InvalidLeafCount(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Enumerate. Never cached.
	if !opts.SkipEnumeration {
		enumStart := time.Now()
		state, err := r.Enumerate(ctx, t, opts)
		result.Enumeration = state
		result.Stats.EnumerateTime = time.Since(enumStart)
		if state != nil {
			result.Stats.Iterations = state.Iterations
		}
		if err != nil {
			return result, fmt.Errorf("enumerate: %w", err)
		}

		r.Logger.Info("enumeration reached fixed point",
			"iterations", state.Iterations,
			"colorings", state.Exclusions.Len(),
			"duration", result.Stats.EnumerateTime)
	}

	// Stage 3: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		return result, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"positions", l.Len(),
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, t, l, opts)
	if err != nil {
		return result, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the decision tree with caching and returns
// cache hit info.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (*tree.Tree, bool, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	g, err := opts.Problem.Graph()
	if err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.TreeKey(r.problemHash(opts), opts.TreeKeyOpts())
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, g.NodeCount(), opts.Problem.Colors)
	start := time.Now()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if t, err := tree.UnmarshalTree(data); err == nil {
				observability.Cache().OnHit(ctx, cacheKey)
				hooks.OnBuildComplete(ctx, t.TotalNodes(), t.ValidLeafCount(), time.Since(start), nil)
				return t, true, nil
			}
			// Corrupt entry, fall through to rebuild.
		}
		observability.Cache().OnMiss(ctx, cacheKey)
	}

	t, err := tree.Build(g, opts.Problem.Colors, tree.Options{NodeCeiling: opts.NodeCeiling})
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnBuildComplete(ctx, t.TotalNodes(), t.ValidLeafCount(), time.Since(start), nil)

	if data, err := tree.MarshalTree(t); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLTree) == nil {
			observability.Cache().OnSet(ctx, cacheKey, len(data))
		}
	}
	return t, false, nil
}

// Build is a convenience wrapper that discards the cache hit info.
func (r *Runner) Build(ctx context.Context, opts Options) (*tree.Tree, error) {
	t, _, err := r.BuildWithCacheInfo(ctx, opts)
	return t, err
}

// Enumerate cross-checks the tree against the solver. The tree's leaves
// carry provenance annotations afterwards, even on error.
func (r *Runner) Enumerate(ctx context.Context, t *tree.Tree, opts Options) (*enumerate.State, error) {
	if r.Oracle == nil {
		return nil, fmt.Errorf("no solver configured")
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnEnumerateStart(ctx, t.Graph.NodeCount(), t.Colors)
	start := time.Now()

	driver := enumerate.New(r.Oracle, opts.EnumerateOptions())
	state, err := driver.Enumerate(ctx, t.Graph, t.Colors, t)

	iterations, found := 0, 0
	if state != nil {
		iterations, found = state.Iterations, state.Exclusions.Len()
	}
	hooks.OnEnumerateComplete(ctx, iterations, found, time.Since(start), err)
	return state, err
}

// ComputeLayoutWithCacheInfo computes the layout with caching and
// returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, t *tree.Tree, opts Options) (*layout.Layout, bool, error) {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	treeHash := r.treeHash(t)
	cacheKey := r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts())
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, t.TotalNodes())
	start := time.Now()

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if l, err := layout.Unmarshal(data, t); err == nil {
			observability.Cache().OnHit(ctx, cacheKey)
			hooks.OnLayoutComplete(ctx, time.Since(start), nil)
			return l, true, nil
		}
		// If deserialization fails, fall through to recompute.
	}
	observability.Cache().OnMiss(ctx, cacheKey)

	l, err := layout.Compute(t, layout.Options{
		LeafGap:     opts.LeafGap,
		LevelHeight: opts.LevelHeight,
		NodeCeiling: opts.NodeCeiling,
	})
	if err != nil {
		hooks.OnLayoutComplete(ctx, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnLayoutComplete(ctx, time.Since(start), nil)

	if data, err := layout.Marshal(l, t); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
			observability.Cache().OnSet(ctx, cacheKey, len(data))
		}
	}
	return l, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, t *tree.Tree, opts Options) (*layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, t, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns
// cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, t *tree.Tree, l *layout.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := layout.Marshal(l, t)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache.
	allCached := true
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := r.renderFormats(t, l, layoutData, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, t *tree.Tree, l *layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, t, l, opts)
	return artifacts, err
}

func (r *Runner) renderFormats(t *tree.Tree, l *layout.Layout, layoutData []byte, opts Options) (map[string][]byte, error) {
	vizOpts := treeviz.Options{MaxDepth: opts.MaxDepth, ColorLeaves: opts.ColorLeaves}

	// DOT is the base for svg and png, generated at most once.
	var dot string
	needDOT := false
	for _, f := range opts.Formats {
		if f != FormatJSON {
			needDOT = true
		}
	}
	if needDOT {
		var err error
		dot, err = treeviz.ToDOT(t, l, vizOpts)
		if err != nil {
			return nil, err
		}
	}

	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			out[format] = []byte(dot)
		case FormatSVG:
			svg, err := treeviz.RenderSVG(dot)
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			out[format] = svg
		case FormatPNG:
			png, err := treeviz.RenderPNG(dot)
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			out[format] = png
		case FormatJSON:
			out[format] = layoutData
		}
	}
	return out, nil
}

// problemHash fingerprints the problem input for cache keys and API
// responses.
func (r *Runner) problemHash(opts Options) string {
	data, err := graph.MarshalProblem(opts.Problem)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// treeHash fingerprints a built tree for layout cache keys.
func (r *Runner) treeHash(t *tree.Tree) string {
	data, err := tree.MarshalTree(t)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
