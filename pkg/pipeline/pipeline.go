// Package pipeline runs the build → enumerate → layout → render chain
// behind the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: construct the complete classified decision tree
//  2. Enumerate: cross-check valid leaves against the external solver
//  3. Layout: compute node positions for rendering
//  4. Render: generate output artifacts (DOT, SVG, PNG, JSON)
//
// Build, layout, and render results are cached; enumeration talks to
// the solver every time and is never served from cache, so a stale
// cache can never hide a reconciliation mismatch.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, oracle, logger)
//	opts := pipeline.Options{
//	    Problem: problem,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chromatree/chromatree/pkg/cache"
	"github.com/chromatree/chromatree/pkg/enumerate"
	"github.com/chromatree/chromatree/pkg/graph"
	"github.com/chromatree/chromatree/pkg/tree"
	"github.com/chromatree/chromatree/pkg/tree/layout"
)

// Format constants for output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	// FormatJSON emits the serialized layout document.
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Problem is the coloring problem: graph plus color count.
	Problem graph.Problem `json:"problem"`

	// Build options
	NodeCeiling int  `json:"node_ceiling,omitempty"`
	Refresh     bool `json:"refresh,omitempty"`

	// Enumeration options
	SkipEnumeration bool `json:"skip_enumeration,omitempty"`
	MaxIterations   int  `json:"max_iterations,omitempty"`
	Retries         int  `json:"retries,omitempty"`

	// Layout options
	LeafGap     float64 `json:"leaf_gap,omitempty"`
	LevelHeight float64 `json:"level_height,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	MaxDepth    int      `json:"max_depth,omitempty"`
	ColorLeaves bool     `json:"color_leaves,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the built, classified decision tree. When enumeration ran,
	// its leaves carry provenance annotations.
	Tree *tree.Tree

	// GraphHash is the content hash of the problem input.
	GraphHash string

	// Enumeration is the final enumeration state, nil when skipped.
	Enumeration *enumerate.State

	// Layout holds the computed node positions.
	Layout *layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TotalNodes    int
	ValidLeaves   int
	InvalidLeaves int
	Iterations    int

	BuildTime     time.Duration
	EnumerateTime time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each cacheable pipeline stage.
// Enumeration has no slot here on purpose.
type CacheInfo struct {
	TreeHit   bool // Whether the built tree came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks the problem input and applies build defaults.
func (o *Options) ValidateForBuild() error {
	if o.Problem.Nodes < 1 {
		return fmt.Errorf("problem must have at least one node")
	}
	if o.Problem.Colors < 1 {
		return fmt.Errorf("problem must have at least one color")
	}
	if o.NodeCeiling == 0 {
		o.NodeCeiling = tree.DefaultNodeCeiling
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.LeafGap == 0 {
		o.LeafGap = layout.DefaultLeafGap
	}
	if o.LevelHeight == 0 {
		o.LevelHeight = layout.DefaultLevelHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// EnumerateOptions converts pipeline options to enumeration options.
func (o *Options) EnumerateOptions() enumerate.Options {
	return enumerate.Options{
		MaxIterations: o.MaxIterations,
		Retries:       o.Retries,
		Logger:        o.Logger,
	}
}

// TreeKeyOpts returns cache key options for the build stage.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	return cache.TreeKeyOpts{
		Colors:      o.Problem.Colors,
		NodeCeiling: o.NodeCeiling,
	}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		LeafGap:     o.LeafGap,
		LevelHeight: o.LevelHeight,
	}
}

// RenderKeyOpts returns cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:    format,
		MaxDepth:  o.MaxDepth,
		ColorLeaf: o.ColorLeaves,
	}
}
