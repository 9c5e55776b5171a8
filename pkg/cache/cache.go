// Package cache provides pluggable byte-level caching for expensive
// pipeline stages: tree construction, layout, and rendered artifacts.
// Enumeration results are intentionally never cached; talk to the
// solver every time.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached artifact class.
const (
	// TTLTree applies to serialized decision trees. Trees are a pure
	// function of the graph and color count, so they can live long.
	TTLTree = 7 * 24 * time.Hour

	// TTLLayout applies to computed layouts.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered outputs (DOT, SVG).
	TTLArtifact = 24 * time.Hour
)

// Cache is a minimal byte-oriented cache.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// TreeKeyOpts captures the parameters that shape a decision tree.
type TreeKeyOpts struct {
	Colors      int
	NodeCeiling int
}

// LayoutKeyOpts captures the geometry parameters of a layout.
type LayoutKeyOpts struct {
	LeafGap     float64
	LevelHeight float64
}

// RenderKeyOpts captures rendering parameters.
type RenderKeyOpts struct {
	Format    string
	MaxDepth  int
	ColorLeaf bool
}

// Keyer generates cache keys for pipeline stages.
type Keyer interface {
	// TreeKey generates a key for a built decision tree.
	TreeKey(graphHash string, opts TreeKeyOpts) string

	// LayoutKey generates a key for a computed layout.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// RenderKey generates a key for a rendered artifact.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes the stage inputs into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TreeKey generates a key for a built decision tree.
func (k *DefaultKeyer) TreeKey(graphHash string, opts TreeKeyOpts) string {
	return hashKey("tree", graphHash, opts.Colors, opts.NodeCeiling)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts.LeafGap, opts.LevelHeight)
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts.Format, opts.MaxDepth, opts.ColorLeaf)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
