// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about tree builds, solver enumeration, layout
// computation, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This avoids import cycles (hooks are registered by main, not by
// libraries) and keeps the core library free of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnBuildStart(ctx, nodes, colors)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the exploration pipeline.
type PipelineHooks interface {
	// Build events
	OnBuildStart(ctx context.Context, nodes, colors int)
	OnBuildComplete(ctx context.Context, totalNodes, validLeaves int, duration time.Duration, err error)

	// Enumeration events
	OnEnumerateStart(ctx context.Context, nodes, colors int)
	OnEnumerateComplete(ctx context.Context, iterations, found int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, totalNodes int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)
}

// EnumerationHooks receives per-iteration events from the solver loop.
type EnumerationHooks interface {
	// OnIteration fires after each completed solver invocation with the
	// number of newly discovered colorings and the running total.
	OnIteration(ctx context.Context, iteration, added, total int)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnHit(ctx context.Context, key string)
	OnMiss(ctx context.Context, key string)
	OnSet(ctx context.Context, key string, size int)
}

// =============================================================================
// No-op Defaults
// =============================================================================

type nopPipelineHooks struct{}

func (nopPipelineHooks) OnBuildStart(context.Context, int, int)                              {}
func (nopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration, error)     {}
func (nopPipelineHooks) OnEnumerateStart(context.Context, int, int)                          {}
func (nopPipelineHooks) OnEnumerateComplete(context.Context, int, int, time.Duration, error) {}
func (nopPipelineHooks) OnLayoutStart(context.Context, int)                                  {}
func (nopPipelineHooks) OnLayoutComplete(context.Context, time.Duration, error)              {}

type nopEnumerationHooks struct{}

func (nopEnumerationHooks) OnIteration(context.Context, int, int, int) {}

type nopCacheHooks struct{}

func (nopCacheHooks) OnHit(context.Context, string)      {}
func (nopCacheHooks) OnMiss(context.Context, string)     {}
func (nopCacheHooks) OnSet(context.Context, string, int) {}

// =============================================================================
// Registration
// =============================================================================

var (
	mu               sync.RWMutex
	pipelineHooks    PipelineHooks    = nopPipelineHooks{}
	enumerationHooks EnumerationHooks = nopEnumerationHooks{}
	cacheHooks       CacheHooks       = nopCacheHooks{}
)

// SetPipelineHooks registers pipeline hooks. Pass nil to restore no-ops.
func SetPipelineHooks(h PipelineHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		pipelineHooks = nopPipelineHooks{}
		return
	}
	pipelineHooks = h
}

// SetEnumerationHooks registers enumeration hooks. Pass nil to restore no-ops.
func SetEnumerationHooks(h EnumerationHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		enumerationHooks = nopEnumerationHooks{}
		return
	}
	enumerationHooks = h
}

// SetCacheHooks registers cache hooks. Pass nil to restore no-ops.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		cacheHooks = nopCacheHooks{}
		return
	}
	cacheHooks = h
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return pipelineHooks
}

// Enumeration returns the registered enumeration hooks.
func Enumeration() EnumerationHooks {
	mu.RLock()
	defer mu.RUnlock()
	return enumerationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}
