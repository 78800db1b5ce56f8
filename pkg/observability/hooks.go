// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks without depending on a
// particular backend. The defaults are no-ops; main registers real
// implementations at startup:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    observability.SetCacheHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks around the work they measure:
//
//	observability.Pipeline().OnLayoutStart(ctx, positions)
//	// ... squarify ...
//	observability.Pipeline().OnLayoutComplete(ctx, cells, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the heatmap pipeline.
type PipelineHooks interface {
	// Import events
	OnImportStart(ctx context.Context, format, source string)
	OnImportComplete(ctx context.Context, format, source string, positions int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, positions int)
	OnLayoutComplete(ctx context.Context, cells int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that failed with an internal error.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnImportStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnImportComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// registry holds the active hooks. Readers receive a copy taken under mu.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

func defaults() registry {
	return registry{NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var (
	mu     sync.RWMutex
	active = defaults()
)

func update(fn func(r *registry)) {
	mu.Lock()
	defer mu.Unlock()
	fn(&active)
}

func current() registry {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current().pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current().http }

// Reset restores the no-op hooks.
func Reset() {
	update(func(r *registry) { *r = defaults() })
}
