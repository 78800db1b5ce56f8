package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heatmap/pkg/cache"
	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/observability"
	"github.com/matzehuels/heatmap/pkg/portfolio"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner holds no pipeline results; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Logger: logger,
	}
}

// Execute runs the complete import → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	importStart := time.Now()
	p, err := r.Import(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	importTime := time.Since(importStart)

	opts.Logger.Info("imported portfolio",
		"name", p.Name,
		"positions", len(p.Positions),
		"duration", importTime)

	result, err := r.ExecutePortfolio(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ImportTime = importTime
	return result, nil
}

// ExecutePortfolio runs layout and render for an in-memory portfolio.
func (r *Runner) ExecutePortfolio(ctx context.Context, p portfolio.Portfolio, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Portfolio: p,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Positions = len(p.Positions)

	// Stage 1: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.Cells = len(l.Cells)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit
	result.InputHash, _ = cache.HashJSON(p)

	opts.Logger.Info("computed layout",
		"cells", len(l.Cells),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Import reads the portfolio named by opts.Input.
func (r *Runner) Import(ctx context.Context, opts Options) (portfolio.Portfolio, error) {
	return Import(ctx, opts.Input)
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, p portfolio.Portfolio, opts Options) (*heatmap.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	inputHash, err := cache.HashJSON(p)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit := r.cacheGet(ctx, cacheKey, keyTypeLayout, opts.Logger); hit {
			cached, err := heatmap.Unmarshal(data)
			if err == nil {
				return cached, true, nil
			}
			// corrupt entry: recompute and overwrite
			opts.Logger.Debug("discarding cached layout", "key", cacheKey, "err", err)
		}
	}

	l, err := GenerateLayout(ctx, p, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := heatmap.Marshal(l); err == nil {
		r.cacheSet(ctx, cacheKey, keyTypeLayout, data, cache.TTLLayout, opts.Logger)
	}
	return l, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, p portfolio.Portfolio, opts Options) (*heatmap.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, p, opts)
	return l, err
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
// The hit is reported only when every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *heatmap.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	layoutData, err := heatmap.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit := r.cacheGet(ctx, key, keyTypeArtifact, opts.Logger); hit {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, l, renderOpts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.cacheSet(ctx, key, keyTypeArtifact, data, cache.TTLArtifact, opts.Logger)
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, l *heatmap.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cacheGet reads key, treating backend errors as misses.
func (r *Runner) cacheGet(ctx context.Context, key, keyType string, logger *log.Logger) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "type", keyType, "err", err)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// cacheSet writes key; failures are logged and otherwise ignored.
func (r *Runner) cacheSet(ctx context.Context, key, keyType string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
