// Package cache stores computed heatmap layouts and rendered artifacts.
//
// The pipeline computes a layout from a portfolio and renders it to one or
// more formats. Both steps are deterministic, so their results can be keyed by
// a hash of their inputs and reused:
//
//	layout key   = hash(portfolio JSON) + layout options
//	artifact key = hash(layout JSON) + render options
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// the HTTP server, and [NullCache] when caching is disabled. Key construction
// lives behind [Keyer] so that servers can namespace keys with [ScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiration.
//
// Get reports a miss with (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Default time-to-live values.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// LayoutKeyOpts holds every option that changes a computed layout.
type LayoutKeyOpts struct {
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Palette       string  `json:"palette"`
	Limit         float64 `json:"limit,omitempty"`
	GroupBySector bool    `json:"group_by_sector,omitempty"`
	Padding       float64 `json:"padding,omitempty"`
	PreserveOrder bool    `json:"preserve_order,omitempty"`
	ClampNegative bool    `json:"clamp_negative,omitempty"`
	Title         string  `json:"title,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key builder.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns the key for a layout computed from inputHash.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey returns the key for an artifact rendered from layoutHash.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
