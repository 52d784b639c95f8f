// Package cache stores computed layouts and rendered artifacts.
//
// The layout engine is deterministic: the same tree document, options,
// viewport and interaction sequence always produce the same result. The
// pipeline exploits this by keying outputs on content hashes of their inputs
// and storing them in a [Cache]:
//
//   - [FileCache] for the CLI (one file per entry under the user cache dir)
//   - [RedisCache] for `treemap serve` when several servers share a cache
//   - [NullCache] when caching is disabled
//
// Keys are built by a [Keyer], so deployments can namespace them with
// [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
//
// Get reports a miss with ok == false and a nil error. Implementations
// treat unreadable or expired entries as misses.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Expiry for cached entries. Layout results depend only on their inputs, so
// the TTLs only bound disk and memory use.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// LayoutKeyOpts are the layout inputs besides the tree document.
type LayoutKeyOpts struct {
	OptionsHash  string   `json:"options"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	Interactions []string `json:"interactions,omitempty"`
}

// ArtifactKeyOpts are the render inputs besides the layout.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Labels bool    `json:"labels,omitempty"`
	Theme  string  `json:"theme,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey keys a layout result by the hash of its tree document.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<hash>" and "artifact:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
