// Package cache stores rendered exports keyed by the content that
// produced them.
//
// Rasterizing a large quilt with pattern tiles is the slowest thing the
// tool does, and the same design is often exported repeatedly (the paint
// TUI re-exports on every save, the HTTP API serves /export.png on every
// refresh). Exports are keyed by a hash of the serialized drawing plus the
// export options, so any change to a fill, the stroke, the canvas or the
// tile size produces a new key and stale entries are never served.
//
//	c, _ := cache.NewFileCache(cache.DefaultDir())
//	key := cache.Keyer{}.ExportKey(svg, cache.ExportOpts{Format: "png", Scale: 2})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
//
// [Nop] disables caching (--no-cache).
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL bounds how long an export is kept.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. hit is false on a miss or an
	// expired entry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// DefaultDir returns the user cache directory for cloverquilt, falling
// back to a temp directory when the platform has none.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "cloverquilt")
	}
	return filepath.Join(os.TempDir(), "cloverquilt-cache")
}

type nop struct{}

// Nop returns a cache that stores nothing; every Get misses.
func Nop() Cache { return nop{} }

func (nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nop) Delete(context.Context, string) error { return nil }
func (nop) Close() error { return nil }
