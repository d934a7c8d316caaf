// Package cache stores rendered artifacts so repeated renders of an
// unchanged dataset skip the drawing work.
//
// Only sink output (SVG, PNG, PDF, JSON bytes) is cached. Layout results
// are always recomputed from the current items.
//
// # Backends
//
//   - [NullCache]: stores nothing; used when caching is disabled
//   - [FileCache]: one JSON entry file per key on an afero filesystem
//   - [RedisCache]: go-redis client with native key expiry
//
// # Keys
//
// A [Keyer] derives keys from a dataset hash and the render options.
// [NewScopedKeyer] adds a namespace prefix, which keeps a shared Redis
// instance tidy.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Describe names the backend behind c.
func Describe(c Cache) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}
