package measure

import (
	"io"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of distinct labels [NewCached] remembers.
const DefaultCacheSize = 4096

type cacheKey struct {
	label    string
	maxWidth float64
}

// Cached memoizes another provider. Layout passes re-measure every label on
// every scale change, so repeated labels are served from the cache.
type Cached struct {
	inner Provider
	cache *lru.Cache
}

// NewCached wraps inner with an LRU cache holding up to size entries.
func NewCached(inner Provider, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Measure implements [Provider].
func (c *Cached) Measure(label string, maxWidth float64) Metrics {
	key := cacheKey{label, maxWidth}
	if v, ok := c.cache.Get(key); ok {
		return v.(Metrics)
	}
	m := c.inner.Measure(label, maxWidth)
	c.cache.Add(key, m)
	return m
}

// Len returns the number of cached entries.
func (c *Cached) Len() int { return c.cache.Len() }

// Close releases the wrapped provider if it holds resources.
func (c *Cached) Close() error {
	c.cache.Purge()
	return Close(c.inner)
}

// Close releases p if it implements [io.Closer], such as a [Font] or a
// [Cached] wrapping one. Other providers are left alone.
func Close(p Provider) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
