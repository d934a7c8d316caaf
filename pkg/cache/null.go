package cache

import (
	"context"
	"time"
)

// NullCache stores nothing, so every render draws afresh. Reason records
// why artifact caching is off (a flag, the config, an unusable directory)
// for log output.
type NullCache struct {
	Reason string
}

// NewNullCache returns a NullCache with no recorded reason.
func NewNullCache() Cache {
	return &NullCache{}
}

// Disabled returns a NullCache recording why caching is off.
func Disabled(reason string) *NullCache {
	return &NullCache{Reason: reason}
}

func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *NullCache) Close() error {
	return nil
}

// String describes the cache for log lines.
func (c *NullCache) String() string {
	if c.Reason == "" {
		return "disabled"
	}
	return "disabled (" + c.Reason + ")"
}

var _ Cache = (*NullCache)(nil)
