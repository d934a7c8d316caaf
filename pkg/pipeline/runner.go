package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/numberline/pkg/cache"
	"github.com/matzehuels/numberline/pkg/config"
	"github.com/matzehuels/numberline/pkg/measure"
	"github.com/matzehuels/numberline/pkg/observability"
	"github.com/matzehuels/numberline/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and the viewer all use it so that caching and hook
// calls are the same everywhere.
//
// The Runner keeps no pipeline results. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Repo   store.Repository
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the expiry of cached artifacts.
	TTL time.Duration

	mu        sync.Mutex
	providers map[providerKey]measure.Provider
}

type providerKey struct {
	name   string
	layout config.Layout
}

// NewRunner creates a runner over repo.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(repo store.Repository, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Repo:      repo,
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		TTL:       DefaultArtifactTTL,
		providers: make(map[providerKey]measure.Provider),
	}
}

// Execute runs the complete snapshot → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.Layout(ctx, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout reads the current items and runs one layout pass. A failed pass
// returns no result.
func (r *Runner) Layout(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	raws, err := r.Repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	m, err := opts.Mapper()
	if err != nil {
		return nil, err
	}
	p, err := r.provider(opts)
	if err != nil {
		return nil, err
	}

	strategy := opts.LayoutStrategy()
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(strategy), len(raws))

	start := time.Now()
	res, err := LayoutItems(raws, m, p, opts.Layout, strategy)
	elapsed := time.Since(start)
	hooks.OnLayoutComplete(ctx, string(strategy), res.Rows, elapsed, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	r.Logger.Debug("computed layout",
		"items", len(res.Items),
		"rows", res.Rows,
		"height", res.Height,
		"strategy", strategy,
		"duration", elapsed)

	return &Result{
		Items:       raws,
		DatasetHash: cache.HashJSON(raws),
		Mapper:      m,
		Layout:      res,
		Stats: Stats{
			ItemCount:  len(res.Items),
			Rows:       res.Rows,
			LayoutTime: elapsed,
		},
	}, nil
}

// RenderWithCacheInfo draws result in every requested format and reports
// whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(result.DatasetHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				r.Logger.Warn("cache read failed", "format", format, "error", err)
			}
			if err != nil || !hit {
				cacheHooks.OnCacheMiss(ctx, format)
				break
			}
			cacheHooks.OnCacheHit(ctx, format)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	if opts.Provider == nil {
		p, err := r.provider(opts)
		if err != nil {
			return nil, false, err
		}
		opts.Provider = p
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(result.Layout, result.Mapper, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(result.DatasetHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, format, len(data))
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, result *Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, result, opts)
	return artifacts, err
}

// provider returns opts.Provider, or a shared provider for opts.Metrics.
// Font providers are built once per layout configuration.
func (r *Runner) provider(opts Options) (measure.Provider, error) {
	if opts.Provider != nil {
		return opts.Provider, nil
	}
	key := providerKey{opts.Metrics, opts.Layout}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[key]; ok {
		return p, nil
	}
	p, err := NewProvider(opts.Metrics, opts.Layout)
	if err != nil {
		return nil, err
	}
	if r.providers == nil {
		r.providers = make(map[providerKey]measure.Provider)
	}
	r.providers[key] = p
	return p, nil
}

// Close releases resources held by the runner: shared metrics providers,
// the cache and the repository.
func (r *Runner) Close() error {
	var errs []error
	r.mu.Lock()
	for key, p := range r.providers {
		if err := measure.Close(p); err != nil {
			errs = append(errs, fmt.Errorf("close %s metrics: %w", key.name, err))
		}
		delete(r.providers, key)
	}
	r.mu.Unlock()
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if r.Repo != nil {
		if err := r.Repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
