package projconf

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/yndnr/projconf/internal/infra/confloader"
	"github.com/yndnr/projconf/internal/telemetry/metric"
	"github.com/yndnr/projconf/pkg/cmap"
)

// DefaultCacheSize is the number of configurations a Cache keeps when no
// size is given.
const DefaultCacheSize = 128

// Cache hands out one Config per distinct Options value.
//
// Entries are keyed by Options.Fingerprint and evicted least recently used
// first. Every entry remembers the files its stack was read from, so a
// change to one rc file drops exactly the configurations that read it.
type Cache struct {
	entries *lru.Cache[string, *Config]
	sources *cmap.Index[string, string]
	logger  *slog.Logger
	metrics *metric.Registry

	// loads collapses concurrent misses for one fingerprint; misses for
	// different fingerprints load in parallel.
	loads singleflight.Group

	// mu guards watcher and keeps source registration atomic with Watch.
	mu      sync.Mutex
	watcher *confloader.Watcher
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger sets the logger for the cache.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCacheMetrics records hits and misses in r and reports the cache
// size at scrape time.
func WithCacheMetrics(r *metric.Registry) CacheOption {
	return func(c *Cache) {
		c.metrics = r
	}
}

// NewCache creates a cache holding up to size configurations.
func NewCache(size int, opts ...CacheOption) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	c := &Cache{
		sources: cmap.NewIndex[string, string](),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	entries, err := lru.NewWithEvict(size, func(fp string, _ *Config) {
		c.sources.RemoveValue(fp)
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries

	if err := c.metrics.Register(metric.NewCollector(c.Len)); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the cached Config for opts, creating and loading it on a
// miss. The with options only apply when the Config is created. Concurrent
// misses for equal options share one load, made with the first caller's
// ctx and with options. A Config whose stack fails to load is not cached.
func (c *Cache) Get(ctx context.Context, opts Options, with ...Option) (*Config, error) {
	fp, err := opts.Fingerprint()
	if err != nil {
		return nil, err
	}

	if cfg, ok := c.entries.Get(fp); ok {
		c.metrics.ObserveCache(true)
		return cfg, nil
	}

	v, err, _ := c.loads.Do(fp, func() (any, error) {
		// An earlier flight may have filled the entry since the check above.
		if cfg, ok := c.entries.Get(fp); ok {
			c.metrics.ObserveCache(true)
			return cfg, nil
		}
		c.metrics.ObserveCache(false)
		return c.load(ctx, fp, opts, with)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Config), nil
}

func (c *Cache) load(ctx context.Context, fp string, opts Options, with []Option) (*Config, error) {
	cfg := New(opts, with...)
	sources, err := cfg.Sources(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries.Add(fp, cfg)
	for _, src := range sources {
		c.sources.Add(filepath.Clean(src), fp)
	}
	if c.watcher != nil {
		if err := c.watcher.WatchAll(sources); err != nil {
			c.logger.Warn("failed to watch config sources",
				"fingerprint", fp,
				"error", err,
			)
		}
	}
	c.mu.Unlock()

	c.logger.Debug("config cached",
		"fingerprint", fp,
		"config_id", cfg.ID(),
		"sources", len(sources),
	)
	return cfg, nil
}

// Invalidate drops the entry for opts and reports whether there was one.
func (c *Cache) Invalidate(opts Options) bool {
	fp, err := opts.Fingerprint()
	if err != nil {
		return false
	}
	return c.entries.Remove(fp)
}

// InvalidateSource drops every entry whose stack was read from path and
// returns how many were dropped.
func (c *Cache) InvalidateSource(path string) int {
	n := 0
	for _, fp := range c.sources.Take(filepath.Clean(path)) {
		if c.entries.Remove(fp) {
			n++
		}
	}
	if n > 0 {
		c.logger.Debug("config cache invalidated",
			"source", path,
			"entries", n,
		)
	}
	return n
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.entries.Purge()
	c.sources.Clear()
}

// Len returns the number of cached configurations.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Watch invalidates entries whenever w reports a change to one of their
// source files. Sources of entries already cached and of entries added
// later are registered with w. Starting and stopping w is up to the
// caller.
func (c *Cache) Watch(w *confloader.Watcher) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := w.WatchAll(c.sources.Keys()); err != nil {
		return err
	}
	w.OnChange(func(path string) {
		c.InvalidateSource(path)
	})
	c.watcher = w
	return nil
}
