package projconf

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/projconf/internal/core/domain"
	"github.com/yndnr/projconf/internal/core/merge"
	"github.com/yndnr/projconf/internal/core/resolve"
	"github.com/yndnr/projconf/internal/infra/confloader"
	"github.com/yndnr/projconf/internal/infra/globber"
	"github.com/yndnr/projconf/internal/telemetry/metric"
)

// Globber lists the directories directly under baseDir whose names match
// a single-wildcard pattern, sorted. A missing baseDir yields no names and
// no error.
type Globber = resolve.Globber

// Loader produces the fragment stack for opts, lowest precedence first.
// A fragment may carry its file location under the "__source" key.
type Loader func(ctx context.Context, opts Options) ([]map[string]any, error)

// Config resolves one project configuration.
//
// The fragment stack is loaded on first use and shared by every later call
// until Reload. A failed load is not remembered. All methods are safe for
// concurrent use.
type Config struct {
	opts        Options
	id          string
	cwd         string
	base        *slog.Logger
	logger      *slog.Logger
	metrics     *metric.Registry
	globber     Globber
	load        func(ctx context.Context) (domain.Stack, error)
	concurrency int

	mu     sync.Mutex
	stack  domain.Stack
	loaded bool
}

// Option configures a Config.
type Option func(*Config)

// WithLogger sets the logger. Resolution details are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.base = logger
		}
	}
}

// WithMetrics records resolution metrics in r.
func WithMetrics(r *metric.Registry) Option {
	return func(c *Config) {
		c.metrics = r
	}
}

// WithGlobber replaces the host filesystem globber used for wildcard
// level keys.
func WithGlobber(g Globber) Option {
	return func(c *Config) {
		if g != nil {
			c.globber = g
		}
	}
}

// WithFilesystem expands wildcard level keys against fs instead of the
// host filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(c *Config) {
		c.globber = globber.NewBillyGlobber(fs)
	}
}

// WithGlobConcurrency bounds how many wildcard keys are expanded at once.
func WithGlobConcurrency(n int) Option {
	return func(c *Config) {
		c.concurrency = n
	}
}

// WithLoader replaces rc file discovery with fn.
func WithLoader(fn Loader) Option {
	return func(c *Config) {
		if fn == nil {
			return
		}
		c.load = func(ctx context.Context) (domain.Stack, error) {
			data, err := fn(ctx, c.opts)
			if err != nil {
				return nil, err
			}
			return domain.NewStack(data...), nil
		}
	}
}

// WithFragments uses a fixed fragment stack instead of loading one.
func WithFragments(fragments ...map[string]any) Option {
	stack := domain.NewStack(fragments...)
	return func(c *Config) {
		c.load = func(context.Context) (domain.Stack, error) {
			return stack, nil
		}
	}
}

func withStack(stack domain.Stack) Option {
	return func(c *Config) {
		c.load = func(context.Context) (domain.Stack, error) {
			return stack, nil
		}
	}
}

// New creates a configuration for opts. Nothing is read until the first
// method call.
func New(opts Options, with ...Option) *Config {
	c := &Config{
		opts:    opts,
		id:      newConfigID(),
		cwd:     opts.Cwd,
		base:    slog.Default(),
		globber: globber.NewDirGlobber(),
	}
	if c.cwd == "" {
		c.cwd, _ = os.Getwd()
	}

	for _, opt := range with {
		opt(c)
	}

	c.logger = c.base.With("config_id", c.id)
	if c.load == nil {
		loader := confloader.NewFragmentLoader(confloader.WithFragmentLogger(c.logger))
		c.load = func(ctx context.Context) (domain.Stack, error) {
			fo := c.opts.fragmentOptions()
			fo.Cwd = c.cwd
			return loader.Load(ctx, fo)
		}
	}
	return c
}

func newConfigID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

// ID returns the unique identifier of this Config, as logged under
// config_id.
func (c *Config) ID() string {
	return c.id
}

// Options returns the options the Config was created with.
func (c *Config) Options() Options {
	return c.opts
}

// fragments returns the memoized stack, loading it on first use.
func (c *Config) fragments(ctx context.Context) (domain.Stack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.stack, nil
	}

	if err := c.opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	stack, err := c.load(ctx)
	c.metrics.ObserveLoad(len(stack), err)
	if err != nil {
		c.logger.Debug("fragment stack load failed", "error", err)
		return nil, fmt.Errorf("load fragments: %w", err)
	}

	c.stack = stack
	c.loaded = true
	c.logger.Debug("fragment stack loaded",
		"fragments", len(stack),
		"sources", stack.Sources(),
		"duration", time.Since(start),
	)
	return stack, nil
}

// Reload drops the memoized fragment stack; the next call loads it again.
func (c *Config) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stack = nil
	c.loaded = false
}

func (c *Config) levelOptions() resolve.LevelOptions {
	g := c.globber
	if c.metrics != nil {
		g = timedGlobber{next: g, metrics: c.metrics}
	}
	return resolve.LevelOptions{
		Cwd:         c.cwd,
		Globber:     g,
		Concurrency: c.concurrency,
	}
}

// Configs returns the raw data of every fragment, lowest precedence first,
// exactly as loaded.
func (c *Config) Configs(ctx context.Context) ([]map[string]any, error) {
	c.metrics.ObserveResolution("configs")
	stack, err := c.fragments(ctx)
	if err != nil {
		return nil, err
	}
	return stack.Raw(), nil
}

// Sources returns the distinct files the fragment stack was read from.
func (c *Config) Sources(ctx context.Context) ([]string, error) {
	stack, err := c.fragments(ctx)
	if err != nil {
		return nil, err
	}
	return stack.Sources(), nil
}

// Root returns the project root directory: the directory of the file that
// sets root: true. It is "" when that fragment has no file, and the
// search boundary (Options.FsRoot, or the filesystem root when unset) when
// no fragment sets root.
func (c *Config) Root(ctx context.Context) (string, error) {
	c.metrics.ObserveResolution("root")
	stack, err := c.fragments(ctx)
	if err != nil {
		return "", err
	}
	return resolve.RootDir(stack, c.opts.fsRoot()), nil
}

// Get returns the merged configuration of the whole stack. Plain keys
// are overridden by later fragments; levels, libs and modules are merged
// structurally.
func (c *Config) Get(ctx context.Context) (map[string]any, error) {
	c.metrics.ObserveResolution("get")
	stack, err := c.fragments(ctx)
	if err != nil {
		return nil, err
	}
	return merge.Flat(stack), nil
}

// Level returns the effective configuration of the level identified by
// id, or nil when no level matches. id may be a directory name, a path
// relative to Cwd, an absolute path, "." or a single-wildcard pattern.
func (c *Config) Level(ctx context.Context, id string) (map[string]any, error) {
	c.metrics.ObserveResolution("level")
	stack, err := c.fragments(ctx)
	if err != nil {
		return nil, err
	}
	conf, err := resolve.Level(ctx, stack, id, c.levelOptions())
	if err != nil {
		return nil, fmt.Errorf("resolve level %q: %w", id, err)
	}
	c.logger.Debug("level resolved", "id", id, "found", conf != nil)
	return conf, nil
}

// LevelMap returns the effective configuration of every level keyed by
// absolute directory. The map is empty when no fragment defines levels.
func (c *Config) LevelMap(ctx context.Context) (map[string]map[string]any, error) {
	c.metrics.ObserveResolution("level_map")
	stack, err := c.fragments(ctx)
	if err != nil {
		return nil, err
	}
	levels, err := resolve.Levels(ctx, stack, c.levelOptions())
	if err != nil {
		return nil, fmt.Errorf("resolve levels: %w", err)
	}
	return levels, nil
}

// Library returns the configuration of the named library, or nil when no
// fragment at or below the project root defines it. The library is
// resolved from its own fragments only, with the same options as c.
func (c *Config) Library(ctx context.Context, name string) (*Config, error) {
	c.metrics.ObserveResolution("library")
	stack, err := c.fragments(ctx)
	if err != nil {
		return nil, err
	}
	lib, ok := resolve.Library(stack, name)
	if !ok {
		return nil, nil
	}

	child := New(c.opts,
		WithLogger(c.base.With("library", name, "parent_id", c.id)),
		WithMetrics(c.metrics),
		WithGlobber(c.globber),
		WithGlobConcurrency(c.concurrency),
		withStack(lib),
	)
	child.cwd = c.cwd
	return child, nil
}

// Libraries returns the sorted names of every library in scope.
func (c *Config) Libraries(ctx context.Context) ([]string, error) {
	stack, err := c.fragments(ctx)
	if err != nil {
		return nil, err
	}
	return resolve.LibraryNames(stack), nil
}

// Module returns the merged configuration of the named module, or nil
// when no fragment at or below the project root defines it.
func (c *Config) Module(ctx context.Context, name string) (map[string]any, error) {
	c.metrics.ObserveResolution("module")
	stack, err := c.fragments(ctx)
	if err != nil {
		return nil, err
	}
	return resolve.Module(stack, name), nil
}

// Modules returns the sorted names of every module in scope.
func (c *Config) Modules(ctx context.Context) ([]string, error) {
	stack, err := c.fragments(ctx)
	if err != nil {
		return nil, err
	}
	return resolve.ModuleNames(stack), nil
}

// timedGlobber records how long each expansion takes.
type timedGlobber struct {
	next    Globber
	metrics *metric.Registry
}

func (g timedGlobber) Glob(ctx context.Context, baseDir, pattern string) ([]string, error) {
	start := time.Now()
	defer func() { g.metrics.ObserveGlob(time.Since(start)) }()
	return g.next.Glob(ctx, baseDir, pattern)
}
