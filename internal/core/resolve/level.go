package resolve

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/projconf/internal/core/domain"
	"github.com/yndnr/projconf/internal/core/merge"
)

// DefaultGlobConcurrency bounds the number of wildcard keys expanded at once.
const DefaultGlobConcurrency = 4

// Globber lists the directories directly under baseDir whose names match a
// single-wildcard pattern. Results must be sorted; a missing baseDir yields
// an empty result.
type Globber interface {
	Glob(ctx context.Context, baseDir, pattern string) ([]string, error)
}

// LevelOptions controls level resolution.
type LevelOptions struct {
	// Cwd anchors query identifiers and the keys of fragments without a
	// source. Must be absolute.
	Cwd string
	// Globber expands wildcard keys. Wildcard keys are an error without one.
	Globber Globber
	// Concurrency bounds parallel wildcard expansion (default 4).
	Concurrency int
}

// levelKey is one entry of one levels namespace, in stack order.
type levelKey struct {
	key  string
	conf map[string]any
	base string
}

// IsWildcard reports whether a level identifier is a wildcard pattern.
func IsWildcard(id string) bool {
	return strings.Contains(id, "*")
}

// NormalizeLevel resolves a non-wildcard level identifier against base.
// Absolute identifiers are only cleaned.
func NormalizeLevel(id, base string) string {
	if filepath.IsAbs(id) {
		return filepath.Clean(id)
	}
	return filepath.Join(base, id)
}

// splitWildcard returns the absolute directory to glob in and the pattern
// to match there. Only the last path segment may hold the wildcard.
func splitWildcard(id, base string) (string, string, error) {
	dir, pattern := filepath.Split(id)
	if strings.Contains(dir, "*") {
		return "", "", domain.ErrInvalidPattern.WithDetails(id + ": wildcard allowed in the last segment only")
	}
	if dir == "" {
		dir = "."
	}
	return NormalizeLevel(dir, base), pattern, nil
}

// Levels resolves every level visible from the stack into a map from
// absolute level path to effective configuration.
//
// Per eligible fragment, the levels of its libraries are folded first
// (library names in lexical order), then its own levels. Keys within one
// namespace are visited in lexical order. The effective configuration of
// a level is the plain configuration of the eligible fragments, without
// root, structurally extended by every sub-config mapped to that level.
func Levels(ctx context.Context, stack domain.Stack, opts LevelOptions) (map[string]map[string]any, error) {
	eligible := Eligible(stack)
	keys := collectKeys(eligible, opts.Cwd)

	paths, err := expand(ctx, keys, opts)
	if err != nil {
		return nil, err
	}

	confs := make(map[string]map[string]any)
	for i, k := range keys {
		for _, p := range paths[i] {
			confs[p] = merge.Structural(confs[p], k.conf)
		}
	}

	base := merge.Plain(eligible, domain.KeyRoot)
	out := make(map[string]map[string]any, len(confs))
	for p, c := range confs {
		out[p] = merge.Structural(base, c)
	}
	return out, nil
}

// Level returns the effective configuration of one level, or nil when the
// identifier resolves to no known level. The identifier is resolved against
// opts.Cwd. A wildcard identifier matches every level directory it expands
// to; their configurations are merged in path order.
func Level(ctx context.Context, stack domain.Stack, id string, opts LevelOptions) (map[string]any, error) {
	all, err := Levels(ctx, stack, opts)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	if !IsWildcard(id) {
		conf, ok := all[NormalizeLevel(id, opts.Cwd)]
		if !ok {
			return nil, nil
		}
		return conf, nil
	}

	matched, err := expand(ctx, []levelKey{{key: id, base: opts.Cwd}}, opts)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	for _, p := range matched[0] {
		if conf, ok := all[p]; ok {
			out = merge.Structural(out, conf)
		}
	}
	return out, nil
}

func collectKeys(eligible domain.Stack, cwd string) []levelKey {
	var keys []levelKey
	for _, f := range eligible {
		base := f.Dir(cwd)

		libs := f.Libs()
		for _, name := range domain.SortedKeys(libs) {
			lib := domain.NewFragment(libs[name], f.Source())
			keys = appendKeys(keys, lib.Levels(), lib.Dir(cwd))
		}

		keys = appendKeys(keys, f.Levels(), base)
	}
	return keys
}

func appendKeys(keys []levelKey, levels map[string]any, base string) []levelKey {
	for _, k := range domain.SortedKeys(levels) {
		conf := domain.AsMap(levels[k])
		if conf == nil {
			conf = map[string]any{}
		}
		keys = append(keys, levelKey{key: k, conf: conf, base: base})
	}
	return keys
}

// expand maps every key to the absolute level paths it stands for. Plain
// keys resolve in place; wildcard keys are globbed concurrently, each
// writing only its own slot so the caller can fold in key order.
func expand(ctx context.Context, keys []levelKey, opts LevelOptions) ([][]string, error) {
	type globJob struct {
		slot    int
		dir     string
		pattern string
	}

	out := make([][]string, len(keys))
	var jobs []globJob
	for i, k := range keys {
		if !IsWildcard(k.key) {
			out[i] = []string{NormalizeLevel(k.key, k.base)}
			continue
		}
		dir, pattern, err := splitWildcard(k.key, k.base)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, globJob{slot: i, dir: dir, pattern: pattern})
	}
	if len(jobs) == 0 {
		return out, nil
	}
	if opts.Globber == nil {
		return nil, domain.ErrInvalidArgument.WithDetails("wildcard levels need a globber")
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultGlobConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, j := range jobs {
		g.Go(func() error {
			names, err := opts.Globber.Glob(gctx, j.dir, j.pattern)
			if err != nil {
				return fmt.Errorf("expand level %q: %w", keys[j.slot].key, err)
			}
			sort.Strings(names)
			paths := make([]string, len(names))
			for n, name := range names {
				paths[n] = filepath.Join(j.dir, name)
			}
			out[j.slot] = paths
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
