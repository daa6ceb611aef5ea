package globber

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/yndnr/projconf/internal/core/domain"
)

// ValidatePattern checks that pattern is a single path segment containing
// exactly one '*'.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return domain.ErrInvalidPattern.WithDetails("empty pattern")
	}
	if strings.ContainsAny(pattern, `/\`) {
		return domain.ErrInvalidPattern.WithDetails(pattern + ": must not contain a path separator")
	}
	if strings.Count(pattern, "*") != 1 {
		return domain.ErrInvalidPattern.WithDetails(pattern + ": exactly one '*' is supported")
	}
	if !doublestar.ValidatePattern(pattern) {
		return domain.ErrInvalidPattern.WithDetails(pattern)
	}
	return nil
}

// DirGlobber matches patterns against the host filesystem.
type DirGlobber struct{}

// NewDirGlobber creates a globber for the host filesystem.
func NewDirGlobber() *DirGlobber {
	return &DirGlobber{}
}

// Glob returns the sorted names of the directories directly under baseDir
// that match pattern.
func (g *DirGlobber) Glob(ctx context.Context, baseDir, pattern string) ([]string, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, domain.ErrGlobFailed.WithDetails(baseDir).WithCause(err)
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, domain.ErrGlobFailed.WithDetails(baseDir).WithCause(err)
	}

	names := []string{}
	for _, d := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if Match(pattern, d.Name()) && isDir(baseDir, d) {
			names = append(names, d.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// Match reports whether a directory name matches pattern. Names starting
// with '.' only match patterns that start with '.' too.
func Match(pattern, name string) bool {
	if strings.HasPrefix(name, ".") && !strings.HasPrefix(pattern, ".") {
		return false
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// isDir follows symlinks so a linked level directory still matches.
func isDir(baseDir string, d fs.DirEntry) bool {
	if d.IsDir() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(baseDir, d.Name()))
	return err == nil && info.IsDir()
}
