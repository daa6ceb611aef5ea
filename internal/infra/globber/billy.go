package globber

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/yndnr/projconf/internal/core/domain"
)

// BillyGlobber matches patterns against a go-billy filesystem.
type BillyGlobber struct {
	fs billy.Filesystem
}

// NewBillyGlobber creates a globber over fs. A nil fs means the host
// filesystem rooted at "/".
func NewBillyGlobber(fs billy.Filesystem) *BillyGlobber {
	if fs == nil {
		fs = osfs.New("/")
	}
	return &BillyGlobber{fs: fs}
}

// Glob returns the sorted names of the directories directly under baseDir
// that match pattern. baseDir is taken literally, so it may contain glob
// metacharacters.
func (g *BillyGlobber) Glob(ctx context.Context, baseDir, pattern string) ([]string, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := g.fs.Stat(baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, domain.ErrGlobFailed.WithDetails(baseDir).WithCause(err)
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	entries, err := g.fs.ReadDir(baseDir)
	if err != nil {
		return nil, domain.ErrGlobFailed.WithDetails(baseDir).WithCause(err)
	}

	names := []string{}
	for _, fi := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if Match(pattern, fi.Name()) && g.isDir(baseDir, fi) {
			names = append(names, fi.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

func (g *BillyGlobber) isDir(baseDir string, fi os.FileInfo) bool {
	if fi.IsDir() {
		return true
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return false
	}
	target, err := g.fs.Stat(g.fs.Join(baseDir, fi.Name()))
	return err == nil && target.IsDir()
}
