package benchmark

import (
	"fmt"
	"path"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
)

// StackDepths are the fragment counts benchmarked.
var StackDepths = []int{2, 8, 32}

// PackageCounts are the directory counts under a wildcard level.
var PackageCounts = []int{10, 100, 1000}

const projectDir = "/work"

// newStack returns depth fragments, each overriding a few plain keys and
// adding one level, with the first one marked as the project root.
func newStack(depth int) []map[string]any {
	stack := make([]map[string]any, depth)
	for i := range stack {
		stack[i] = map[string]any{
			"name":  fmt.Sprintf("fragment-%d", i),
			"index": i,
			"lint": map[string]any{
				"strict": i%2 == 0,
				"rules":  []any{"a", "b", fmt.Sprintf("r%d", i)},
			},
			"levels": map[string]any{
				fmt.Sprintf("dir-%d", i): map[string]any{"depth": i},
				"packages/*":             map[string]any{"published": true},
			},
			"modules": map[string]any{
				"build": map[string]any{"target": fmt.Sprintf("t%d", i)},
			},
			"__source": path.Join(projectDir, ".projconfrc"),
		}
	}
	stack[0]["root"] = true
	return stack
}

// newPackagesFS lays out count directories under /work/packages.
func newPackagesFS(b *testing.B, count int) billy.Filesystem {
	b.Helper()
	fs := memfs.New()
	for i := 0; i < count; i++ {
		if err := fs.MkdirAll(path.Join(projectDir, "packages", fmt.Sprintf("pkg-%04d", i)), 0755); err != nil {
			b.Fatalf("MkdirAll failed: %v", err)
		}
	}
	return fs
}
