package command

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/urfave/cli/v2"
)

const projectRC = `root: true
name: demo
db:
  password: hunter2
lint:
  strict: false
levels:
  src:
    lint:
      strict: true
  packages/*:
    published: true
libs:
  shared:
    owner: platform
modules:
  build:
    target: es2020
`

// project lays out <tmp>/proj with an rc file and a few level directories
// and returns the global flags that point the CLI at it.
func project(t *testing.T) (dir string, flags []string) {
	t.Helper()
	tmp := t.TempDir()
	dir = filepath.Join(tmp, "proj")
	for _, d := range []string{"src", "packages/a", "packages/b"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, ".projconfrc"), []byte(projectRC), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, []string{
		"--cwd", dir,
		"--fs-root", tmp,
		"--fs-home", filepath.Join(tmp, "home"),
		"--env-prefix", "projconf_cmd_test_",
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testApp returns the App wired to out with exit handling disabled.
func testApp(out, errOut *syncBuffer) *cli.App {
	app := App()
	app.Writer = out
	app.ErrWriter = errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

// run executes the CLI with an isolated preferences file and returns
// stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(context.Background(), t, args...)
}

func runContext(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut syncBuffer
	argv := append([]string{"projconf", "--cli-config", filepath.Join(t.TempDir(), "cli.yaml")}, args...)
	err := testApp(&out, &errOut).RunContext(ctx, argv)
	return out.String(), err
}

// runJSON runs the CLI with -o json and decodes stdout into v.
func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := run(t, append([]string{"-o", "json"}, args...)...)
	if err != nil {
		t.Fatalf("run(%v) error = %v", args, err)
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("run(%v) output is not JSON: %v\n%s", args, err, out)
	}
}
