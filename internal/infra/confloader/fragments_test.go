package confloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/projconf/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// fixture lays out:
//
//	<tmp>/home/.projconfrc
//	<tmp>/work/.projconfrc
//	<tmp>/work/app/.projconfrc.yaml
//	<tmp>/work/app/pkg/
func fixture(t *testing.T) (root, home, cwd string) {
	t.Helper()
	root = t.TempDir()
	home = filepath.Join(root, "home")
	cwd = filepath.Join(root, "work", "app", "pkg")

	writeFile(t, filepath.Join(home, ".projconfrc"), "who: home\nhome: true\n")
	writeFile(t, filepath.Join(root, "work", ".projconfrc"), "who: work\nwork: true\n")
	writeFile(t, filepath.Join(root, "work", "app", ".projconfrc.yaml"), "who: app\nlevels:\n  .:\n    strict: true\n")
	if err := os.MkdirAll(cwd, 0755); err != nil {
		t.Fatal(err)
	}
	return root, home, cwd
}

func TestFragmentLoader_Load_Order(t *testing.T) {
	root, home, cwd := fixture(t)

	l := NewFragmentLoader()
	stack, err := l.Load(context.Background(), FragmentOptions{
		Defaults:  map[string]any{"who": "defaults"},
		ExtendBy:  map[string]any{"who": "extend"},
		FsRoot:    root,
		FsHome:    home,
		Cwd:       cwd,
		EnvPrefix: "projconf_test_none_",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var got []any
	for _, f := range stack {
		got = append(got, f.Plain()["who"])
	}
	want := []any{"defaults", "home", "work", "app", "extend"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() order mismatch (-want +got):\n%s", diff)
	}

	wantSources := []string{
		filepath.Join(home, ".projconfrc"),
		filepath.Join(root, "work", ".projconfrc"),
		filepath.Join(root, "work", "app", ".projconfrc.yaml"),
	}
	if diff := cmp.Diff(wantSources, stack.Sources()); diff != "" {
		t.Errorf("Sources() mismatch (-want +got):\n%s", diff)
	}
}

func TestFragmentLoader_Load_StopsAtRoot(t *testing.T) {
	root, home, cwd := fixture(t)
	writeFile(t, filepath.Join(root, "work", "app", "pkg", ".projconfrc"), "root: true\nwho: marker\n")

	stack, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		FsRoot:    root,
		FsHome:    home,
		Cwd:       cwd,
		EnvPrefix: "projconf_test_none_",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var got []any
	for _, f := range stack {
		got = append(got, f.Plain()["who"])
	}
	if diff := cmp.Diff([]any{"home", "marker"}, got); diff != "" {
		t.Errorf("Load() climbed past the root marker (-want +got):\n%s", diff)
	}
	if !stack[1].IsRoot() {
		t.Error("last fragment should be the root marker")
	}
}

func TestFragmentLoader_Load_FirstExistingPerDirectory(t *testing.T) {
	root := t.TempDir()
	home := filepath.Join(root, "home")
	cwd := filepath.Join(root, "proj")
	writeFile(t, filepath.Join(cwd, ".projconfrc"), "who: plain\n")
	writeFile(t, filepath.Join(cwd, ".projconfrc.json"), `{"who": "json", "extra": true}`)

	stack, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		FsRoot:    root,
		FsHome:    home,
		Cwd:       cwd,
		EnvPrefix: "projconf_test_none_",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{filepath.Join(cwd, ".projconfrc")}
	if diff := cmp.Diff(want, stack.Sources()); diff != "" {
		t.Errorf("Sources() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := stack[0].Plain()["extra"]; ok {
		t.Error("second candidate in the same directory should be ignored")
	}
}

func TestFragmentLoader_Load_FirstExistingPerHomeGroup(t *testing.T) {
	root := t.TempDir()
	home := filepath.Join(root, "home")
	cwd := filepath.Join(root, "proj")
	writeFile(t, filepath.Join(home, ".config", "projconf", "config"), "who: xdg\n")
	writeFile(t, filepath.Join(home, ".config", "projconf", "config.yaml"), "who: xdg-yaml\n")
	writeFile(t, filepath.Join(home, ".projconfrc.json"), `{"who": "rc-json"}`)
	writeFile(t, filepath.Join(home, ".projconfrc.yml"), "who: rc-yml\n")
	if err := os.MkdirAll(cwd, 0755); err != nil {
		t.Fatal(err)
	}

	stack, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		FsRoot:    root,
		FsHome:    home,
		Cwd:       cwd,
		EnvPrefix: "projconf_test_none_",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{
		filepath.Join(home, ".config", "projconf", "config"),
		filepath.Join(home, ".projconfrc.json"),
	}
	if diff := cmp.Diff(want, stack.Sources()); diff != "" {
		t.Errorf("Sources() mismatch (-want +got):\n%s", diff)
	}
}

func TestFragmentLoader_Load_FirstCandidateParseError(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, ".projconfrc"), "a: [unclosed\n")
	writeFile(t, filepath.Join(cwd, ".projconfrc.yaml"), "who: fallback\n")

	_, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		FsRoot:    cwd,
		FsHome:    filepath.Join(cwd, "nohome"),
		Cwd:       cwd,
		EnvPrefix: "projconf_test_none_",
	})
	if !errors.Is(err, domain.ErrConfigFileParse) {
		t.Errorf("Load() error = %v, want ErrConfigFileParse", err)
	}
}

func TestFragmentLoader_Load_SkipsHomeDuringWalk(t *testing.T) {
	root := t.TempDir()
	home := filepath.Join(root, "home")
	cwd := filepath.Join(home, "project")
	writeFile(t, filepath.Join(home, ".projconfrc"), "who: home\n")
	writeFile(t, filepath.Join(cwd, ".projconfrc"), "who: project\n")

	stack, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		FsRoot:    root,
		FsHome:    home,
		Cwd:       cwd,
		EnvPrefix: "projconf_test_none_",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stack) != 2 {
		t.Fatalf("Load() returned %d fragments, want 2", len(stack))
	}
	if stack[0].Plain()["who"] != "home" || stack[1].Plain()["who"] != "project" {
		t.Errorf("Load() = %v", stack.Raw())
	}
}

func TestFragmentLoader_Load_PathToConfig(t *testing.T) {
	root, home, cwd := fixture(t)
	explicit := filepath.Join(root, "explicit.yaml")
	writeFile(t, explicit, "who: explicit\n")

	stack, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		PathToConfig: explicit,
		FsRoot:       root,
		FsHome:       home,
		Cwd:          cwd,
		EnvPrefix:    "projconf_test_none_",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stack) != 1 {
		t.Fatalf("Load() returned %d fragments, want 1", len(stack))
	}
	if stack[0].Source() != explicit {
		t.Errorf("Source() = %q, want %q", stack[0].Source(), explicit)
	}
}

func TestFragmentLoader_Load_PathToConfigRelative(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "conf", "rc.json"), `{"who": "json"}`)

	stack, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		PathToConfig: filepath.Join("conf", "rc.json"),
		Cwd:          cwd,
		EnvPrefix:    "projconf_test_none_",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := stack[0].Plain()["who"]; got != "json" {
		t.Errorf("who = %v, want json", got)
	}
}

func TestFragmentLoader_Load_PathToConfigMissing(t *testing.T) {
	cwd := t.TempDir()

	_, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		PathToConfig: filepath.Join(cwd, "missing.yaml"),
		Cwd:          cwd,
	})
	if !errors.Is(err, domain.ErrConfigFileNotFound) {
		t.Errorf("Load() error = %v, want ErrConfigFileNotFound", err)
	}
}

func TestFragmentLoader_Load_ParseError(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, ".projconfrc"), "a: [unclosed\n")

	_, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		FsRoot:    cwd,
		FsHome:    filepath.Join(cwd, "nohome"),
		Cwd:       cwd,
		EnvPrefix: "projconf_test_none_",
	})
	if !errors.Is(err, domain.ErrConfigFileParse) {
		t.Errorf("Load() error = %v, want ErrConfigFileParse", err)
	}
}

func TestFragmentLoader_Load_Env(t *testing.T) {
	cwd := t.TempDir()
	t.Setenv("myrc_levels__blocks__strict", "true")
	t.Setenv("myrc_colour", "blue")

	stack, err := NewFragmentLoader().Load(context.Background(), FragmentOptions{
		Name:   "myrc",
		FsRoot: cwd,
		FsHome: filepath.Join(cwd, "nohome"),
		Cwd:    cwd,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stack) != 1 {
		t.Fatalf("Load() returned %d fragments, want 1", len(stack))
	}

	want := map[string]any{
		"colour": "blue",
		"levels": map[string]any{
			"blocks": map[string]any{"strict": "true"},
		},
	}
	if diff := cmp.Diff(want, stack[0].Raw()); diff != "" {
		t.Errorf("env fragment mismatch (-want +got):\n%s", diff)
	}
	if stack[0].Source() != "" {
		t.Errorf("env fragment Source() = %q, want empty", stack[0].Source())
	}
}

func TestFragmentLoader_Load_Canceled(t *testing.T) {
	_, _, cwd := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFragmentLoader().Load(ctx, FragmentOptions{Cwd: cwd})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestHomeCandidates(t *testing.T) {
	got := homeCandidates("/h", "demo")
	if len(got) != 2 {
		t.Fatalf("homeCandidates() returned %d groups, want 2", len(got))
	}
	if got[0][0] != filepath.Join("/h", ".config", "demo", "config") {
		t.Errorf("first xdg candidate = %q", got[0][0])
	}
	if last := got[1][len(got[1])-1]; last != filepath.Join("/h", ".demorc.yml") {
		t.Errorf("last rc candidate = %q", last)
	}
}

func TestAncestors(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		stop string
		want []string
	}{
		{"stop is ancestor", "/a/b/c", "/a", []string{"/a/b/c", "/a/b", "/a"}},
		{"stop is self", "/a", "/a", []string{"/a"}},
		{"stop unrelated", "/a/b", "/x", []string{"/a/b", "/a", "/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ancestors(filepath.FromSlash(tt.dir), filepath.FromSlash(tt.stop))
			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.FromSlash(w))
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ancestors() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFragmentFile_KeepsDottedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".projconfrc")
	writeFile(t, path, "levels:\n  .:\n    strict: true\n  packages/*:\n    lint: true\nhost.name: build\n")

	f, err := LoadFragmentFile(path)
	if err != nil {
		t.Fatalf("LoadFragmentFile() error = %v", err)
	}
	wantLevels := map[string]any{
		".":          map[string]any{"strict": true},
		"packages/*": map[string]any{"lint": true},
	}
	if diff := cmp.Diff(wantLevels, f.Levels()); diff != "" {
		t.Errorf("Levels() mismatch (-want +got):\n%s", diff)
	}
	if f.Plain()["host.name"] != "build" {
		t.Errorf("Plain()[host.name] = %v, want build", f.Plain()["host.name"])
	}
}

func TestLoadFragmentFile_Source(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".projconfrc")
	writeFile(t, path, "__source: /elsewhere\nroot: true\n")

	f, err := LoadFragmentFile(path)
	if err != nil {
		t.Fatalf("LoadFragmentFile() error = %v", err)
	}
	if f.Source() != path {
		t.Errorf("Source() = %q, want %q", f.Source(), path)
	}
	if !f.IsRoot() {
		t.Error("IsRoot() = false, want true")
	}
}
