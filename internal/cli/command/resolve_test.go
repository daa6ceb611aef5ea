package command

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"
)

func TestConfigs(t *testing.T) {
	_, flags := project(t)

	var got []map[string]any
	runJSON(t, &got, append(flags, "configs")...)

	if len(got) == 0 {
		t.Fatal("configs returned no fragments")
	}
	if last := got[len(got)-1]; last["name"] != "demo" {
		t.Errorf("last fragment name = %v, want demo", last["name"])
	}
}

func TestConfigs_Sources(t *testing.T) {
	dir, flags := project(t)

	var got []string
	runJSON(t, &got, append(flags, "configs", "--sources")...)

	want := []string{filepath.Join(dir, ".projconfrc")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("configs --sources mismatch (-want +got):\n%s", diff)
	}
}

func TestRoot(t *testing.T) {
	dir, flags := project(t)

	var got string
	runJSON(t, &got, append(flags, "root")...)
	if got != dir {
		t.Errorf("root = %q, want %q", got, dir)
	}
}

func TestGet(t *testing.T) {
	_, flags := project(t)

	var got map[string]any
	runJSON(t, &got, append(flags, "get")...)

	if got["name"] != "demo" {
		t.Errorf("name = %v, want demo", got["name"])
	}
	if diff := cmp.Diff(map[string]any{"strict": false}, got["lint"]); diff != "" {
		t.Errorf("lint mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got["modules"].(map[string]any)["build"]; !ok {
		t.Errorf("modules = %v, want build", got["modules"])
	}
}

func TestGet_Set(t *testing.T) {
	_, flags := project(t)

	var got bool
	runJSON(t, &got, append(flags, "--set", "lint.strict=true", "get", "--query", "$.lint.strict")...)
	if !got {
		t.Error("--set should override lint.strict")
	}
}

func TestGet_Defaults(t *testing.T) {
	dir, flags := project(t)
	defaults := filepath.Join(dir, "defaults.yaml")
	if err := os.WriteFile(defaults, []byte("color: blue\nname: fallback\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	runJSON(t, &got, append(flags, "--defaults", defaults, "get")...)
	if got["color"] != "blue" {
		t.Errorf("color = %v, want blue", got["color"])
	}
	if got["name"] != "demo" {
		t.Errorf("name = %v, rc file should win over defaults", got["name"])
	}
	if _, ok := got["__source"]; ok {
		t.Error("defaults must not carry a source")
	}
}

func TestGet_Query(t *testing.T) {
	_, flags := project(t)

	var got any
	runJSON(t, &got, append(flags, "get", "-q", "$.modules.build.target")...)
	if got != "es2020" {
		t.Errorf("query = %v, want es2020", got)
	}
}

func TestGet_QueryNoMatch(t *testing.T) {
	_, flags := project(t)

	_, err := run(t, append(flags, "get", "-q", "$.missing")...)
	var exit cli.ExitCoder
	if !errors.As(err, &exit) {
		t.Errorf("get -q $.missing = %v, want exit error", err)
	}
}

func TestGet_QueryInvalid(t *testing.T) {
	_, flags := project(t)

	if _, err := run(t, append(flags, "get", "-q", "$[")...); err == nil {
		t.Error("an invalid query should fail")
	}
}

func TestGet_Redact(t *testing.T) {
	_, flags := project(t)

	out, err := run(t, append(flags, "--redact", "get")...)
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("--redact leaked a password:\n%s", out)
	}
	if !strings.Contains(out, "db.password") {
		t.Errorf("table output should list db.password:\n%s", out)
	}
}

func TestLevel(t *testing.T) {
	_, flags := project(t)

	var got map[string]any
	runJSON(t, &got, append(flags, "level", "src")...)

	if diff := cmp.Diff(map[string]any{"strict": true}, got["lint"]); diff != "" {
		t.Errorf("lint mismatch (-want +got):\n%s", diff)
	}
	if got["name"] != "demo" {
		t.Errorf("name = %v, want demo", got["name"])
	}
	if _, ok := got["root"]; ok {
		t.Error("level config must not carry root")
	}
}

func TestLevel_Wildcard(t *testing.T) {
	_, flags := project(t)

	var got map[string]any
	runJSON(t, &got, append(flags, "level", "packages/*")...)
	if got["published"] != true {
		t.Errorf("published = %v, want true", got["published"])
	}
}

func TestLevel_NotFound(t *testing.T) {
	_, flags := project(t)

	_, err := run(t, append(flags, "level", "nowhere")...)
	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 1 {
		t.Errorf("level nowhere = %v, want exit code 1", err)
	}
}

func TestLevel_MissingArg(t *testing.T) {
	_, flags := project(t)
	if _, err := run(t, append(flags, "level")...); err == nil {
		t.Error("level without ID should fail")
	}
}

func TestLevels(t *testing.T) {
	dir, flags := project(t)

	var got map[string]map[string]any
	runJSON(t, &got, append(flags, "levels")...)

	for _, p := range []string{"src", "packages/a", "packages/b"} {
		if _, ok := got[filepath.Join(dir, p)]; !ok {
			t.Errorf("levels missing %s; got %v", p, got)
		}
	}
}

func TestLibrary(t *testing.T) {
	_, flags := project(t)

	var got map[string]any
	runJSON(t, &got, append(flags, "library", "shared")...)
	if got["owner"] != "platform" {
		t.Errorf("owner = %v, want platform", got["owner"])
	}
	if _, ok := got["lint"]; ok {
		t.Error("library config must not inherit the project's keys")
	}
}

func TestLibrary_NotFound(t *testing.T) {
	_, flags := project(t)

	_, err := run(t, append(flags, "library", "nope")...)
	var exit cli.ExitCoder
	if !errors.As(err, &exit) {
		t.Errorf("library nope = %v, want exit error", err)
	}
}

func TestLibraries(t *testing.T) {
	_, flags := project(t)

	var got []string
	runJSON(t, &got, append(flags, "libraries")...)
	if diff := cmp.Diff([]string{"shared"}, got); diff != "" {
		t.Errorf("libraries mismatch (-want +got):\n%s", diff)
	}
}

func TestModule(t *testing.T) {
	_, flags := project(t)

	var got map[string]any
	runJSON(t, &got, append(flags, "module", "build")...)
	if diff := cmp.Diff(map[string]any{"target": "es2020"}, got); diff != "" {
		t.Errorf("module mismatch (-want +got):\n%s", diff)
	}
}

func TestModule_NotFound(t *testing.T) {
	_, flags := project(t)

	_, err := run(t, append(flags, "module", "nope")...)
	var exit cli.ExitCoder
	if !errors.As(err, &exit) {
		t.Errorf("module nope = %v, want exit error", err)
	}
}

func TestModules(t *testing.T) {
	_, flags := project(t)

	var got []string
	runJSON(t, &got, append(flags, "modules")...)
	if diff := cmp.Diff([]string{"build"}, got); diff != "" {
		t.Errorf("modules mismatch (-want +got):\n%s", diff)
	}
}

func TestTableOutput(t *testing.T) {
	_, flags := project(t)

	out, err := run(t, append(flags, "module", "build")...)
	if err != nil {
		t.Fatalf("module error = %v", err)
	}
	if !strings.Contains(out, "KEY") || !strings.Contains(out, "target") {
		t.Errorf("table output = %q", out)
	}
}
