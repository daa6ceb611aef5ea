package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrefsCommand(t *testing.T) {
	cmd := PrefsCommand()
	subNames := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		subNames[sub.Name] = true
	}
	for _, name := range []string{"show", "path", "validate", "init"} {
		if !subNames[name] {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestPrefs_InitValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "cli.yaml")

	out, err := run(t, "--cli-config", path, "-o", "yaml", "prefs", "init")
	if err != nil {
		t.Fatalf("prefs init error = %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("prefs init output = %q", out)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("prefs file not written: %v", err)
	}
	if !strings.Contains(string(b), "format: yaml") {
		t.Errorf("prefs file should record the output format:\n%s", b)
	}

	if _, err := run(t, "--cli-config", path, "prefs", "init"); err == nil {
		t.Error("prefs init should refuse to overwrite without --force")
	}
	if _, err := run(t, "--cli-config", path, "prefs", "init", "--force"); err != nil {
		t.Errorf("prefs init --force error = %v", err)
	}

	out, err = run(t, "--cli-config", path, "prefs", "validate")
	if err != nil {
		t.Fatalf("prefs validate error = %v", err)
	}
	if !strings.Contains(out, "valid") {
		t.Errorf("prefs validate output = %q", out)
	}
}

func TestPrefs_ValidateMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	out, err := run(t, "--cli-config", path, "prefs", "validate")
	if err != nil {
		t.Fatalf("prefs validate error = %v", err)
	}
	if !strings.Contains(out, "defaults") {
		t.Errorf("prefs validate output = %q", out)
	}
}

func TestPrefs_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "--cli-config", path, "prefs", "show"); err == nil {
		t.Error("an invalid preferences file should fail")
	}
}

func TestPrefs_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")

	out, err := run(t, "--cli-config", path, "prefs", "path")
	if err != nil {
		t.Fatalf("prefs path error = %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("prefs path = %q, want %q", out, path)
	}
}
