package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/projconf/internal/infra/confloader"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".projconf", "cli.yaml")
}

// Load loads CLI configuration from file and PROJCONF_CLI_* variables on
// top of the defaults. A missing file is not an error.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	var opts []confloader.Option
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat cli config: %w", err)
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, fmt.Errorf("load cli config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the directory when needed.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode cli config: %w", err)
	}
	return os.WriteFile(path, b, 0600)
}

// Merge applies explicit overrides, keyed by dotted path such as
// "output.format", on top of cfg. Empty string values are skipped so unset
// flags never clobber file or environment settings.
func Merge(cfg *CLIConfig, overrides map[string]any) (*CLIConfig, error) {
	set := make(map[string]any, len(overrides))
	for k, v := range overrides {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		set[k] = v
	}

	out := *cfg
	l := confloader.NewLoader()
	if err := l.LoadMap(set); err != nil {
		return nil, err
	}
	if err := l.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("merge cli config: %w", err)
	}
	if err := Validate(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks cfg against its field constraints.
func Validate(cfg *CLIConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid cli config: %w", err)
	}
	return nil
}
