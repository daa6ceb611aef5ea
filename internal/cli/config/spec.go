package config

// CLIConfig is the configuration for the projconf CLI.
type CLIConfig struct {
	// Name is the rc name used when --name is not given.
	Name string `koanf:"name" yaml:"name,omitempty" validate:"omitempty,excludesall=/\\"`
	// EnvPrefix is the fragment environment prefix used when --env-prefix
	// is not given.
	EnvPrefix string `koanf:"env_prefix" yaml:"env_prefix,omitempty"`

	Output OutputConfig `koanf:"output" yaml:"output"`
	Log    LogConfig    `koanf:"log" yaml:"log"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format string `koanf:"format" yaml:"format" validate:"oneof=table json yaml"` // table, json, yaml
	Redact bool   `koanf:"redact" yaml:"redact"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=text console json"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Output: OutputConfig{
			Format: "table",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
