package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yndnr/projconf/internal/core/domain"
)

// DefaultEnvPrefix is the environment prefix for the CLI's own settings.
// It is upper case so it never collides with the lower-case rc prefix.
const DefaultEnvPrefix = "PROJCONF_CLI_"

// EnvKeyFunc turns an environment variable name, prefix included, into a
// dotted key. An empty result skips the variable.
type EnvKeyFunc func(prefix, name string) string

// SettingsKey maps PROJCONF_CLI_LOG_LEVEL to log.level.
func SettingsKey(prefix, name string) string {
	s := strings.ToLower(strings.TrimPrefix(name, prefix))
	return strings.ReplaceAll(s, "_", ".")
}

// NestedKey maps <prefix>levels__blocks__strict to levels.blocks.strict.
// Case is preserved and single underscores stay part of the key.
func NestedKey(prefix, name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, prefix), "__", ".")
}

// Loader layers YAML/JSON files, environment variables and in-memory maps
// into one koanf tree. Later loads override earlier ones.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	envKey    EnvKeyFunc
	filePath  string
	sources   []string
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithEnvKey sets how variable names become keys. The default is
// SettingsKey.
func WithEnvKey(fn EnvKeyFunc) Option {
	return func(l *Loader) {
		l.envKey = fn
	}
}

// WithConfigFile sets the file read by Load.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
		envKey:    SettingsKey,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the config file, when one is set, then the environment, and
// unmarshals the result into target over the values it already holds.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return err
		}
	}
	if err := l.LoadEnv(); err != nil {
		return err
	}
	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// LoadFile merges a YAML or JSON file. Keys are taken verbatim, so level
// keys such as "." or "packages/*" survive. Read and parse failures are
// reported as ErrConfigFileRead and ErrConfigFileParse.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	b, err := file.Provider(path).ReadBytes()
	if err != nil {
		return domain.ErrConfigFileRead.WithDetails(path).WithCause(err)
	}
	data, err := yaml.Parser().Unmarshal(b)
	if err != nil {
		return domain.ErrConfigFileParse.WithDetails(path).WithCause(err)
	}
	if err := l.k.Load(rawProvider(data), nil); err != nil {
		return domain.ErrConfigFileParse.WithDetails(path).WithCause(err)
	}
	l.sources = append(l.sources, path)
	return nil
}

// LoadEnv merges every variable carrying the prefix, keyed by the
// loader's EnvKeyFunc.
func (l *Loader) LoadEnv() error {
	provider := env.Provider(l.envPrefix, ".", func(name string) string {
		return l.envKey(l.envPrefix, name)
	})
	if err := l.k.Load(provider, nil); err != nil {
		return domain.ErrEnvLoad.WithDetails(l.envPrefix).WithCause(err)
	}
	return nil
}

// LoadMap merges data; dotted keys are expanded into nested maps.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal decodes the merged tree into target using koanf tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// Get returns the value at a dotted key.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}

// Raw returns a deep copy of the merged tree.
func (l *Loader) Raw() map[string]any {
	return l.k.Raw()
}

// Empty reports whether nothing has been merged.
func (l *Loader) Empty() bool {
	return len(l.k.Raw()) == 0
}

// Sources lists the files merged so far, in load order.
func (l *Loader) Sources() []string {
	return append([]string(nil), l.sources...)
}

// Fragment returns the merged tree as a configuration fragment. Its
// source is the file it came from when exactly one file was merged.
func (l *Loader) Fragment() domain.Fragment {
	source := ""
	if len(l.sources) == 1 {
		source = l.sources[0]
	}
	return domain.NewFragment(l.Raw(), source)
}
