package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/projconf/internal/cli/config"
	"github.com/yndnr/projconf/internal/cli/output"
	"github.com/yndnr/projconf/internal/core/domain"
	"github.com/yndnr/projconf/internal/infra/buildinfo"
	"github.com/yndnr/projconf/internal/infra/confloader"
	"github.com/yndnr/projconf/internal/telemetry/logger"
	"github.com/yndnr/projconf/internal/telemetry/metric"
	"github.com/yndnr/projconf/pkg/projconf"
)

const envKey = "env"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "projconf",
		Usage:   "Resolve layered project configuration",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ConfigsCommand(),
			RootCommand(),
			GetCommand(),
			LevelCommand(),
			LevelsCommand(),
			LibraryCommand(),
			LibrariesCommand(),
			ModuleCommand(),
			ModulesCommand(),
			WatchCommand(),
			ShellCommand(),
			PrefsCommand(),
			VersionCommand(),
		},
		Before: setup,

		// --set values may contain commas.
		DisableSliceFlagSeparator: true,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "cwd",
			Aliases: []string{"C"},
			Usage:   "Resolve as if started in `DIR`",
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "rc name; files are called .<name>rc (default: projconf)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Read only `FILE` instead of discovering home and project rc files",
		},
		&cli.StringFlag{
			Name:  "fs-root",
			Usage: "Stop the project rc search at `DIR`",
		},
		&cli.StringFlag{
			Name:  "fs-home",
			Usage: "Look for per-user rc files in `DIR`",
		},
		&cli.StringFlag{
			Name:  "env-prefix",
			Usage: "Environment override prefix (default: <name>_)",
		},
		&cli.StringFlag{
			Name:  "defaults",
			Usage: "Seed the lowest-precedence fragment from `FILE`",
		},
		&cli.StringSliceFlag{
			Name:    "set",
			Aliases: []string{"s"},
			Usage:   "Override `KEY=VALUE` in the highest-precedence fragment (repeatable)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "Omit table headers",
		},
		&cli.BoolFlag{
			Name:  "redact",
			Usage: "Mask values whose keys look like credentials",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Diagnostic log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Diagnostic log format: text, json",
		},
		&cli.StringFlag{
			Name:    "cli-config",
			Usage:   "CLI preferences `FILE`",
			Value:   config.DefaultConfigPath(),
			EnvVars: []string{"PROJCONF_CLI_CONFIG"},
		},
	}
}

// env is the per-invocation state built by setup.
type env struct {
	prefs     *config.CLIConfig
	prefsPath string
	log       logger.Logger
	metrics   *metric.Registry
}

// setup loads CLI preferences, applies flag overrides and installs the
// diagnostic logger.
func setup(c *cli.Context) error {
	path := c.String("cli-config")
	prefs, err := config.Load(path)
	if err != nil {
		return err
	}

	overrides := map[string]any{
		"name":          c.String("name"),
		"env_prefix":    c.String("env-prefix"),
		"output.format": c.String("output"),
		"log.level":     c.String("log-level"),
		"log.format":    c.String("log-format"),
	}
	if c.IsSet("redact") {
		overrides["output.redact"] = c.Bool("redact")
	}
	prefs, err = config.Merge(prefs, overrides)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  prefs.Log.Level,
		Format: prefs.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[envKey] = &env{
		prefs:     prefs,
		prefsPath: path,
		log:       log,
	}
	return nil
}

// getEnv retrieves the environment built by setup.
func getEnv(c *cli.Context) *env {
	if e, ok := c.App.Metadata[envKey].(*env); ok {
		return e
	}
	return &env{prefs: config.Default(), log: logger.Default()}
}

// projectOptions builds the resolution options from the global flags.
func projectOptions(c *cli.Context) (projconf.Options, error) {
	e := getEnv(c)
	opts := projconf.Options{
		Name:         e.prefs.Name,
		EnvPrefix:    e.prefs.EnvPrefix,
		PathToConfig: c.String("config"),
	}

	var err error
	if opts.Cwd, err = absDir(c.String("cwd")); err != nil {
		return opts, err
	}
	if opts.FsRoot, err = absOptional(c.String("fs-root")); err != nil {
		return opts, err
	}
	if opts.FsHome, err = absOptional(c.String("fs-home")); err != nil {
		return opts, err
	}

	if path := c.String("defaults"); path != "" {
		f, err := confloader.LoadFragmentFile(path)
		if err != nil {
			return opts, err
		}
		opts.Defaults = f.Raw()
		delete(opts.Defaults, domain.KeySource)
	}

	if opts.ExtendBy, err = parseSets(c.StringSlice("set")); err != nil {
		return opts, err
	}
	return opts, nil
}

func absDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

func absOptional(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	return filepath.Abs(dir)
}

// parseSets turns KEY=VALUE pairs into a nested map. Dotted keys nest and
// values are decoded as YAML scalars, so "true" and "3" keep their types.
func parseSets(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	flat := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want KEY=VALUE", pair)
		}

		var v any = raw
		if raw != "" {
			var decoded any
			if err := yaml.Unmarshal([]byte(raw), &decoded); err == nil && decoded != nil {
				v = decoded
			}
		}
		flat[key] = v
	}
	return maps.Unflatten(flat, "."), nil
}

// newConfig creates a projconf.Config for the current invocation.
func newConfig(c *cli.Context) (*projconf.Config, error) {
	opts, err := projectOptions(c)
	if err != nil {
		return nil, err
	}
	e := getEnv(c)
	return projconf.New(opts,
		projconf.WithLogger(e.log.Slog()),
		projconf.WithMetrics(e.metrics),
	), nil
}

// commandContext decorates the command's context with its logger, name
// and config id.
func commandContext(c *cli.Context, cfg *projconf.Config) context.Context {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, getEnv(c).log)
	ctx = logger.WithCommand(ctx, c.Command.Name)
	if cfg != nil {
		ctx = logger.WithConfigID(ctx, cfg.ID())
	}
	return ctx
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	return renderTo(c, c.App.Writer, data)
}

func renderTo(c *cli.Context, w io.Writer, data any) error {
	prefs := getEnv(c).prefs
	format, err := output.ParseFormat(prefs.Output.Format)
	if err != nil {
		return err
	}
	f := output.NewFormatter(format, c.Bool("no-headers"))
	if prefs.Output.Redact {
		f = output.Redacted(f)
	}
	return f.Format(w, data)
}

// notFound reports a missing level, library or module with exit code 1.
func notFound(kind, name string) error {
	return cli.Exit(fmt.Sprintf("no %s matches %q", kind, name), 1)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
