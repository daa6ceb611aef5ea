package command

import (
	"fmt"
	"io"

	"github.com/ohler55/ojg/jp"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/projconf/internal/telemetry/logger"
)

func queryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Print only the values selected by the JSONPath `EXPR`, e.g. $.lint.rules",
	}
}

// ConfigsCommand returns the configs command.
func ConfigsCommand() *cli.Command {
	return &cli.Command{
		Name:  "configs",
		Usage: "Print every fragment of the stack, lowest precedence first",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "sources",
				Usage: "Print only the files the fragments were read from",
			},
		},
		Action: configsAction,
	}
}

func configsAction(c *cli.Context) error {
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	ctx := commandContext(c, cfg)

	if c.Bool("sources") {
		sources, err := cfg.Sources(ctx)
		if err != nil {
			return err
		}
		return render(c, sources)
	}

	configs, err := cfg.Configs(ctx)
	if err != nil {
		return err
	}
	logger.L(ctx).Debug("fragments listed", "count", len(configs))
	return render(c, configs)
}

// RootCommand returns the root command.
func RootCommand() *cli.Command {
	return &cli.Command{
		Name:   "root",
		Usage:  "Print the project root directory",
		Action: rootAction,
	}
}

func rootAction(c *cli.Context) error {
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	dir, err := cfg.Root(commandContext(c, cfg))
	if err != nil {
		return err
	}
	return render(c, dir)
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:   "get",
		Usage:  "Print the merged configuration of the whole stack",
		Flags:  []cli.Flag{queryFlag()},
		Action: getAction,
	}
}

func getAction(c *cli.Context) error {
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	conf, err := cfg.Get(commandContext(c, cfg))
	if err != nil {
		return err
	}
	return renderQuery(c, conf)
}

const levelDescription = `ID is a directory name, a path relative to the working directory,
an absolute path, "." or a pattern with one trailing wildcard such as src/*.`

// LevelCommand returns the level command.
func LevelCommand() *cli.Command {
	return &cli.Command{
		Name:        "level",
		Usage:       "Print the effective configuration of one level",
		ArgsUsage:   "ID",
		Description: levelDescription,
		Flags:       []cli.Flag{queryFlag()},
		Action:      levelAction,
	}
}

func levelAction(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("level ID required")
	}

	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	conf, err := cfg.Level(commandContext(c, cfg), id)
	if err != nil {
		return err
	}
	if conf == nil {
		return notFound("level", id)
	}
	return renderQuery(c, conf)
}

// LevelsCommand returns the levels command.
func LevelsCommand() *cli.Command {
	return &cli.Command{
		Name:   "levels",
		Usage:  "Print the effective configuration of every level, keyed by directory",
		Action: levelsAction,
	}
}

func levelsAction(c *cli.Context) error {
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	levels, err := cfg.LevelMap(commandContext(c, cfg))
	if err != nil {
		return err
	}
	return render(c, levels)
}

// LibraryCommand returns the library command.
func LibraryCommand() *cli.Command {
	return &cli.Command{
		Name:      "library",
		Aliases:   []string{"lib"},
		Usage:     "Print the merged configuration of one library",
		ArgsUsage: "NAME",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "Print the library's configuration for level `ID` instead",
			},
			queryFlag(),
		},
		Action: libraryAction,
	}
}

func libraryAction(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("library NAME required")
	}

	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	ctx := commandContext(c, cfg)

	lib, err := cfg.Library(ctx, name)
	if err != nil {
		return err
	}
	if lib == nil {
		return notFound("library", name)
	}

	if id := c.String("level"); id != "" {
		conf, err := lib.Level(ctx, id)
		if err != nil {
			return err
		}
		if conf == nil {
			return notFound("level", id)
		}
		return renderQuery(c, conf)
	}

	conf, err := lib.Get(ctx)
	if err != nil {
		return err
	}
	return renderQuery(c, conf)
}

// LibrariesCommand returns the libraries command.
func LibrariesCommand() *cli.Command {
	return &cli.Command{
		Name:   "libraries",
		Usage:  "List the libraries defined at or below the project root",
		Action: librariesAction,
	}
}

func librariesAction(c *cli.Context) error {
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	names, err := cfg.Libraries(commandContext(c, cfg))
	if err != nil {
		return err
	}
	return render(c, names)
}

// ModuleCommand returns the module command.
func ModuleCommand() *cli.Command {
	return &cli.Command{
		Name:      "module",
		Aliases:   []string{"mod"},
		Usage:     "Print the merged configuration of one module",
		ArgsUsage: "NAME",
		Flags:     []cli.Flag{queryFlag()},
		Action:    moduleAction,
	}
}

func moduleAction(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("module NAME required")
	}

	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	conf, err := cfg.Module(commandContext(c, cfg), name)
	if err != nil {
		return err
	}
	if conf == nil {
		return notFound("module", name)
	}
	return renderQuery(c, conf)
}

// ModulesCommand returns the modules command.
func ModulesCommand() *cli.Command {
	return &cli.Command{
		Name:   "modules",
		Usage:  "List the modules defined at or below the project root",
		Action: modulesAction,
	}
}

func modulesAction(c *cli.Context) error {
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	names, err := cfg.Modules(commandContext(c, cfg))
	if err != nil {
		return err
	}
	return render(c, names)
}

// renderQuery renders conf, narrowed by --query when given.
func renderQuery(c *cli.Context, conf map[string]any) error {
	return renderQueryTo(c, c.App.Writer, conf, c.String("query"))
}

// renderQueryTo renders the values expr selects from conf. A query that
// selects one value prints that value; otherwise the list of matches.
func renderQueryTo(c *cli.Context, w io.Writer, conf map[string]any, expr string) error {
	if expr == "" {
		return renderTo(c, w, conf)
	}

	x, err := jp.ParseString(expr)
	if err != nil {
		return fmt.Errorf("invalid query %q: %w", expr, err)
	}
	results := x.Get(conf)
	switch len(results) {
	case 0:
		return cli.Exit(fmt.Sprintf("query %q matched nothing", expr), 1)
	case 1:
		return renderTo(c, w, results[0])
	default:
		return renderTo(c, w, results)
	}
}
