package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/projconf/internal/cli/repl"
	"github.com/yndnr/projconf/pkg/projconf"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Query the configuration interactively; rc files are read once",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "History `FILE`; empty keeps history in memory",
				Value: repl.DefaultHistoryFile(),
			},
		},
		Action: shellAction,
	}
}

// shellUsage documents the shell commands, one per line.
var shellUsage = []struct{ name, usage string }{
	{"configs", "print every fragment"},
	{"sources", "print the files fragments were read from"},
	{"root", "print the project root directory"},
	{"get", "[-q EXPR]  print the merged configuration"},
	{"level", "ID [-q EXPR]  print one level"},
	{"levels", "print every level"},
	{"library", "NAME [LEVEL]  print a library, or one of its levels"},
	{"libraries", "list libraries"},
	{"module", "NAME [-q EXPR]  print a module"},
	{"modules", "list modules"},
	{"reload", "read the rc files again"},
	{"help", "show this list"},
}

func shellAction(c *cli.Context) error {
	cfg, err := newConfig(c)
	if err != nil {
		return err
	}
	ctx := commandContext(c, cfg)

	// Report broken rc files before the first prompt.
	if _, err := cfg.Configs(ctx); err != nil {
		return err
	}

	names := make([]string, len(shellUsage))
	for i, u := range shellUsage {
		names[i] = u.name
	}

	r := repl.New(shellExecutor(c, cfg), names,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithPrompt("projconf> "),
		repl.WithHistory(repl.NewHistory(c.String("history"))),
	)
	return r.Run(ctx)
}

// shellExecutor dispatches shell lines against one memoized Config.
func shellExecutor(c *cli.Context, cfg *projconf.Config) repl.Executor {
	return func(ctx context.Context, w io.Writer, args []string) error {
		args, expr, err := splitQuery(args)
		if err != nil {
			return err
		}
		name, rest := args[0], args[1:]

		switch name {
		case "help":
			for _, u := range shellUsage {
				fmt.Fprintf(w, "  %-10s %s\n", u.name, u.usage)
			}
			return nil
		case "reload":
			cfg.Reload()
			_, err := cfg.Configs(ctx)
			return err
		case "configs":
			data, err := cfg.Configs(ctx)
			if err != nil {
				return err
			}
			return renderTo(c, w, data)
		case "sources":
			data, err := cfg.Sources(ctx)
			if err != nil {
				return err
			}
			return renderTo(c, w, data)
		case "root":
			dir, err := cfg.Root(ctx)
			if err != nil {
				return err
			}
			return renderTo(c, w, dir)
		case "get":
			conf, err := cfg.Get(ctx)
			if err != nil {
				return err
			}
			return renderQueryTo(c, w, conf, expr)
		case "level":
			if len(rest) != 1 {
				return fmt.Errorf("usage: level ID")
			}
			conf, err := cfg.Level(ctx, rest[0])
			if err != nil {
				return err
			}
			if conf == nil {
				return fmt.Errorf("no level matches %q", rest[0])
			}
			return renderQueryTo(c, w, conf, expr)
		case "levels":
			data, err := cfg.LevelMap(ctx)
			if err != nil {
				return err
			}
			return renderTo(c, w, data)
		case "library":
			return shellLibrary(ctx, c, w, cfg, rest, expr)
		case "libraries":
			data, err := cfg.Libraries(ctx)
			if err != nil {
				return err
			}
			return renderTo(c, w, data)
		case "module":
			if len(rest) != 1 {
				return fmt.Errorf("usage: module NAME")
			}
			conf, err := cfg.Module(ctx, rest[0])
			if err != nil {
				return err
			}
			if conf == nil {
				return fmt.Errorf("no module matches %q", rest[0])
			}
			return renderQueryTo(c, w, conf, expr)
		case "modules":
			data, err := cfg.Modules(ctx)
			if err != nil {
				return err
			}
			return renderTo(c, w, data)
		default:
			return fmt.Errorf("unknown command %q", name)
		}
	}
}

func shellLibrary(ctx context.Context, c *cli.Context, w io.Writer, cfg *projconf.Config, args []string, expr string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: library NAME [LEVEL]")
	}
	lib, err := cfg.Library(ctx, args[0])
	if err != nil {
		return err
	}
	if lib == nil {
		return fmt.Errorf("no library matches %q", args[0])
	}

	var conf map[string]any
	if len(args) == 2 {
		if conf, err = lib.Level(ctx, args[1]); err != nil {
			return err
		}
		if conf == nil {
			return fmt.Errorf("no level matches %q", args[1])
		}
	} else if conf, err = lib.Get(ctx); err != nil {
		return err
	}
	return renderQueryTo(c, w, conf, expr)
}

// splitQuery removes "-q EXPR" or "--query EXPR" from args.
func splitQuery(args []string) ([]string, string, error) {
	out := make([]string, 0, len(args))
	var expr string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-q" || a == "--query":
			if i+1 >= len(args) {
				return nil, "", fmt.Errorf("%s needs an expression", a)
			}
			expr = args[i+1]
			i++
		case strings.HasPrefix(a, "--query="):
			expr = strings.TrimPrefix(a, "--query=")
		default:
			out = append(out, a)
		}
	}
	return out, expr, nil
}
