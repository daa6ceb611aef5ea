package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/projconf/internal/cli/config"
)

// PrefsCommand returns the prefs subcommand group.
func PrefsCommand() *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "CLI preferences",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show effective CLI preferences",
				Action: prefsShow,
			},
			{
				Name:   "path",
				Usage:  "Print the CLI preferences file path",
				Action: prefsPath,
			},
			{
				Name:   "validate",
				Usage:  "Validate the CLI preferences file",
				Action: prefsValidate,
			},
			{
				Name:  "init",
				Usage: "Write a preferences file with the current settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: prefsInit,
			},
		},
	}
}

func prefsShow(c *cli.Context) error {
	m, err := prefsMap(getEnv(c).prefs)
	if err != nil {
		return err
	}
	return render(c, m)
}

// prefsMap converts prefs to a generic map keyed like the file.
func prefsMap(prefs *config.CLIConfig) (map[string]any, error) {
	b, err := yaml.Marshal(prefs)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func prefsPath(c *cli.Context) error {
	_, err := fmt.Fprintln(c.App.Writer, getEnv(c).prefsPath)
	return err
}

func prefsValidate(c *cli.Context) error {
	path := getEnv(c).prefsPath
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(c.App.Writer, "No preferences file at %s; using defaults.\n", path)
		return nil
	}
	if _, err := config.Load(path); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintf(c.App.Writer, "Preferences file is valid: %s\n", path)
	return nil
}

func prefsInit(c *cli.Context) error {
	e := getEnv(c)
	if _, err := os.Stat(e.prefsPath); err == nil && !c.Bool("force") {
		return cli.Exit(fmt.Sprintf("%s already exists (use --force to overwrite)", e.prefsPath), 1)
	}
	if err := config.Save(e.prefs, e.prefsPath); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", e.prefsPath)
	return nil
}
