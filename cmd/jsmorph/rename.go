package main

import (
	"errors"

	"github.com/urfave/cli/v2"
)

func renameCommand() *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a symbol across the project",
		ArgsUsage: "<old-name> <new-name> [target]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scope",
				Usage: "Limit the rename to one scope, e.g. 'function:processData' or 'class:Cache'",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Show the planned edits without writing any file",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return errors.New("rename requires <old-name> and <new-name>")
			}
			eng, cfg, err := newEngine(c)
			if err != nil {
				return err
			}
			target := cfg.Project.Root
			if c.Args().Len() > 2 {
				target = c.Args().Get(2)
			}
			report, err := eng.RenameSymbol(c.Context, target,
				c.Args().Get(0), c.Args().Get(1), c.String("scope"), c.Bool("dry-run"))
			if err != nil {
				return err
			}
			return printJSON(c, report)
		},
	}
}
