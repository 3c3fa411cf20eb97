package main

import (
	"github.com/urfave/cli/v2"
)

func removeExportsCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove-exports",
		Usage:     "Strip exports no other file references",
		ArgsUsage: "[target]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "keep",
				Usage: "Glob patterns for files whose exports are never removed (e.g. --keep 'src/index.ts')",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "List unused exports without writing any file",
			},
		},
		Action: func(c *cli.Context) error {
			eng, cfg, err := newEngine(c)
			if err != nil {
				return err
			}
			report, err := eng.RemoveUnusedExports(c.Context,
				targetArg(c, cfg), c.StringSlice("keep"), c.Bool("dry-run"))
			if err != nil {
				return err
			}
			return printJSON(c, report)
		},
	}
}
