package main

import (
	"github.com/urfave/cli/v2"
)

func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Find and classify every occurrence of a symbol",
		ArgsUsage: "[target]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "symbol",
				Aliases: []string{"s"},
				Usage:   "Symbol to look up; omit to report all symbols",
			},
			&cli.StringSliceFlag{
				Name:  "kind",
				Usage: "Only report these context kinds (declaration, function_call, import, ...)",
			},
		},
		Action: func(c *cli.Context) error {
			eng, cfg, err := newEngine(c)
			if err != nil {
				return err
			}
			report, err := eng.ClassifyReferences(c.Context,
				targetArg(c, cfg), c.String("symbol"), c.StringSlice("kind"))
			if err != nil {
				return err
			}
			return printJSON(c, report)
		},
	}
}
