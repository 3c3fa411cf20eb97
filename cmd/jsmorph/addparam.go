package main

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/jsmorph/internal/plan"
)

func addParamCommand() *cli.Command {
	return &cli.Command{
		Name:      "add-param",
		Usage:     "Add a parameter to a function signature",
		ArgsUsage: "<function-name> <param-name> [target]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "TypeScript type annotation for the new parameter",
			},
			&cli.StringFlag{
				Name:  "default",
				Usage: "Default value; also inserted at call sites with --update-calls",
			},
			&cli.IntFlag{
				Name:  "position",
				Usage: "Zero-based position in the parameter list; -1 appends",
				Value: -1,
			},
			&cli.BoolFlag{
				Name:  "update-calls",
				Usage: "Insert the default value into existing call sites",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Show the planned edits without writing any file",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return errors.New("add-param requires <function-name> and <param-name>")
			}
			eng, cfg, err := newEngine(c)
			if err != nil {
				return err
			}
			target := cfg.Project.Root
			if c.Args().Len() > 2 {
				target = c.Args().Get(2)
			}
			report, err := eng.AddParameter(c.Context, target,
				c.Args().Get(0),
				plan.Param{
					Name:    c.Args().Get(1),
					Type:    c.String("type"),
					Default: c.String("default"),
				},
				c.Int("position"), c.Bool("update-calls"), c.Bool("dry-run"))
			if err != nil {
				return err
			}
			return printJSON(c, report)
		},
	}
}
