package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/jsmorph/internal/display"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Summarize a file's functions, classes, imports and exports",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json or text",
				Value:   "json",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() == 0 {
				return errors.New("analyze requires a file path")
			}
			eng, _, err := newEngine(c)
			if err != nil {
				return err
			}
			report, err := eng.AnalyzeFile(c.Args().First())
			if err != nil {
				return err
			}
			switch c.String("format") {
			case "text":
				fmt.Fprint(c.App.Writer, display.Outline(report))
				return nil
			case "json":
				return printJSON(c, report)
			default:
				return fmt.Errorf("unknown format %q (expected json or text)", c.String("format"))
			}
		},
	}
}
