package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/jsmorph/internal/config"
	"github.com/standardbeagle/jsmorph/internal/engine"
	"github.com/standardbeagle/jsmorph/internal/version"
)

const defaultConfigFile = ".jsmorph.toml"

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	// When --root is given and the config path was left at its default,
	// look for the config file inside that root.
	if rootFlag := c.String("root"); rootFlag != "" && configPath == defaultConfigFile {
		configPath = filepath.Join(rootFlag, defaultConfigFile)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Index.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Index.Exclude = append(cfg.Index.Exclude, excludeFlags...)
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.Performance.Workers = workers
	}
	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}

	return cfg, nil
}

// newEngine builds an engine whose diagnostics go to stderr.
func newEngine(c *cli.Context) (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}
	var diag engine.Logger
	if c.Bool("verbose") {
		diag = log.New(os.Stderr, "[jsmorph] ", log.LstdFlags)
	}
	return engine.New(cfg, diag), cfg, nil
}

// printJSON writes a report to stdout, pretty-printed unless --compact.
func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	if !c.Bool("compact") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// targetArg resolves the positional target argument, defaulting to the
// configured project root.
func targetArg(c *cli.Context, cfg *config.Config) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return cfg.Project.Root
}

func main() {
	app := &cli.App{
		Name:                   "jsmorph",
		Usage:                  "Source intelligence and refactoring for JavaScript and TypeScript",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   defaultConfigFile,
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only analyze files matching glob patterns (e.g. --include 'src/**/*.ts')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns (e.g. --exclude '**/generated/**')",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel analysis workers (0 = one per CPU)",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Emit compact single-line JSON",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log progress to stderr",
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			classifyCommand(),
			renameCommand(),
			addParamCommand(),
			removeExportsCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "jsmorph: %v\n", err)
		os.Exit(1)
	}
}
