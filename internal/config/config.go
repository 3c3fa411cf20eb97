// Package config loads jsmorph configuration from .jsmorph.toml with CLI
// flag overrides applied by the command layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the full engine configuration.
type Config struct {
	Project     Project     `toml:"project"`
	Index       Index       `toml:"index"`
	Performance Performance `toml:"performance"`
}

// Project identifies the analyzed project root.
type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

// Index controls file discovery.
type Index struct {
	// Include restricts analysis to paths matching these globs. Empty means
	// every supported JS/TS file under the root.
	Include []string `toml:"include"`

	// Exclude removes paths matching these globs. Merged with the built-in
	// defaults (node_modules, build output, VCS metadata).
	Exclude []string `toml:"exclude"`

	// RespectGitignore applies the project's .gitignore during traversal.
	RespectGitignore bool `toml:"respect_gitignore"`

	// MaxFileSize skips files larger than this many bytes. Zero disables
	// the limit.
	MaxFileSize int64 `toml:"max_file_size"`
}

// Performance bounds the analysis worker pool.
type Performance struct {
	// Workers caps the number of parallel parse/classify workers.
	// 0 = auto-detect (NumCPU).
	Workers int `toml:"workers"`
}

// DefaultExcludes are always skipped during directory traversal regardless
// of user configuration.
var DefaultExcludes = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/build/**",
	"**/coverage/**",
	"**/*.min.js",
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Project: Project{Root: "."},
		Index: Index{
			RespectGitignore: true,
			MaxFileSize:      2 * 1024 * 1024,
		},
		Performance: Performance{Workers: 0},
	}
}

// Load reads configuration from the given path, falling back to defaults
// when the file does not exist. A missing config file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// Resolve a relative root against the config file's directory so the
	// config means the same thing regardless of the process working dir.
	if cfg.Project.Root != "" && !filepath.IsAbs(cfg.Project.Root) {
		base := filepath.Dir(path)
		cfg.Project.Root = filepath.Clean(filepath.Join(base, cfg.Project.Root))
	}

	return cfg, nil
}

// EffectiveWorkers resolves the worker count, auto-detecting from CPU count
// when unset.
func (c *Config) EffectiveWorkers() int {
	if c.Performance.Workers > 0 {
		return c.Performance.Workers
	}
	return runtime.NumCPU()
}

// AllExcludes returns built-in and configured exclude globs.
func (c *Config) AllExcludes() []string {
	out := make([]string, 0, len(DefaultExcludes)+len(c.Index.Exclude))
	out = append(out, DefaultExcludes...)
	out = append(out, c.Index.Exclude...)
	return out
}
