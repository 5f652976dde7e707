package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"dotflip/internal/cycle"
)

// Config is the tool configuration: where to look for dotfiles and which
// value cycles exist. Loaded once at startup and re-loaded wholesale on a
// reconfigure; never mutated in place.
type Config struct {
	// Patterns are doublestar globs, relative to the project root, tried
	// in order. Order also decides presentation grouping in report mode.
	Patterns []string `toml:"patterns"`

	// Cycles are ordered: when a value appears in more than one group,
	// the first group in this list wins.
	Cycles []CycleConfig `toml:"cycles"`
}

// CycleConfig is one [[cycles]] block.
type CycleConfig struct {
	Values []string `toml:"values"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Patterns: []string{
			"**/.env",
			"**/.env.*",
			"**/.flags",
			"**/.config",
		},
		Cycles: []CycleConfig{
			{Values: []string{"true", "false"}},
			{Values: []string{"yes", "no"}},
			{Values: []string{"on", "off"}},
			{Values: []string{"1", "0"}},
			{Values: []string{"enabled", "disabled"}},
			{Values: []string{"development", "staging", "production"}},
		},
	}
}

// Load reads configuration with fallback to defaults. An explicit path
// (from --config or DOTFLIP_CONFIG) wins; otherwise standard locations
// are tried in order. Returns the config and the path it came from
// ("" when running on defaults).
func Load(explicit string) (*Config, string, error) {
	cfg := Default()

	paths := candidatePaths(explicit)
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if explicit != "" && path == explicit {
				return nil, "", fmt.Errorf("config file %s: %w", path, err)
			}
			continue
		}
		loaded := Default()
		if _, err := toml.DecodeFile(path, loaded); err != nil {
			return nil, "", fmt.Errorf("parsing config file %s: %w", path, err)
		}
		applyEnv(loaded)
		return loaded, path, nil
	}

	applyEnv(cfg)
	return cfg, "", nil
}

func candidatePaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	if env := os.Getenv("DOTFLIP_CONFIG"); env != "" {
		return []string{env}
	}
	paths := []string{"./dotflip.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "dotflip", "config.toml"))
	}
	return paths
}

// applyEnv overrides pattern configuration from the environment.
// DOTFLIP_PATTERNS is a comma-separated glob list.
func applyEnv(cfg *Config) {
	if env := os.Getenv("DOTFLIP_PATTERNS"); env != "" {
		var patterns []string
		for _, p := range strings.Split(env, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) > 0 {
			cfg.Patterns = patterns
		}
	}
}

// Table builds the cycle table from the configured groups, preserving
// their order. Groups that cannot cycle (fewer than two members) are
// dropped here rather than failing the whole load.
func (c *Config) Table() *cycle.Table {
	values := make([][]string, 0, len(c.Cycles))
	for _, g := range c.Cycles {
		values = append(values, g.Values)
	}
	return cycle.NewTable(values)
}
