// Package config loads optional run defaults for mpatch from a
// ".mpatch.toml" file in the current directory. mpatch is a
// single-shot CLI tool, not a server, so there is no system/user
// config hierarchy to replicate -- just a "look, if absent fall back to
// built-in defaults, do not error" pattern.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// FilterKind names the confidence filter to apply to a file patch's
// changes before they are aligned and applied.
type FilterKind string

const (
	FilterDistance FilterKind = "distance"
	FilterMatch    FilterKind = "match"
)

// Config holds the defaults that may be overridden per-invocation by
// CLI flags. Fields absent from the config file keep their Default()
// values.
type Config struct {
	Strip     int        `toml:"strip"`
	Filter    FilterKind `toml:"filter"`
	Threshold int        `toml:"threshold"`
	Color     bool       `toml:"color"`
}

// Default returns the built-in defaults used when no config file is
// present and no CLI flag overrides a field.
func Default() *Config {
	return &Config{
		Strip:     0,
		Filter:    FilterDistance,
		Threshold: 5,
		Color:     true,
	}
}

// Load reads ".mpatch.toml" from the current working directory. A
// missing file is not an error: Load returns Default() unchanged.
func Load() (*Config, error) {
	cfg := Default()
	const path = ".mpatch.toml"
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
