package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config drives the stateview CLI. The library packages take their
// parameters directly; nothing here leaks into pkg/.
type Config struct {
	Data DataConfig `toml:"data"`
	Log  LogConfig  `toml:"log"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// Format is "text", "json", or "auto" (text on a terminal, json
	// otherwise).
	Format string `toml:"format"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "~/.stateview",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads a TOML config file and returns the parsed Config.
// If path is empty, the default location is tried; a missing file there
// just yields defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = expandHome("~/.stateview/config.toml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ExpandHome resolves a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
