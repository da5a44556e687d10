// Package config loads the optional CLI configuration file for wes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds the wes CLI settings.
type Config struct {
	Prompt          string `yaml:"prompt"`            // REPL prompt
	HistoryFile     string `yaml:"history_file"`      // REPL history path
	WatchDebounceMS int    `yaml:"watch_debounce_ms"` // quiet window before a watch re-run
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	history := ".wes_history"
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".wes_history")
	}
	return &Config{
		Prompt:          "eval> ",
		HistoryFile:     history,
		WatchDebounceMS: 300,
	}
}

// Load reads configuration from a file with ENV interpolation. If
// configPath is empty it searches the default locations; a missing file is
// not an error and yields Defaults.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path := resolveConfigPath(configPath, getenv)
	if path == "" {
		if configPath != "" {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.WatchDebounceMS <= 0 {
		cfg.WatchDebounceMS = Defaults().WatchDebounceMS
	}
	return cfg, nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > WES_CONFIG env > ./wes.yaml > ~/.config/wes/wes.yaml
func resolveConfigPath(explicit string, getenv func(string) string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return ""
		}
		return explicit
	}

	if envPath := getenv("WES_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	if _, err := os.Stat("wes.yaml"); err == nil {
		return "wes.yaml"
	}

	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "wes", "wes.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	return ""
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}
