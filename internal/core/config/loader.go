package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const currentVersion = 1

var supportedFormats = map[string]bool{
	"text":  true,
	"jsonl": true,
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a usable configuration for running without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = currentVersion
	}
	if cfg.Paths.StateDir == "" {
		cfg.Paths.StateDir = ".snapdiff"
	}
	if cfg.Projects.Active == "" {
		cfg.Projects.Active = "default"
	}
	if cfg.DB.Path == "" {
		cfg.DB.Path = cfg.Paths.StateDir + "/generations.db"
	}
	if len(cfg.WatchPaths) == 0 {
		cfg.WatchPaths = []string{"."}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "__pycache__", ".venv", "venv", "node_modules"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.Burst == 0 {
		cfg.Watch.Burst = 10
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []string{"text"}
	}
}

func validate(cfg *Config) error {
	if cfg.Version != currentVersion {
		return fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, currentVersion)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.RateLimit < 0 {
		return fmt.Errorf("watch.rate_limit must not be negative")
	}
	for _, format := range cfg.Output.Formats {
		if !supportedFormats[strings.ToLower(strings.TrimSpace(format))] {
			return fmt.Errorf("unsupported output format %q", format)
		}
	}
	return nil
}
