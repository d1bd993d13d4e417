package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	DB            Database      `toml:"db"`
	Projects      Projects      `toml:"projects"`
	WatchPaths    []string      `toml:"watch_paths"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Output        Output        `toml:"output"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
}

type Database struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Projects struct {
	Active string `toml:"active"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// RateLimit caps module re-analyses per second in watch mode; 0 means
	// unlimited.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

type Output struct {
	Directory string   `toml:"directory"`
	Formats   []string `toml:"formats"`
}

type Observability struct {
	// Addr serves /metrics and /health when non-empty, e.g. ":9090".
	Addr string `toml:"addr"`
	// OTLPEndpoint enables trace export when non-empty, e.g. "localhost:4317".
	OTLPEndpoint string `toml:"otlp_endpoint"`
}
