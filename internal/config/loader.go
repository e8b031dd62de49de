package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by defaults in cmd.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	CacheDir string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	// Driver mode: native|pipeline|hybrid|remote.
	DriverMode string `json:"driver_mode" yaml:"driver_mode" toml:"driver_mode"`
	// Remote inference server base URL (remote mode only).
	RemoteHost string `json:"remote_host" yaml:"remote_host" toml:"remote_host"`
	// Keep-alive duration passed to the remote server, e.g. "5m".
	RemoteKeepAlive string `json:"remote_keep_alive" yaml:"remote_keep_alive" toml:"remote_keep_alive"`
	// Remote request timeout in seconds (0 = default).
	RemoteTimeoutSeconds int `json:"remote_timeout_seconds" yaml:"remote_timeout_seconds" toml:"remote_timeout_seconds"`
	// Directory holding local model snapshots; catalog paths resolve under it.
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	// Load policy knob for in-process drivers: auto|cpu|accelerator.
	LoadPolicy string `json:"load_policy" yaml:"load_policy" toml:"load_policy"`
	// Consecutive generation failures before a driver is marked degraded.
	DegradeThreshold int `json:"degrade_threshold" yaml:"degrade_threshold" toml:"degrade_threshold"`
	// Response cache tuning.
	CacheCapacity int `json:"cache_capacity" yaml:"cache_capacity" toml:"cache_capacity"`
	CacheTTLHours int `json:"cache_ttl_hours" yaml:"cache_ttl_hours" toml:"cache_ttl_hours"`
	// Media validation limits.
	MaxImageEdgePx         int     `json:"max_image_edge_px" yaml:"max_image_edge_px" toml:"max_image_edge_px"`
	MaxAudioDurationSecond float64 `json:"max_audio_duration_seconds" yaml:"max_audio_duration_seconds" toml:"max_audio_duration_seconds"`
	// Preload the primary driver at startup instead of lazily.
	Preload bool `json:"preload" yaml:"preload" toml:"preload"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
