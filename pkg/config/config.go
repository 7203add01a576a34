// Package config loads settings for the pcsx2-gamelist command.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
	"gopkg.in/yaml.v3"
)

// Config represents the command configuration
type Config struct {
	CachePath       string  `yaml:"cache_path"`
	Encoding        string  `yaml:"encoding"`
	Filter          string  `yaml:"filter"`
	SkipEmptySerial bool    `yaml:"skip_empty_serial"`
	StoreDir        string  `yaml:"store_dir"`
	Logging         Logging `yaml:"logging"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
	Debug bool   `yaml:"debug"`
}

// DefaultConfig returns a default configuration. An empty cache path means
// the PCSX2 default location.
func DefaultConfig() *Config {
	return &Config{
		Encoding: "UTF-8",
		StoreDir: "./catalog",
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if err := gamelist.CheckEncoding(c.Encoding); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name.
func (l Logging) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid logging level %q", l.Level)
	}
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
