// Package config loads and validates tool configuration from YAML files
// with environment-variable overrides. Every conversion tool shares the same
// config shape: logging, metrics, and converter limits.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level ciffbridge configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Convert ConvertConfig `yaml:"convert"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the optional Prometheus scrape endpoint exposed
// during long-running conversions.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// ConvertConfig bounds the streaming decoder and sizes the output buffers.
type ConvertConfig struct {
	// MaxFrameSize is the largest accepted length prefix for a single
	// postings frame. A prefix above it fails the run instead of
	// attempting an unbounded allocation.
	MaxFrameSize int64 `yaml:"maxFrameSize"`
	// BufferSize is the bufio buffer size for input and output files.
	BufferSize int `yaml:"bufferSize"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
		Convert: ConvertConfig{
			MaxFrameSize: 512 << 20,
			BufferSize:   1 << 20,
		},
	}
}

func (c *Config) validate() error {
	if c.Convert.MaxFrameSize <= 0 {
		return fmt.Errorf("convert.maxFrameSize must be positive, got %d", c.Convert.MaxFrameSize)
	}
	if c.Convert.BufferSize <= 0 {
		return fmt.Errorf("convert.bufferSize must be positive, got %d", c.Convert.BufferSize)
	}
	return nil
}

// applyEnvOverrides reads CB_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CB_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CB_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CB_METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
	if v := os.Getenv("CB_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("CB_CONVERT_MAX_FRAME_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Convert.MaxFrameSize = size
		}
	}
	if v := os.Getenv("CB_CONVERT_BUFFER_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			cfg.Convert.BufferSize = size
		}
	}
}
