// Package config loads browsertest settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the golden CLI and the browser harness.
type Config struct {
	GoldenDir     string        `toml:"golden_dir" yaml:"golden_dir"`
	OutputDir     string        `toml:"output_dir" yaml:"output_dir"`
	LogLevel      string        `toml:"log_level" yaml:"log_level"`
	WaitTimeoutMs int           `toml:"wait_timeout_ms" yaml:"wait_timeout_ms"`
	Browser       BrowserConfig `toml:"browser" yaml:"browser"`
}

// BrowserConfig configures the Chrome instance used by end-to-end tests.
type BrowserConfig struct {
	Headless       bool `toml:"headless" yaml:"headless"`
	TimeoutSeconds int  `toml:"timeout_seconds" yaml:"timeout_seconds"`
	ViewportWidth  int  `toml:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int  `toml:"viewport_height" yaml:"viewport_height"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		GoldenDir:     "testdata/golden",
		OutputDir:     "testdata/output",
		LogLevel:      "info",
		WaitTimeoutMs: 5000,
		Browser: BrowserConfig{
			Headless:       true,
			TimeoutSeconds: 30,
			ViewportWidth:  800,
			ViewportHeight: 600,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.GoldenDir == "" {
		return errors.New("golden_dir is required")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if c.WaitTimeoutMs <= 0 {
		return fmt.Errorf("wait_timeout_ms must be positive, got %d", c.WaitTimeoutMs)
	}
	if c.Browser.TimeoutSeconds <= 0 {
		return fmt.Errorf("browser.timeout_seconds must be positive, got %d", c.Browser.TimeoutSeconds)
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d",
			c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	return nil
}

// WaitTimeout returns the event wait timeout as a duration.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutMs) * time.Millisecond
}

// BrowserTimeout returns the browser operation timeout as a duration.
func (c *Config) BrowserTimeout() time.Duration {
	return time.Duration(c.Browser.TimeoutSeconds) * time.Second
}

// LoadFromFile reads a configuration file on top of Default.
// The format is chosen by extension: .toml, or .yaml/.yml.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// EnvVar names the environment variable that points end-to-end tests at a
// config file.
const EnvVar = "BROWSERTEST_CONFIG"

// FromEnv loads the file named by the environment variable env, or returns
// Default when it is unset or empty.
func FromEnv(env string) (*Config, error) {
	path := os.Getenv(env)
	if path == "" {
		return Default(), nil
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s=%s: %w", env, path, err)
	}
	return cfg, nil
}
