// Package config holds the mantis harness configuration.
// Values come from a YAML file, overridden by environment variables,
// overridden in turn by command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all mantis configuration.
type Config struct {
	// TimeoutMinutes bounds how long the harness waits for the operator
	// to reach a verdict.
	TimeoutMinutes int `yaml:"timeout_minutes"`

	// OutputDir is where failure screen captures are written.
	OutputDir string `yaml:"output_dir"`

	// DatabasePath locates the verdict journal.
	DatabasePath string `yaml:"database_path"`

	// Theme selects the TUI palette: "light", "dark" or "" for auto.
	Theme string `yaml:"theme"`

	// Capture configures how the screen is captured on failure.
	Capture CaptureConfig `yaml:"capture"`
}

// CaptureConfig configures failure evidence collection.
type CaptureConfig struct {
	// Display is the index of the display to capture when no browser
	// target is configured for the test.
	Display int `yaml:"display"`

	// BrowserTimeout bounds browser-page captures.
	BrowserTimeout string `yaml:"browser_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TimeoutMinutes: 10,
		OutputDir:      "results",
		DatabasePath:   filepath.Join("results", "mantis.db"),
		Capture: CaptureConfig{
			Display:        0,
			BrowserTimeout: "30s",
		},
	}
}

// Load loads configuration from a YAML file. A missing file is not an
// error; defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// MANTIS_TIMEOUT mirrors the -timeout property of the original jtreg
	// harness: whole minutes.
	if v := os.Getenv("MANTIS_TIMEOUT"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			c.TimeoutMinutes = minutes
		}
	}

	if dir := os.Getenv("MANTIS_OUTPUT_DIR"); dir != "" {
		c.OutputDir = dir
	}

	if path := os.Getenv("MANTIS_DB"); path != "" {
		c.DatabasePath = path
	}

	if os.Getenv("MANTIS_DARK_MODE") == "1" {
		c.Theme = "dark"
	}
}

// Timeout returns the operator decision timeout as a duration.
func (c *Config) Timeout() time.Duration {
	minutes := c.TimeoutMinutes
	if minutes <= 0 {
		minutes = 10
	}
	return time.Duration(minutes) * time.Minute
}

// BrowserTimeout parses the browser capture timeout, falling back to 30s.
func (c *Config) BrowserTimeout() time.Duration {
	d, err := time.ParseDuration(c.Capture.BrowserTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mantis", "config.yaml")
	}
	return filepath.Join(home, ".mantis", "config.yaml")
}
