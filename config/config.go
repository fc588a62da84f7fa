// Package config loads pipeline configuration from a JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"vidhunt/drive"
)

const (
	// DefaultInterval is the pacing between collection cycles.
	DefaultInterval = 2 * time.Second
	// DefaultRequestRate caps API requests per second.
	DefaultRequestRate = 4.0

	fileName = "vidhunt.json"
)

// Config holds everything the pipeline needs to run.
type Config struct {
	// APIKey authenticates Data API requests.
	APIKey string `json:"apiKey"`
	// AccessToken authenticates storage requests.
	AccessToken string `json:"accessToken"`
	// StorageRoot is the folder ID the repository is rooted at.
	StorageRoot string `json:"storageRoot"`

	// Interval paces the scheduler, one item per interval.
	Interval time.Duration `json:"-"`
	// IntervalSeconds is the file representation of Interval.
	IntervalSeconds float64 `json:"intervalSeconds,omitempty"`
	// RequestRate caps outbound API requests per second.
	RequestRate float64 `json:"requestRate,omitempty"`
	// Retention selects the snapshot retention policy.
	Retention drive.RetentionPolicy `json:"retention,omitempty"`

	// MaxRetries bounds retry attempts per API request.
	MaxRetries int `json:"maxRetries,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Interval:    DefaultInterval,
		RequestRate: DefaultRequestRate,
		Retention:   drive.RetentionAppendAll,
		MaxRetries:  3,
	}
}

// Load builds the configuration in ascending precedence: defaults, then the
// config file, then VIDHUNT_* environment variables. A .env file in the
// working directory is folded into the environment first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := findFile(); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findFile returns the first existing config file: ./vidhunt.json, then
// ~/.config/vidhunt/vidhunt.json.
func findFile() string {
	if _, err := os.Stat(fileName); err == nil {
		return fileName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".config", "vidhunt", fileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.IntervalSeconds > 0 {
		c.Interval = time.Duration(c.IntervalSeconds * float64(time.Second))
	}
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv("VIDHUNT_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("VIDHUNT_ACCESS_TOKEN"); v != "" {
		c.AccessToken = v
	}
	if v := os.Getenv("VIDHUNT_STORAGE_ROOT"); v != "" {
		c.StorageRoot = v
	}
	if v := os.Getenv("VIDHUNT_INTERVAL_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Interval = time.Duration(f * float64(time.Second))
		}
	}
	if v := os.Getenv("VIDHUNT_REQUEST_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.RequestRate = f
		}
	}
	if v := os.Getenv("VIDHUNT_RETENTION"); v != "" {
		c.Retention = drive.RetentionPolicy(v)
	}
	if v := os.Getenv("VIDHUNT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxRetries = n
		}
	}
}

// Validate checks the loaded values for consistency. Credentials are
// checked by the commands that need them, not here, so read-only tooling
// can run without a key.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New("config: interval must be positive")
	}
	if c.RequestRate <= 0 {
		return errors.New("config: request rate must be positive")
	}
	if c.Retention != "" && !c.Retention.Valid() {
		return fmt.Errorf("config: unknown retention policy %q", c.Retention)
	}
	return nil
}
