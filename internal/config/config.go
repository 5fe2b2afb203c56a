// Package config loads the demo CLI/API configuration: which region's
// public holidays to use, where (if anywhere) to resolve sun events, and
// how to expose the evaluator over HTTP.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LatLon is a geographic coordinate pair used for sun-event resolution.
type LatLon struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// Config is the top-level application configuration.
type Config struct {
	// Region is the holiday-provider region code (e.g. "DE-BY", "US-CA").
	Region string `yaml:"region" json:"region"`

	// Location, if set, holds the coordinates passed to the evaluator for
	// sun-event (sunrise/sunset/dawn/dusk) lookups. It takes effect only
	// together with a SunEventProvider; cmd/ohours configures none, so its
	// commands report MissingLocation for expressions that use sun events.
	Location *LatLon `yaml:"location,omitempty" json:"location,omitempty"`

	// HolidaySource selects the holiday provider backend: "static" (a
	// local YAML calendar file named by HolidaySourcePath) or "remote" (an
	// HTTP API base URL named by HolidaySourcePath).
	HolidaySource     string `yaml:"holiday_source" json:"holiday_source" mapstructure:"holiday_source"`
	HolidaySourcePath string `yaml:"holiday_source_path" json:"holiday_source_path" mapstructure:"holiday_source_path"`

	// CacheDir holds cached holiday-provider responses.
	CacheDir string `yaml:"cache_dir" json:"cache_dir" mapstructure:"cache_dir"`

	// Listen is the HTTP listen address for the demo API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of DEBUG, INFO, ERROR.
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		HolidaySource:     "static",
		HolidaySourcePath: "holidays.yaml",
		CacheDir:          ".ohours-cache",
		Listen:            "127.0.0.1:8080",
		LogLevel:          "INFO",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.HolidaySource == "" {
		c.HolidaySource = "static"
	}
	if c.HolidaySourcePath == "" {
		c.HolidaySourcePath = "holidays.yaml"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".ohours-cache"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "ERROR":
		// ok
	default:
		c.LogLevel = "INFO"
	}
}

// Load reads configuration from the given YAML path via viper. An
// OHOURS_-prefixed environment variable (e.g. OHOURS_REGION,
// OHOURS_LISTEN) overrides a key only when that key also appears in the
// file. A missing file is not an error: Load writes out a fresh default
// config at path on first run and returns it without consulting the
// environment, mirroring the teacher's atomic-Save-on-first-run behavior.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ohours")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			cfg := DefaultConfig()
			if saveErr := Save(path, cfg); saveErr != nil {
				return cfg, errors.Wrap(saveErr, "writing default config")
			}
			return cfg, nil
		}
		return nil, errors.Wrap(err, "reading config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, as the teacher's config layer did.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating config dir")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	tmp, err := os.CreateTemp(dir, ".ohours-config-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp config file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp config file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing temp config file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp config file")
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return errors.Wrap(err, "chmod temp config file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp config file")
	}
	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
