// Package config loads streamkit configuration from YAML or TOML files.
//
// The format is chosen by file extension (.yaml, .yml or .toml). Values not
// present in the file keep their defaults, and STREAMKIT_* environment
// variables override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Configuration errors.
var (
	// ErrConfigNotFound indicates the config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrUnsupportedFormat indicates an unknown config file extension.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrInvalidConfig indicates a config value is out of range.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the complete streamkit configuration.
type Config struct {
	Session SessionConfig `json:"session" yaml:"session" toml:"session"`
	Library LibraryConfig `json:"library" yaml:"library" toml:"library"`
	Poll    PollConfig    `json:"poll" yaml:"poll" toml:"poll"`
	Logout  LogoutConfig  `json:"logout" yaml:"logout" toml:"logout"`
	Log     LogConfig     `json:"log" yaml:"log" toml:"log"`
}

// SessionConfig is handed to the session library at creation.
type SessionConfig struct {
	// CacheLocation is the directory the library caches data in.
	CacheLocation string `json:"cache_location" yaml:"cache_location" toml:"cache_location" jsonschema:"description=Directory the library caches data in"`

	// SettingsLocation is the directory the library keeps settings in.
	SettingsLocation string `json:"settings_location" yaml:"settings_location" toml:"settings_location" jsonschema:"description=Directory the library keeps settings in"`

	// UserAgent identifies this application to the library (1-255 characters).
	UserAgent string `json:"user_agent" yaml:"user_agent" toml:"user_agent" jsonschema:"minLength=1,maxLength=255"`

	// AppKeyPath is the application key file. Empty uses appkey.DefaultPath().
	AppKeyPath string `json:"appkey_path" yaml:"appkey_path" toml:"appkey_path"`
}

// LibraryConfig selects the session library implementation.
type LibraryConfig struct {
	// Name is the registered library name.
	Name string `json:"name" yaml:"name" toml:"name" jsonschema:"default=sim"`

	// Options holds library-specific settings.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
}

// PollConfig bounds how long the loop sleeps between ProcessEvents calls.
type PollConfig struct {
	// Default is used when the library has no preference.
	Default time.Duration `json:"default" yaml:"default" toml:"default"`

	// Max caps the interval requested by the library. 0 = no cap.
	Max time.Duration `json:"max" yaml:"max" toml:"max"`
}

// LogoutConfig controls the scripted logout.
type LogoutConfig struct {
	// AfterIterations requests a logout after this many loop passes. 0 disables it.
	AfterIterations int `json:"after_iterations" yaml:"after_iterations" toml:"after_iterations" jsonschema:"minimum=0"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" toml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" toml:"format" jsonschema:"enum=text,enum=json"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			CacheLocation:    "tmp",
			SettingsLocation: "tmp",
			UserAgent:        "streamkit-session-example",
		},
		Library: LibraryConfig{
			Name: "sim",
		},
		Poll: PollConfig{
			Default: time.Second,
			Max:     30 * time.Second,
		},
		Logout: LogoutConfig{
			AfterIterations: 15,
		},
		Log: LogConfig{
			Level:  LevelInfo,
			Format: "text",
		},
	}
}

// Load reads the config file at path over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv overrides config fields from environment variables.
//
// Supported variables:
//   - STREAMKIT_LIBRARY: library name
//   - STREAMKIT_APPKEY: application key path
//   - STREAMKIT_CACHE_LOCATION: cache directory
//   - STREAMKIT_SETTINGS_LOCATION: settings directory
//   - STREAMKIT_LOG_LEVEL: log level
//   - STREAMKIT_LOGOUT_AFTER: logout iteration count
//   - STREAMKIT_POLL_DEFAULT: default poll interval (e.g., "500ms")
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("STREAMKIT_LIBRARY"); v != "" {
		c.Library.Name = v
	}
	if v := os.Getenv("STREAMKIT_APPKEY"); v != "" {
		c.Session.AppKeyPath = v
	}
	if v := os.Getenv("STREAMKIT_CACHE_LOCATION"); v != "" {
		c.Session.CacheLocation = v
	}
	if v := os.Getenv("STREAMKIT_SETTINGS_LOCATION"); v != "" {
		c.Session.SettingsLocation = v
	}
	if v := os.Getenv("STREAMKIT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STREAMKIT_LOGOUT_AFTER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Logout.AfterIterations = n
		}
	}
	if v := os.Getenv("STREAMKIT_POLL_DEFAULT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Poll.Default = d
		}
	}
}

// Validate checks that the configuration is usable. Library-specific
// settings (locations, user agent) are left to the library to judge.
func (c *Config) Validate() error {
	if c.Library.Name == "" {
		return fmt.Errorf("%w: library.name is required", ErrInvalidConfig)
	}
	if !isValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level must be one of %v, got %q", ErrInvalidConfig, ValidLevels(), c.Log.Level)
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Poll.Default <= 0 {
		return fmt.Errorf("%w: poll.default must be > 0, got %v", ErrInvalidConfig, c.Poll.Default)
	}
	if c.Poll.Max < 0 {
		return fmt.Errorf("%w: poll.max must be >= 0, got %v", ErrInvalidConfig, c.Poll.Max)
	}
	if c.Poll.Max > 0 && c.Poll.Default > c.Poll.Max {
		return fmt.Errorf("%w: poll.default (%v) exceeds poll.max (%v)", ErrInvalidConfig, c.Poll.Default, c.Poll.Max)
	}
	if c.Logout.AfterIterations < 0 {
		return fmt.Errorf("%w: logout.after_iterations must be >= 0, got %d", ErrInvalidConfig, c.Logout.AfterIterations)
	}
	return nil
}
