package config

import (
	"os"
	"path/filepath"
	"strings"

	"imgview/internal/errors"
	"imgview/internal/palette"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
// Viewer state (cursor, last directory) is never stored here.
type Config struct {
	Theme    string            `yaml:"theme"`              // Palette name used at startup
	Window   WindowConfig      `yaml:"window"`             // GUI window geometry
	Watch    WatchConfig       `yaml:"watch"`              // Directory watcher
	Preview  PreviewConfig     `yaml:"preview"`            // TUI preview size in cells
	Log      LogConfig         `yaml:"log"`                // Logging
	Palettes palette.Overrides `yaml:"palettes,omitempty"` // Per-palette colour overrides
}

// WindowConfig holds the initial GUI window geometry
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
}

// WatchConfig controls the optional directory watcher
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

// PreviewConfig sizes the terminal preview
type PreviewConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LogConfig mirrors the options of the logger
type LogConfig struct {
	Level      string `yaml:"level"`        // debug, info, warn, error
	Format     string `yaml:"format"`       // text or json
	File       string `yaml:"file"`         // Optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`  // Rotate after this many megabytes
	MaxBackups int    `yaml:"max_backups"`  // Rotated files to keep
	MaxAgeDays int    `yaml:"max_age_days"` // Days to keep rotated files
}

// DefaultPath returns ~/.config/imgview/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "imgview", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewFileError("error reading config file", path, errors.FileAccessDenied, err)
	}

	// yaml.v3 leaves fields absent from the file untouched, so decoding
	// over the defaults merges them.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Theme = palette.Dark

	cfg.Window.Width = 1024
	cfg.Window.Height = 768
	cfg.Window.Fullscreen = false

	cfg.Watch.Enabled = false // Opt-in
	cfg.Watch.DebounceMS = 300

	cfg.Preview.Width = 64
	cfg.Preview.Height = 24

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.MaxSizeMB = 10
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 28

	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewFileError("failed to create config directory", dir, errors.FileAccessDenied, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileError("failed to write config file", path, errors.FileAccessDenied, err)
	}

	return nil
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validFormats = map[string]bool{"text": true, "json": true}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrInvalidConfig
	}

	if _, err := palette.Lookup(c.Theme, c.Palettes); err != nil {
		return errors.NewConfigError("invalid theme", "theme", errors.InvalidConfig, err)
	}
	if err := palette.Validate(c.Palettes); err != nil {
		return errors.NewConfigError("invalid palette", "palettes", errors.InvalidConfig, err)
	}

	if c.Window.Width < 1 || c.Window.Height < 1 {
		return errors.NewConfigError("window size must be positive", "window", errors.InvalidConfig, nil)
	}

	if c.Watch.DebounceMS < 0 {
		return errors.NewConfigError("debounce must be >= 0", "watch.debounce_ms", errors.InvalidConfig, nil)
	}

	if c.Preview.Width < 8 || c.Preview.Height < 4 {
		return errors.NewConfigError("preview must be at least 8x4 cells", "preview", errors.InvalidConfig, nil)
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		return errors.NewConfigError("invalid log level "+c.Log.Level, "log.level", errors.InvalidConfig, nil)
	}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		return errors.NewConfigError("invalid log format "+c.Log.Format, "log.format", errors.InvalidConfig, nil)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errors.NewConfigError("log rotation limits must be >= 0", "log", errors.InvalidConfig, nil)
	}

	return nil
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// ListThemes returns the available theme names, including palettes defined
// in the configuration.
func (c *Config) ListThemes() []string {
	return palette.Names(c.Palettes)
}
