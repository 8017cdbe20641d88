// Package config provides configuration management for the RPKI console.
// Configurations are loaded from TOML files with XDG-compliant paths.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Validator ValidatorConfig `toml:"validator"`
	Table     TableConfig     `toml:"table"`
	Display   DisplayConfig   `toml:"display"`
	Logging   LoggingConfig   `toml:"logging"`
	Database  DatabaseConfig  `toml:"database"`
}

// ValidatorConfig points the console at a validator's REST API.
type ValidatorConfig struct {
	URL               string  `toml:"url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	CacheTTLSeconds   int     `toml:"cache_ttl_seconds"`
	CacheSize         int     `toml:"cache_size"`
}

// Timeout returns the per-request timeout.
func (v ValidatorConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long detail lookups stay cached.
func (v ValidatorConfig) CacheTTL() time.Duration {
	return time.Duration(v.CacheTTLSeconds) * time.Second
}

// TableConfig holds list view defaults.
type TableConfig struct {
	DefaultPageSize  int   `toml:"default_page_size"`
	PageSizes        []int `toml:"page_sizes"`
	SearchDebounceMS int   `toml:"search_debounce_ms"`
}

// SearchDebounce returns the search debounce window.
func (t TableConfig) SearchDebounce() time.Duration {
	return time.Duration(t.SearchDebounceMS) * time.Millisecond
}

// DisplayConfig controls TUI appearance.
type DisplayConfig struct {
	ColorScheme ColorScheme `toml:"color_scheme"`
	DateFormat  string      `toml:"date_format"`
	TimeFormat  string      `toml:"time_format"`
}

// ColorScheme defines the terminal color palette.
type ColorScheme string

const (
	ColorSchemeGreenPhosphor ColorScheme = "green_phosphor"
	ColorSchemeAmber         ColorScheme = "amber"
	ColorSchemeWhite         ColorScheme = "white"
)

// LoggingConfig controls application logging. An empty File sends logs to
// stderr, which is only useful outside the TUI.
type LoggingConfig struct {
	Level      LogLevel `toml:"level"`
	File       string   `toml:"file"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
	MaxAgeDays int      `toml:"max_age_days"`
	Compress   bool     `toml:"compress"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DatabaseConfig controls the SQLite preferences database.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Validator.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("validator: %w", err))
	}

	if err := c.Table.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("table: %w", err))
	}

	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the validator configuration is valid.
func (v *ValidatorConfig) Validate() error {
	var errs []error

	if v.URL == "" {
		errs = append(errs, errors.New("url is required"))
	} else if u, err := url.Parse(v.URL); err != nil {
		errs = append(errs, fmt.Errorf("invalid url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("url scheme must be http or https, got %q", u.Scheme))
	}

	if v.TimeoutSeconds < 1 {
		errs = append(errs, errors.New("timeout_seconds must be positive"))
	}

	if v.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("requests_per_second must be positive"))
	}

	if v.Burst < 1 {
		errs = append(errs, errors.New("burst must be positive"))
	}

	if v.CacheTTLSeconds < 0 {
		errs = append(errs, errors.New("cache_ttl_seconds must be non-negative"))
	}

	if v.CacheSize < 0 {
		errs = append(errs, errors.New("cache_size must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the table configuration is valid.
func (t *TableConfig) Validate() error {
	var errs []error

	if len(t.PageSizes) == 0 {
		errs = append(errs, errors.New("page_sizes must not be empty"))
	}

	for _, n := range t.PageSizes {
		if n < 1 {
			errs = append(errs, fmt.Errorf("page size must be positive, got %d", n))
		}
	}

	if !slices.Contains(t.PageSizes, t.DefaultPageSize) {
		errs = append(errs, fmt.Errorf("default_page_size %d is not one of page_sizes", t.DefaultPageSize))
	}

	if t.SearchDebounceMS < 0 {
		errs = append(errs, errors.New("search_debounce_ms must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the display configuration is valid.
func (d *DisplayConfig) Validate() error {
	var errs []error

	validSchemes := map[ColorScheme]bool{
		ColorSchemeGreenPhosphor: true,
		ColorSchemeAmber:         true,
		ColorSchemeWhite:         true,
	}

	if !validSchemes[d.ColorScheme] && d.ColorScheme != "" {
		errs = append(errs, fmt.Errorf("invalid color_scheme: %s", d.ColorScheme))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}

	if !validLevels[l.Level] && l.Level != "" {
		errs = append(errs, fmt.Errorf("invalid log level: %s", l.Level))
	}

	if l.MaxSizeMB < 0 {
		errs = append(errs, errors.New("max_size_mb must be non-negative"))
	}

	if l.MaxBackups < 0 {
		errs = append(errs, errors.New("max_backups must be non-negative"))
	}

	if l.MaxAgeDays < 0 {
		errs = append(errs, errors.New("max_age_days must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	if d.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Validator: ValidatorConfig{
			URL:               "http://localhost:8080",
			TimeoutSeconds:    10,
			RequestsPerSecond: 20,
			Burst:             10,
			CacheTTLSeconds:   30,
			CacheSize:         128,
		},
		Table: TableConfig{
			DefaultPageSize:  10,
			PageSizes:        []int{10, 25, 50, 100},
			SearchDebounceMS: 400,
		},
		Display: DisplayConfig{
			ColorScheme: ColorSchemeGreenPhosphor,
			DateFormat:  "2006-01-02",
			TimeFormat:  "15:04:05",
		},
		Logging: LoggingConfig{
			Level:      LogLevelInfo,
			File:       "logs/rpki-console.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Database: DatabaseConfig{
			Path: "console.db",
		},
	}
}
