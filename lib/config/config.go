// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Telboard components.
//
// Configuration is loaded from a single file specified by:
//   - TELBOARD_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures deterministic,
// auditable configuration with no hidden overrides.
//
// The config file may contain environment-specific sections (development,
// staging, production) that override base values when the environment matches.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Telboard.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory and file locations.
	Paths PathsConfig `yaml:"paths"`

	// Board configures board behavior: page size, guest access, titles.
	Board BoardConfig `yaml:"board"`

	// Session configures login sessions and forced sign-out.
	Session SessionConfig `yaml:"session"`

	// UI configures terminal presentation.
	UI UIConfig `yaml:"ui"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	Board   *BoardConfig   `yaml:"board,omitempty"`
	Session *SessionConfig `yaml:"session,omitempty"`
	UI      *UIConfig      `yaml:"ui,omitempty"`
}

// PathsConfig configures directory and file locations.
type PathsConfig struct {
	// Root is the base directory for Telboard data.
	Root string `yaml:"root"`

	// Database is the path to the SQLite database file.
	Database string `yaml:"database"`

	// Backups is the directory where backup containers are written.
	Backups string `yaml:"backups"`

	// State is where runtime state (the force-logout flag file, logs)
	// is stored.
	State string `yaml:"state"`

	// Settings is the path to the operator-editable settings file
	// (JSON with comments).
	Settings string `yaml:"settings"`
}

// BoardConfig configures board behavior.
type BoardConfig struct {
	// Name is the service name shown on the login screen banner.
	// Default: "TELBOARD"
	Name string `yaml:"name"`

	// Tagline is shown under the banner on the login screen.
	Tagline string `yaml:"tagline"`

	// PageSize is the number of posts per page in board listings.
	// Default: 15
	PageSize int `yaml:"page_size"`

	// GuestEnabled allows read-only guest sign-in without a password.
	// Default: true
	GuestEnabled bool `yaml:"guest_enabled"`

	// AutocompleteLimit caps the number of tag suggestions shown while
	// composing a post. Default: 5
	AutocompleteLimit int `yaml:"autocomplete_limit"`
}

// SessionConfig configures login sessions and forced sign-out.
type SessionConfig struct {
	// FlagFile is the path of the force-logout flag file. When this
	// file exists, every running client signs the user out and returns
	// to the login screen. Empty means ${STATE}/force-logout.
	FlagFile string `yaml:"flag_file"`

	// PollInterval is how often running clients check the flag file,
	// as a Go duration string. Default: "1s"
	PollInterval string `yaml:"poll_interval"`
}

// Interval parses PollInterval. Invalid or empty values fall back to
// one second.
func (s SessionConfig) Interval() time.Duration {
	interval, err := time.ParseDuration(s.PollInterval)
	if err != nil || interval <= 0 {
		return time.Second
	}
	return interval
}

// UIConfig configures terminal presentation.
type UIConfig struct {
	// ClockFormat is the Go time layout for the desktop clock line.
	// Default: "2006-01-02 (Mon) 15:04:05"
	ClockFormat string `yaml:"clock_format"`

	// AltScreen controls whether the client takes over the whole
	// terminal. Default: true
	AltScreen bool `yaml:"alt_screen"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "share", "telboard")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:     defaultRoot,
			Database: filepath.Join(defaultRoot, "board.db"),
			Backups:  filepath.Join(defaultRoot, "backups"),
			State:    filepath.Join(defaultRoot, "state"),
			Settings: filepath.Join(defaultRoot, "settings.jsonc"),
		},
		Board: BoardConfig{
			Name:              "TELBOARD",
			Tagline:           "online community service",
			PageSize:          15,
			GuestEnabled:      true,
			AutocompleteLimit: 5,
		},
		Session: SessionConfig{
			FlagFile:     "",
			PollInterval: "1s",
		},
		UI: UIConfig{
			ClockFormat: "2006-01-02 (Mon) 15:04:05",
			AltScreen:   true,
		},
	}
}

// Load loads configuration from the TELBOARD_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if TELBOARD_CONFIG is not set, this fails.
// This ensures deterministic, auditable configuration with no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("TELBOARD_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("TELBOARD_CONFIG environment variable not set; " +
			"set it to the path of your telboard.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values - this ensures deterministic, auditable configuration.
// The only expansion performed is ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	// Fill in paths derived from others.
	if cfg.Session.FlagFile == "" {
		cfg.Session.FlagFile = filepath.Join(cfg.Paths.State, "force-logout")
	}

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Database != "" {
			c.Paths.Database = overrides.Paths.Database
		}
		if overrides.Paths.Backups != "" {
			c.Paths.Backups = overrides.Paths.Backups
		}
		if overrides.Paths.State != "" {
			c.Paths.State = overrides.Paths.State
		}
		if overrides.Paths.Settings != "" {
			c.Paths.Settings = overrides.Paths.Settings
		}
	}

	if overrides.Board != nil {
		if overrides.Board.Name != "" {
			c.Board.Name = overrides.Board.Name
		}
		if overrides.Board.Tagline != "" {
			c.Board.Tagline = overrides.Board.Tagline
		}
		if overrides.Board.PageSize != 0 {
			c.Board.PageSize = overrides.Board.PageSize
		}
		// GuestEnabled is a bool, so we always apply it from overrides.
		c.Board.GuestEnabled = overrides.Board.GuestEnabled
		if overrides.Board.AutocompleteLimit != 0 {
			c.Board.AutocompleteLimit = overrides.Board.AutocompleteLimit
		}
	}

	if overrides.Session != nil {
		if overrides.Session.FlagFile != "" {
			c.Session.FlagFile = overrides.Session.FlagFile
		}
		if overrides.Session.PollInterval != "" {
			c.Session.PollInterval = overrides.Session.PollInterval
		}
	}

	if overrides.UI != nil {
		if overrides.UI.ClockFormat != "" {
			c.UI.ClockFormat = overrides.UI.ClockFormat
		}
		c.UI.AltScreen = overrides.UI.AltScreen
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"TELBOARD_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["TELBOARD_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Database = expandVars(c.Paths.Database, vars)
	c.Paths.Backups = expandVars(c.Paths.Backups, vars)
	c.Paths.State = expandVars(c.Paths.State, vars)
	c.Paths.Settings = expandVars(c.Paths.Settings, vars)
	c.Session.FlagFile = expandVars(c.Session.FlagFile, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}

	if c.Paths.Database == "" {
		errs = append(errs, fmt.Errorf("paths.database is required"))
	}

	if c.Board.PageSize < 1 {
		errs = append(errs, fmt.Errorf("board.page_size must be at least 1, got %d", c.Board.PageSize))
	}

	if c.Board.AutocompleteLimit < 1 {
		errs = append(errs, fmt.Errorf("board.autocomplete_limit must be at least 1, got %d", c.Board.AutocompleteLimit))
	}

	if c.Session.PollInterval != "" {
		if _, err := time.ParseDuration(c.Session.PollInterval); err != nil {
			errs = append(errs, fmt.Errorf("session.poll_interval: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Root,
		filepath.Dir(c.Paths.Database),
		c.Paths.Backups,
		c.Paths.State,
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
