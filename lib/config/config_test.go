// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}

	if cfg.Board.PageSize != 15 {
		t.Errorf("expected page_size=15, got %d", cfg.Board.PageSize)
	}

	if !cfg.Board.GuestEnabled {
		t.Error("expected guest_enabled=true by default")
	}

	if cfg.Board.AutocompleteLimit != 5 {
		t.Errorf("expected autocomplete_limit=5, got %d", cfg.Board.AutocompleteLimit)
	}

	if cfg.Session.Interval() != time.Second {
		t.Errorf("expected poll interval 1s, got %s", cfg.Session.Interval())
	}
}

func TestLoad_RequiresTelboardConfig(t *testing.T) {
	// Save and restore TELBOARD_CONFIG.
	origConfig := os.Getenv("TELBOARD_CONFIG")
	defer os.Setenv("TELBOARD_CONFIG", origConfig)

	// Unset TELBOARD_CONFIG - Load() should fail.
	os.Unsetenv("TELBOARD_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when TELBOARD_CONFIG not set, got nil")
	}

	expectedMsg := "TELBOARD_CONFIG environment variable not set"
	if err.Error()[:len(expectedMsg)] != expectedMsg {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithTelboardConfig(t *testing.T) {
	// Save and restore TELBOARD_CONFIG.
	origConfig := os.Getenv("TELBOARD_CONFIG")
	defer os.Setenv("TELBOARD_CONFIG", origConfig)

	// Create temp config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "telboard.yaml")

	configContent := `
environment: staging
paths:
  root: /test/root
board:
  name: HANTEL
  guest_enabled: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	// Set TELBOARD_CONFIG and load.
	os.Setenv("TELBOARD_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.Paths.Root != "/test/root" {
		t.Errorf("expected root=/test/root, got %s", cfg.Paths.Root)
	}

	if cfg.Board.Name != "HANTEL" {
		t.Errorf("expected name=HANTEL, got %s", cfg.Board.Name)
	}
}

func TestLoadFile(t *testing.T) {
	// Create temp config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "telboard.yaml")

	configContent := `
environment: staging

paths:
  root: /custom/root
  database: /custom/board.db

board:
  page_size: 20
  guest_enabled: false

session:
  poll_interval: 2s

ui:
  clock_format: "15:04:05"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.Paths.Root != "/custom/root" {
		t.Errorf("expected root=/custom/root, got %s", cfg.Paths.Root)
	}

	if cfg.Paths.Database != "/custom/board.db" {
		t.Errorf("expected database=/custom/board.db, got %s", cfg.Paths.Database)
	}

	if cfg.Board.PageSize != 20 {
		t.Errorf("expected page_size=20, got %d", cfg.Board.PageSize)
	}

	if cfg.Board.GuestEnabled {
		t.Error("expected guest_enabled=false")
	}

	if cfg.Session.Interval() != 2*time.Second {
		t.Errorf("expected poll interval 2s, got %s", cfg.Session.Interval())
	}

	if cfg.UI.ClockFormat != "15:04:05" {
		t.Errorf("expected clock_format=15:04:05, got %s", cfg.UI.ClockFormat)
	}
}

func TestFlagFileDefaultsUnderState(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "telboard.yaml")

	configContent := `
environment: development
paths:
  state: /var/telboard/state
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	want := filepath.Join("/var/telboard/state", "force-logout")
	if cfg.Session.FlagFile != want {
		t.Errorf("expected flag_file=%s, got %s", want, cfg.Session.FlagFile)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "telboard.yaml")

	configContent := `
environment: production

paths:
  root: /default/root

board:
  page_size: 15
  guest_enabled: true

production:
  paths:
    root: /prod/root
  board:
    page_size: 30
    guest_enabled: false
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// Production overrides should be applied.
	if cfg.Paths.Root != "/prod/root" {
		t.Errorf("expected root=/prod/root, got %s", cfg.Paths.Root)
	}

	if cfg.Board.PageSize != 30 {
		t.Errorf("expected page_size=30 from production override, got %d", cfg.Board.PageSize)
	}

	if cfg.Board.GuestEnabled {
		t.Error("expected guest_enabled=false from production override")
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// Verify that environment variables do NOT override config file values.
	// The config file is the single source of truth for deterministic configuration.

	// Save and restore env vars.
	origRoot := os.Getenv("TELBOARD_ROOT")
	origEnv := os.Getenv("TELBOARD_ENVIRONMENT")
	defer func() {
		os.Setenv("TELBOARD_ROOT", origRoot)
		os.Setenv("TELBOARD_ENVIRONMENT", origEnv)
	}()

	// Set env vars that should be ignored.
	os.Setenv("TELBOARD_ROOT", "/env/root")
	os.Setenv("TELBOARD_ENVIRONMENT", "staging")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "telboard.yaml")

	configContent := `
environment: development
paths:
  root: /file/root
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// File values should be used, NOT env vars.
	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s (env vars should not override)", cfg.Environment)
	}

	if cfg.Paths.Root != "/file/root" {
		t.Errorf("expected root=/file/root from file, got %s (env vars should not override)", cfg.Paths.Root)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/telboard",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/telboard",
		},
		{
			input:    "${MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid environment",
			modify: func(c *Config) {
				c.Environment = "invalid"
			},
			wantErr: true,
		},
		{
			name: "empty root path",
			modify: func(c *Config) {
				c.Paths.Root = ""
			},
			wantErr: true,
		},
		{
			name: "empty database path",
			modify: func(c *Config) {
				c.Paths.Database = ""
			},
			wantErr: true,
		},
		{
			name: "zero page size",
			modify: func(c *Config) {
				c.Board.PageSize = 0
			},
			wantErr: true,
		},
		{
			name: "malformed poll interval",
			modify: func(c *Config) {
				c.Session.PollInterval = "soon"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Paths.Root = filepath.Join(tmpDir, "telboard")
	cfg.Paths.Database = filepath.Join(cfg.Paths.Root, "db", "board.db")
	cfg.Paths.Backups = filepath.Join(cfg.Paths.Root, "backups")
	cfg.Paths.State = filepath.Join(cfg.Paths.Root, "state")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	// Verify directories were created.
	for _, path := range []string{cfg.Paths.Root, filepath.Dir(cfg.Paths.Database), cfg.Paths.Backups, cfg.Paths.State} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("path %s not created: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("path %s is not a directory", path)
		}
	}
}
