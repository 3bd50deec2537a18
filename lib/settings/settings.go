// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package settings persists per-user interface preferences as a JSONC
// file. Unlike the service configuration (lib/config), these are
// cosmetic knobs the user flips from the Settings screen; the file
// may carry comments, which survive because writes go through a
// commented template rather than bare json.Marshal.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Settings are the user-adjustable interface preferences.
type Settings struct {
	// ClockSeconds shows seconds on the desktop clock.
	ClockSeconds bool `json:"clock_seconds"`

	// ShowHelpBar renders the key-hint line at the bottom of every
	// screen.
	ShowHelpBar bool `json:"show_help_bar"`

	// AltScreen runs the interface on the terminal's alternate
	// screen buffer.
	AltScreen bool `json:"alt_screen"`
}

// Default returns the out-of-the-box preferences.
func Default() Settings {
	return Settings{
		ClockSeconds: true,
		ShowHelpBar:  true,
		AltScreen:    true,
	}
}

// Load reads the settings file. A missing file is not an error; it
// yields the defaults so first runs need no setup step.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("settings: read %s: %w", path, err)
	}

	result := Default()
	if err := json.Unmarshal(jsonc.ToJSON(data), &result); err != nil {
		return Default(), fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return result, nil
}

// Save writes the settings file, creating parent directories as
// needed. The template keeps a comment per field so the file stays
// self-describing when edited by hand.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("settings: create directory: %w", err)
	}

	content := fmt.Sprintf(`{
  // Show seconds on the desktop clock.
  "clock_seconds": %t,

  // Render the key-hint line at the bottom of every screen.
  "show_help_bar": %t,

  // Run on the terminal's alternate screen buffer.
  "alt_screen": %t
}
`, s.ClockSeconds, s.ShowHelpBar, s.AltScreen)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", path, err)
	}
	return nil
}
