// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Flag is the force-logout flag file. Raising it tells every running
// client to sign out; each client's watcher clears it after acting.
// The flag is raised BEFORE any server-side session teardown so a
// client can never observe "kicked but flag absent" and stay signed
// in.
type Flag struct {
	path string
}

// NewFlag returns a flag at the given path. The parent directory must
// exist.
func NewFlag(path string) Flag {
	return Flag{path: path}
}

// Path returns the flag file location.
func (f Flag) Path() string {
	return f.path
}

// Raise creates the flag file. Idempotent.
func (f Flag) Raise() error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("session: raising flag %s: %w", f.path, err)
	}
	return file.Close()
}

// Clear removes the flag file. Idempotent: a missing file is not an
// error, since two clients may race to clear the same flag.
func (f Flag) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: clearing flag %s: %w", f.path, err)
	}
	return nil
}

// Raised reports whether the flag file exists.
func (f Flag) Raised() (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("session: checking flag %s: %w", f.path, err)
}

// EnsureDir creates the flag's parent directory.
func (f Flag) EnsureDir() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("session: flag directory: %w", err)
	}
	return nil
}
