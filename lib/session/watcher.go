// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/telboard/telboard/lib/clock"
)

// Watcher polls the force-logout flag file and signs the session out
// when it appears. One watcher runs per client process; the poll
// interval defaults to a second, so a forced logout lands within a
// second of the admin command on every machine sharing the state
// directory.
type Watcher struct {
	flag     Flag
	session  *Session
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger
}

// WatcherConfig holds the parameters for a flag watcher.
type WatcherConfig struct {
	// Flag is the flag file to poll.
	Flag Flag

	// Session is signed out (ForceOut) when the flag is raised.
	Session *Session

	// Clock drives the poll ticker.
	Clock clock.Clock

	// Interval between polls. Defaults to one second.
	Interval time.Duration

	// Logger receives operational messages.
	Logger *slog.Logger
}

// NewWatcher creates a watcher. Call Run to start polling.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("session: watcher: Session is required")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("session: watcher: Clock is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Watcher{
		flag:     cfg.Flag,
		session:  cfg.Session,
		clock:    cfg.Clock,
		interval: interval,
		logger:   logger,
	}, nil
}

// Run polls until ctx is cancelled. On each tick, a raised flag
// forces the session out and clears the flag; while signed out the
// flag is left alone so other still-signed-in clients get their turn
// to see it.
func (w *Watcher) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll is one watcher iteration, exported to tests through Run.
func (w *Watcher) poll() {
	raised, err := w.flag.Raised()
	if err != nil {
		w.logger.Warn("force-logout flag check failed", "error", err)
		return
	}
	if !raised {
		return
	}

	if _, signedIn := w.session.Current(); !signedIn {
		return
	}

	w.session.ForceOut()
	if err := w.flag.Clear(); err != nil {
		w.logger.Warn("force-logout flag clear failed", "error", err)
	}
	w.logger.Info("session forced out by flag", "flag", w.flag.Path())
}
