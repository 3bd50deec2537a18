// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/telboard/telboard/lib/boardui"
	"github.com/telboard/telboard/lib/clock"
	"github.com/telboard/telboard/lib/session"
	"github.com/telboard/telboard/lib/settings"
)

// runTUI starts the interactive board client: open the store, start
// the force-logout flag watcher, and hand the terminal to bubbletea.
func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Warnings and errors surface on the client's status line instead
	// of corrupting the alternate screen.
	logHandler := boardui.NewTUILogHandler(slog.LevelWarn)
	logger := slog.New(logHandler)

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The guest account must exist before anyone picks guest sign-in.
	if _, err := store.EnsureGuest(ctx); err != nil {
		return err
	}
	if users, err := store.ListUsers(ctx); err == nil && len(users) <= 1 {
		fmt.Fprintln(os.Stderr, "no accounts yet; create one with 'telboard admin users create <username>'")
	}

	sess := session.New()
	flag := session.NewFlag(cfg.Session.FlagFile)
	if err := flag.EnsureDir(); err != nil {
		return err
	}
	// A flag raised while everyone sat at the login screen is stale;
	// it must not terminate the session that signs in next.
	sess.OnSignIn(func() {
		if err := flag.Clear(); err != nil {
			logger.Warn("force-logout flag clear failed", "error", err)
		}
	})
	watcher, err := session.NewWatcher(session.WatcherConfig{
		Flag:     flag,
		Session:  sess,
		Clock:    clock.Real(),
		Interval: cfg.Session.Interval(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	go watcher.Run(ctx)

	userSettings, err := settings.Load(cfg.Paths.Settings)
	if err != nil {
		return err
	}

	model := boardui.NewModel(ctx, store, sess, boardui.Options{
		BoardName:         cfg.Board.Name,
		Tagline:           cfg.Board.Tagline,
		PageSize:          cfg.Board.PageSize,
		AutocompleteLimit: cfg.Board.AutocompleteLimit,
		GuestEnabled:      cfg.Board.GuestEnabled,
		ClockFormat:       cfg.UI.ClockFormat,
		Settings:          userSettings,
		SaveSettings: func(s settings.Settings) error {
			return settings.Save(cfg.Paths.Settings, s)
		},
	})

	var programOptions []tea.ProgramOption
	if cfg.UI.AltScreen && userSettings.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen())
	}

	program := tea.NewProgram(model, programOptions...)
	logHandler.SetProgram(program)

	_, err = program.Run()
	return err
}
