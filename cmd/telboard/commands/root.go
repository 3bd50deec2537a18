// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/telboard/telboard/cmd/telboard/cli"
	"github.com/telboard/telboard/lib/boardstore"
	"github.com/telboard/telboard/lib/clock"
	"github.com/telboard/telboard/lib/config"
	"github.com/telboard/telboard/lib/schema/board"
	"github.com/telboard/telboard/lib/version"
)

// configPath is the --config override shared by every command that
// touches the database. Empty means TELBOARD_CONFIG or the built-in
// defaults.
var configPath string

// addConfigFlag registers the shared --config flag on a command's
// flag set.
func addConfigFlag(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&configPath, "config", "", "path to telboard.yaml (overrides TELBOARD_CONFIG)")
}

// loadConfig resolves configuration in precedence order: --config
// flag, TELBOARD_CONFIG environment variable, built-in defaults.
// Unlike service deployments, the interactive client works out of the
// box with no config file at all.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	if os.Getenv("TELBOARD_CONFIG") != "" {
		return config.Load()
	}
	cfg := config.Default()
	if cfg.Session.FlagFile == "" {
		cfg.Session.FlagFile = filepath.Join(cfg.Paths.State, "force-logout")
	}
	return cfg, nil
}

// openStore ensures the data directories exist and opens the board
// database named by the config.
func openStore(cfg *config.Config, logger *slog.Logger) (*boardstore.Store, error) {
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	return boardstore.Open(boardstore.Config{
		Path:   cfg.Paths.Database,
		Clock:  clock.Real(),
		Logger: logger,
	})
}

// operatorActor is the identity admin commands act as. Admin commands
// require direct filesystem access to the database, which is already
// a stronger credential than any board account.
func operatorActor() board.User {
	return board.User{
		Username:    "operator",
		DisplayName: "운영자",
		Role:        board.RoleAdmin,
	}
}

// Root builds the telboard command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "telboard",
		Summary: "retro terminal bulletin board",
		Description: "Telboard is a PC-communication style bulletin board for the\n" +
			"terminal. Running telboard with no arguments starts the\n" +
			"interactive client: sign in (or browse as a guest), read and\n" +
			"write posts, comment, and keep bookmarks.",
		Usage: "telboard [flags]",
		Examples: []cli.Example{
			{Description: "start the interactive client", Command: "telboard"},
			{Description: "start with an explicit config file", Command: "telboard --config /etc/telboard.yaml"},
			{Description: "create the first admin account", Command: "telboard admin users create sysop --role admin"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("telboard", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return runTUI()
		},
		Subcommands: []*cli.Command{
			demoCommand(),
			adminCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "print version information",
		Run: func(args []string) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}
