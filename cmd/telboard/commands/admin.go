// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/telboard/telboard/cmd/telboard/cli"
	"github.com/telboard/telboard/lib/boardstore"
	"github.com/telboard/telboard/lib/session"
)

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:    "admin",
		Summary: "board administration",
		Description: "Administrative operations against the board database: posts,\n" +
			"categories, accounts, backups, and forced sign-out. With no\n" +
			"subcommand, prints a dashboard summary.",
		Usage: "telboard admin [command]",
		Examples: []cli.Example{
			{Description: "show the dashboard summary", Command: "telboard admin"},
			{Description: "seed categories from a file", Command: "telboard admin categories import seed.yaml"},
			{Description: "sign every running client out", Command: "telboard admin force-logout"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("admin", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return runAdminSummary()
		},
		Subcommands: []*cli.Command{
			adminPostsCommand(),
			adminCategoriesCommand(),
			adminUsersCommand(),
			adminBackupCommand(),
			adminForceLogoutCommand(),
		},
	}
}

// runAdminSummary prints table counts and the database path.
func runAdminSummary() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg, cli.NewCommandLogger())
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	users, err := store.ListUsers(ctx)
	if err != nil {
		return storeError(err)
	}
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return storeError(err)
	}
	posts, err := store.ListPosts(ctx)
	if err != nil {
		return storeError(err)
	}
	comments := 0
	for _, post := range posts {
		comments += post.CommentCount
	}

	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "database\t%s\n", cfg.Paths.Database)
	fmt.Fprintf(tw, "users\t%d\n", len(users))
	fmt.Fprintf(tw, "categories\t%d\n", len(categories))
	fmt.Fprintf(tw, "posts\t%d\n", len(posts))
	fmt.Fprintf(tw, "comments\t%d\n", comments)
	return tw.Flush()
}

func adminForceLogoutCommand() *cli.Command {
	return &cli.Command{
		Name:    "force-logout",
		Summary: "sign every running client out",
		Description: "Raises the force-logout flag file. Every running client polls\n" +
			"the flag once a second and returns to its login screen when it\n" +
			"sees the flag raised.",
		Usage: "telboard admin force-logout",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("force-logout", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flag := session.NewFlag(cfg.Session.FlagFile)
			if err := flag.EnsureDir(); err != nil {
				return err
			}
			if err := flag.Raise(); err != nil {
				return err
			}
			fmt.Printf("force-logout flag raised: %s\n", flag.Path())
			return nil
		},
	}
}

// storeError maps the store's sentinel errors onto CLI error
// categories so the exit code carries the failure class.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, boardstore.ErrNotFound):
		return cli.NotFound("%v", err)
	case errors.Is(err, boardstore.ErrForbidden):
		return cli.Forbidden("%v", err)
	case errors.Is(err, boardstore.ErrConflict):
		return cli.Conflict("%v", err)
	default:
		return err
	}
}

// promptPassword reads a password from the terminal with echo off,
// twice, and insists the entries match.
func promptPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", cli.Validation("password prompt requires a terminal")
	}
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "again: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", cli.Validation("passwords do not match")
	}
	if len(first) == 0 {
		return "", cli.Validation("password must not be empty")
	}
	return string(first), nil
}
