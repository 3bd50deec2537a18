// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/telboard/telboard/cmd/telboard/cli"
	"github.com/telboard/telboard/lib/schema/board"
)

func adminUsersCommand() *cli.Command {
	return &cli.Command{
		Name:    "users",
		Summary: "account management",
		Subcommands: []*cli.Command{
			adminUsersListCommand(),
			adminUsersCreateCommand(),
			adminUsersDeactivateCommand(),
		},
	}
}

func adminUsersListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "list accounts",
		Usage:   "telboard admin users list",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
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
			store, err := openStore(cfg, cli.NewCommandLogger())
			if err != nil {
				return err
			}
			defer store.Close()

			users, err := store.ListUsers(context.Background())
			if err != nil {
				return storeError(err)
			}
			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tDISPLAY\tROLE\tACTIVE")
			for _, user := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n",
					user.ID, user.Username, user.DisplayName, user.Role, user.Active)
			}
			return tw.Flush()
		},
	}
}

func adminUsersCreateCommand() *cli.Command {
	var displayName string
	var role string
	return &cli.Command{
		Name:    "create",
		Summary: "create an account (prompts for a password)",
		Usage:   "telboard admin users create <username> [--display NAME] [--role admin|member]",
		Examples: []cli.Example{
			{Description: "create the first admin account", Command: "telboard admin users create sysop --role admin"},
			{Description: "create a regular member", Command: "telboard admin users create hana --display 하나"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			flagSet.StringVar(&displayName, "display", "", "display name shown next to posts")
			flagSet.StringVar(&role, "role", "member", "account role: admin or member")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one username, got %d arguments", len(args))
			}
			var accountRole board.Role
			switch role {
			case "admin":
				accountRole = board.RoleAdmin
			case "member":
				accountRole = board.RoleMember
			default:
				return cli.Validation("invalid role %q: want admin or member", role)
			}

			password, err := promptPassword(fmt.Sprintf("password for %s", args[0]))
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg, cli.NewCommandLogger())
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := store.CreateUser(context.Background(), args[0], displayName, password, accountRole)
			if err != nil {
				return storeError(err)
			}
			fmt.Printf("created %s account %s (id %d)\n", user.Role, user.Username, user.ID)
			return nil
		},
	}
}

func adminUsersDeactivateCommand() *cli.Command {
	return &cli.Command{
		Name:    "deactivate",
		Summary: "disable an account's sign-in",
		Description: "Marks the account inactive. Existing posts and comments stay\n" +
			"attributed; the account just cannot sign in any more. Pair with\n" +
			"'admin force-logout' to end a live session.",
		Usage: "telboard admin users deactivate <username>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("deactivate", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one username, got %d arguments", len(args))
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg, cli.NewCommandLogger())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeactivateUser(context.Background(), operatorActor(), args[0]); err != nil {
				return storeError(err)
			}
			fmt.Printf("deactivated %s\n", args[0])
			return nil
		},
	}
}
