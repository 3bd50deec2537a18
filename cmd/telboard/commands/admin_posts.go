// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/telboard/telboard/cmd/telboard/cli"
)

func adminPostsCommand() *cli.Command {
	return &cli.Command{
		Name:    "posts",
		Summary: "post management",
		Subcommands: []*cli.Command{
			adminPostsListCommand(),
			adminPostsDeleteCommand(),
		},
	}
}

func adminPostsListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "list all posts, newest first",
		Usage:   "telboard admin posts list",
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

			ctx := context.Background()
			posts, err := store.ListPosts(ctx)
			if err != nil {
				return storeError(err)
			}
			categories, err := store.ListCategories(ctx)
			if err != nil {
				return storeError(err)
			}
			categoryNames := make(map[int64]string, len(categories))
			for _, category := range categories {
				categoryNames[category.ID] = category.Name
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tAUTHOR\tCOMMENTS\tCREATED")
			for _, post := range posts {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
					post.ID,
					categoryNames[post.CategoryID],
					post.Title,
					post.AuthorName,
					post.CommentCount,
					post.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func adminPostsDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "delete a post and everything hanging off it",
		Usage:   "telboard admin posts delete <post-id>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one post ID, got %d arguments", len(args))
			}
			postID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return cli.Validation("invalid post ID %q", args[0])
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

			if err := store.DeletePost(context.Background(), operatorActor(), postID); err != nil {
				return storeError(err)
			}
			fmt.Printf("deleted post %d\n", postID)
			return nil
		},
	}
}
