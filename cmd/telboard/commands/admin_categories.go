// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/telboard/telboard/cmd/telboard/cli"
	"github.com/telboard/telboard/lib/schema/board"
)

func adminCategoriesCommand() *cli.Command {
	return &cli.Command{
		Name:    "categories",
		Summary: "category management",
		Subcommands: []*cli.Command{
			adminCategoriesListCommand(),
			adminCategoriesAddCommand(),
			adminCategoriesRemoveCommand(),
			adminCategoriesImportCommand(),
		},
	}
}

func adminCategoriesListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "list categories in sidebar order",
		Usage:   "telboard admin categories list",
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

			categories, err := store.ListCategories(context.Background())
			if err != nil {
				return storeError(err)
			}
			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSLUG\tNAME\tPOSITION")
			for _, category := range categories {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n",
					category.ID, category.Slug, category.Name, category.Position)
			}
			return tw.Flush()
		},
	}
}

func adminCategoriesAddCommand() *cli.Command {
	var position int
	return &cli.Command{
		Name:    "add",
		Summary: "add a category",
		Usage:   "telboard admin categories add <slug> <name> [--position N]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("add", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			flagSet.IntVar(&position, "position", 0, "sidebar sort position (lower sorts first)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return cli.Validation("expected <slug> <name>, got %d arguments", len(args))
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

			category, err := store.AddCategory(context.Background(), operatorActor(), board.Category{
				Slug:     args[0],
				Name:     args[1],
				Position: position,
			})
			if err != nil {
				return storeError(err)
			}
			fmt.Printf("added category %d: %s (%s)\n", category.ID, category.Name, category.Slug)
			return nil
		},
	}
}

func adminCategoriesRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:    "remove",
		Summary: "remove an empty category",
		Usage:   "telboard admin categories remove <slug>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("remove", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one slug, got %d arguments", len(args))
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

			if err := store.RemoveCategory(context.Background(), operatorActor(), args[0]); err != nil {
				return storeError(err)
			}
			fmt.Printf("removed category %s\n", args[0])
			return nil
		},
	}
}

// categorySeed is one entry of a YAML seed file.
type categorySeed struct {
	Slug     string `yaml:"slug"`
	Name     string `yaml:"name"`
	Position int    `yaml:"position"`
}

func adminCategoriesImportCommand() *cli.Command {
	return &cli.Command{
		Name:    "import",
		Summary: "import categories from a YAML seed file",
		Description: "Reads a YAML list of categories and upserts each by slug:\n" +
			"existing slugs get their name and position updated, new slugs\n" +
			"are created. Nothing is deleted.\n" +
			"\n" +
			"Seed file format:\n" +
			"  - slug: free\n" +
			"    name: 자유게시판\n" +
			"    position: 1\n" +
			"  - slug: qna\n" +
			"    name: 질문과 답변\n" +
			"    position: 2",
		Usage: "telboard admin categories import <seed.yaml>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one seed file, got %d arguments", len(args))
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var seeds []categorySeed
			if err := yaml.Unmarshal(data, &seeds); err != nil {
				return cli.Validation("parsing %s: %v", args[0], err)
			}
			if len(seeds) == 0 {
				return cli.Validation("%s contains no categories", args[0])
			}
			categories := make([]board.Category, 0, len(seeds))
			for _, seed := range seeds {
				categories = append(categories, board.Category{
					Slug:     seed.Slug,
					Name:     seed.Name,
					Position: seed.Position,
				})
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

			if err := store.ImportCategories(context.Background(), operatorActor(), categories); err != nil {
				return storeError(err)
			}
			fmt.Printf("imported %d categories from %s\n", len(categories), args[0])
			return nil
		},
	}
}
