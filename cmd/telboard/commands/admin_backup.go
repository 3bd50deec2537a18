// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/telboard/telboard/cmd/telboard/cli"
	"github.com/telboard/telboard/lib/boardstore"
)

func adminBackupCommand() *cli.Command {
	return &cli.Command{
		Name:    "backup",
		Summary: "backup containers: create, restore, inspect",
		Subcommands: []*cli.Command{
			adminBackupCreateCommand(),
			adminBackupRestoreCommand(),
			adminBackupInspectCommand(),
		},
	}
}

func adminBackupCreateCommand() *cli.Command {
	var output string
	var compression string
	var encrypt bool
	return &cli.Command{
		Name:    "create",
		Summary: "write a backup container",
		Description: "Snapshots the whole board into a single container file:\n" +
			"compressed CBOR with an integrity digest, optionally encrypted\n" +
			"with a passphrase. The default output name carries a timestamp\n" +
			"and lands in the configured backups directory.",
		Usage: "telboard admin backup create [--output FILE] [--compression zstd|lz4|none] [--encrypt]",
		Examples: []cli.Example{
			{Description: "timestamped backup in the backups directory", Command: "telboard admin backup create"},
			{Description: "encrypted backup to an explicit path", Command: "telboard admin backup create --output /mnt/usb/board.tbkp --encrypt"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			flagSet.StringVar(&output, "output", "", "output path (default: backups dir, timestamped)")
			flagSet.StringVar(&compression, "compression", "zstd", "payload compression: zstd, lz4, or none")
			flagSet.BoolVar(&encrypt, "encrypt", false, "encrypt the container with a passphrase")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			tag, err := boardstore.ParseCompressionTag(compression)
			if err != nil {
				return cli.Validation("%v", err)
			}
			passphrase := ""
			if encrypt {
				passphrase, err = promptPassword("backup passphrase")
				if err != nil {
					return err
				}
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

			if output == "" {
				stamp := time.Now().Format("20060102-150405")
				output = filepath.Join(cfg.Paths.Backups, fmt.Sprintf("board-%s.tbkp", stamp))
			}

			file, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if err != nil {
				return err
			}
			backupErr := store.Backup(context.Background(), operatorActor(), file, boardstore.BackupOptions{
				Compression: tag,
				Passphrase:  passphrase,
			})
			closeErr := file.Close()
			if backupErr != nil {
				os.Remove(output)
				return storeError(backupErr)
			}
			if closeErr != nil {
				return closeErr
			}
			fmt.Printf("wrote %s\n", output)
			return nil
		},
	}
}

func adminBackupRestoreCommand() *cli.Command {
	return &cli.Command{
		Name:    "restore",
		Summary: "replace the board with a container's contents",
		Description: "Verifies the container's digest, then replaces every table in\n" +
			"one transaction. Prompts for the passphrase when the container\n" +
			"is encrypted. The current contents are gone afterwards; take a\n" +
			"backup of them first if in doubt.",
		Usage: "telboard admin backup restore <container.tbkp>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("restore", pflag.ContinueOnError)
			addConfigFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one container file, got %d arguments", len(args))
			}
			passphrase, err := containerPassphrase(args[0])
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

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			if err := store.Restore(context.Background(), operatorActor(), file, passphrase); err != nil {
				return storeError(err)
			}
			fmt.Printf("restored %s into %s\n", args[0], cfg.Paths.Database)
			return nil
		},
	}
}

func adminBackupInspectCommand() *cli.Command {
	var diag bool
	return &cli.Command{
		Name:    "inspect",
		Summary: "print a container's manifest without restoring",
		Usage:   "telboard admin backup inspect [--diag] <container.tbkp>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&diag, "diag", false, "dump the snapshot in CBOR diagnostic notation")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one container file, got %d arguments", len(args))
			}
			passphrase, err := containerPassphrase(args[0])
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			if diag {
				notation, err := boardstore.Diagnose(file, passphrase)
				if err != nil {
					return cli.Internal("diagnosing %s: %v", args[0], err)
				}
				fmt.Println(notation)
				return nil
			}

			manifest, err := boardstore.Inspect(file, passphrase)
			if err != nil {
				return cli.Internal("inspecting %s: %v", args[0], err)
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "created\t%s\n", manifest.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(tw, "compression\t%s\n", manifest.Compression)
			fmt.Fprintf(tw, "encrypted\t%t\n", manifest.Encrypted)
			fmt.Fprintf(tw, "digest\t%s\n", manifest.Digest)
			fmt.Fprintf(tw, "users\t%d\n", manifest.Users)
			fmt.Fprintf(tw, "categories\t%d\n", manifest.Categories)
			fmt.Fprintf(tw, "posts\t%d\n", manifest.Posts)
			fmt.Fprintf(tw, "comments\t%d\n", manifest.Comments)
			fmt.Fprintf(tw, "bookmarks\t%d\n", manifest.Bookmarks)
			return tw.Flush()
		},
	}
}

// containerPassphrase prompts for a passphrase when the container is
// encrypted. Plaintext containers go through with an empty one.
func containerPassphrase(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	_, probeErr := boardstore.Inspect(file, "")
	file.Close()
	if !errors.Is(probeErr, boardstore.ErrPassphraseRequired) {
		// Plaintext container, or a corrupt one: either way no
		// passphrase will help; let the caller hit the real error.
		return "", nil
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", cli.Validation("container %s needs a passphrase, which requires a terminal", path)
	}
	fmt.Fprint(os.Stderr, "container passphrase: ")
	passphrase, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(passphrase), nil
}
