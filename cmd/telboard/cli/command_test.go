// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "telboard",
		Subcommands: []*Command{
			{
				Name: "demo",
				Run: func(args []string) error {
					called = "demo"
					return nil
				},
			},
			{
				Name: "admin",
				Run: func(args []string) error {
					called = "admin"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"admin"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "admin" {
		t.Errorf("dispatched to %q, want %q", called, "admin")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "telboard",
		Subcommands: []*Command{
			{
				Name: "admin",
				Subcommands: []*Command{
					{
						Name: "posts",
						Subcommands: []*Command{
							{
								Name: "delete",
								Run: func(args []string) error {
									called = "admin posts delete"
									receivedArgs = args
									return nil
								},
							},
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"admin", "posts", "delete", "42"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "admin posts delete" {
		t.Errorf("dispatched to %q, want %q", called, "admin posts delete")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "42" {
		t.Errorf("args = %v, want [42]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var output string

	command := &Command{
		Name: "create",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flagSet.StringVar(&output, "output", "board.tbkp", "output path")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	if err := command.Execute([]string{"--output", "/tmp/backup.tbkp"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if output != "/tmp/backup.tbkp" {
		t.Errorf("output = %q, want %q", output, "/tmp/backup.tbkp")
	}
}

func TestCommand_Execute_UnknownCommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "telboard",
		Subcommands: []*Command{
			{Name: "admin", Run: func(args []string) error { return nil }},
			{Name: "demo", Run: func(args []string) error { return nil }},
		},
	}

	err := root.Execute([]string{"amin"})
	if err == nil {
		t.Fatal("Execute() succeeded for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "admin"`) {
		t.Errorf("error %q lacks suggestion for admin", err.Error())
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "restore",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("restore", pflag.ContinueOnError)
			flagSet.String("passphrase", "", "decryption passphrase")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--pasphrase", "x"})
	if err == nil {
		t.Fatal("Execute() succeeded for unknown flag")
	}
	if !strings.Contains(err.Error(), "--passphrase") {
		t.Errorf("error %q lacks flag suggestion", err.Error())
	}
}

func TestCommand_PrintHelp_ListsSubcommands(t *testing.T) {
	root := &Command{
		Name:    "telboard",
		Summary: "retro terminal bulletin board",
		Subcommands: []*Command{
			{Name: "demo", Summary: "render the component demo screen"},
			{Name: "admin", Summary: "board administration"},
		},
	}

	var buffer bytes.Buffer
	root.PrintHelp(&buffer)

	help := buffer.String()
	for _, want := range []string{"demo", "admin", "render the component demo screen"} {
		if !strings.Contains(help, want) {
			t.Errorf("help output lacks %q:\n%s", want, help)
		}
	}
}

func TestToolError_ExitCodes(t *testing.T) {
	tests := []struct {
		err  *ToolError
		code int
	}{
		{Validation("bad input"), 2},
		{NotFound("no such post"), 3},
		{Forbidden("admin only"), 4},
		{Conflict("slug taken"), 5},
		{Internal("corrupt container"), 6},
	}
	for _, test := range tests {
		if got := test.err.ExitCode(); got != test.code {
			t.Errorf("%s: exit code %d, want %d", test.err.Category, got, test.code)
		}
	}
}

func TestToolError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	wrapped := &ToolError{Category: CategoryInternal, Err: inner}
	if !errors.Is(wrapped, inner) {
		t.Error("errors.Is does not reach the wrapped error")
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"admin", "admin", 0},
		{"amin", "admin", 1},
		{"dmeo", "demo", 2},
		{"backup", "restore", 7},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
