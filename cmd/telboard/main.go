// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/telboard/telboard/cmd/telboard/cli"
	"github.com/telboard/telboard/cmd/telboard/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that already printed their own output return a bare
		// ExitError; don't add a redundant "error:" line for those.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
