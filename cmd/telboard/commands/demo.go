// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/telboard/telboard/cmd/telboard/cli"
	"github.com/telboard/telboard/lib/boardui"
)

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:    "demo",
		Summary: "render the component demo screen",
		Description: "Renders a static gallery of the client's visual components\n" +
			"(palette, border styles, menu widget, post rows, markdown) to\n" +
			"stdout. Useful for checking how the theme looks in a given\n" +
			"terminal and font before signing in.",
		Usage: "telboard demo",
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			width := 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
			fmt.Println(boardui.DemoView(width))
			return nil
		},
	}
}
