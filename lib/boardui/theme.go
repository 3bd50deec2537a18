// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import "github.com/charmbracelet/lipgloss"

// Theme holds every color used by the board terminal UI. All screens
// pull from here so an operator can restyle the whole program by
// swapping a single value.
type Theme struct {
	// Screen background. The classic dial-up services ran white-on-blue
	// and everything below is chosen against this backdrop.
	ScreenBackground lipgloss.Color

	// General text.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selection (inverse-video rows in menus and post lists).
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Role accents shown next to author names.
	AdminForeground  lipgloss.Color
	MemberForeground lipgloss.Color
	GuestForeground  lipgloss.Color

	// Chrome.
	TitleForeground  lipgloss.Color // Service name in the top banner.
	HeaderForeground lipgloss.Color // Column headers, section labels.
	BorderColor      lipgloss.Color // Box-drawing frames.
	ClockForeground  lipgloss.Color // Desktop clock.
	HelpText         lipgloss.Color // Bottom key-hint bar.

	// Semantic accents.
	AccentNew      lipgloss.Color // "NEW" markers, unread counts.
	AccentBookmark lipgloss.Color // Bookmark star.
	AccentTag      lipgloss.Color // Tag chips.
	AccentError    lipgloss.Color // Error notices.

	// Input fields.
	InputForeground lipgloss.Color
	InputBackground lipgloss.Color

	// Modal notices and confirm dialogs.
	NoticeForeground lipgloss.Color
	NoticeBackground lipgloss.Color

	LinkForeground lipgloss.Color
}

// RoleColor returns the accent for an author role label. Unknown roles
// fall back to normal text.
func (t Theme) RoleColor(role string) lipgloss.Color {
	switch role {
	case "admin":
		return t.AdminForeground
	case "guest":
		return t.GuestForeground
	case "member":
		return t.MemberForeground
	}
	return t.NormalText
}

// DefaultTheme is the built-in palette: bright text on deep blue,
// in the manner of the PC-communication services of the 1990s.
// ANSI 256 colors for broad terminal support.
var DefaultTheme = Theme{
	ScreenBackground: lipgloss.Color("17"), // deep blue

	NormalText: lipgloss.Color("255"), // near-white
	FaintText:  lipgloss.Color("110"), // desaturated blue-grey

	SelectedBackground: lipgloss.Color("51"), // bright cyan
	SelectedForeground: lipgloss.Color("17"), // deep blue (inverse)

	AdminForeground:  lipgloss.Color("213"), // pink
	MemberForeground: lipgloss.Color("255"),
	GuestForeground:  lipgloss.Color("247"), // grey

	TitleForeground:  lipgloss.Color("226"), // bright yellow
	HeaderForeground: lipgloss.Color("87"),  // light cyan
	BorderColor:      lipgloss.Color("45"),  // cyan
	ClockForeground:  lipgloss.Color("226"),
	HelpText:         lipgloss.Color("111"),

	AccentNew:      lipgloss.Color("214"), // orange
	AccentBookmark: lipgloss.Color("220"), // gold
	AccentTag:      lipgloss.Color("120"), // green
	AccentError:    lipgloss.Color("203"), // soft red

	InputForeground: lipgloss.Color("17"),
	InputBackground: lipgloss.Color("252"), // light grey field

	NoticeForeground: lipgloss.Color("17"),
	NoticeBackground: lipgloss.Color("123"), // pale cyan panel

	LinkForeground: lipgloss.Color("87"),
}
