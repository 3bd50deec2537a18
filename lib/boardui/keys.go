// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the board terminal client.
type KeyMap struct {
	// Navigation (context-sensitive: menu movement, list movement, or
	// detail scrolling depending on current focus).
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding // Board: previous page.
	Right    key.Binding // Board: next page.
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Activation.
	Select key.Binding // Open the highlighted menu entry or post.
	Back   key.Binding // Return to the previous screen / dismiss modal.

	// Focus switching on the board screen (sidebar vs. post list).
	FocusToggle key.Binding

	// Board actions.
	Compose  key.Binding // Write a new post.
	Edit     key.Binding // Edit the open post.
	Delete   key.Binding // Delete the open post or selected comment.
	Comment  key.Binding // Focus the comment input.
	Bookmark key.Binding // Toggle bookmark on the open or selected post.
	TagJump  key.Binding // Filter the list by a tag of the open post.

	// Filters.
	BookmarkView key.Binding // Toggle the bookmarks-only view.
	FilterClear  key.Binding // Drop the active tag filter.

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Arrow keys carry the
// navigation the way the dial-up services did, with vim-style j/k as
// an alias.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("←", "prev page"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("→", "next page"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("PgUp", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("PgDn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch pane"),
	),
	Compose: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "write"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Comment: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "comment"),
	),
	Bookmark: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "bookmark"),
	),
	TagJump: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "tag filter"),
	),
	BookmarkView: key.NewBinding(
		key.WithKeys("B"),
		key.WithHelp("B", "bookmarks"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "clear filter"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
