// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package boardui implements the Telboard terminal client. Built on
// bubbletea (Elm architecture), it recreates the feel of a dial-up
// PC communication service: a login screen, a desktop main menu with
// a live clock, and a board view with a category sidebar, a paged
// post list, and a full post detail pane with comments.
//
// The [Service] interface (composed of [AuthService], [PostService],
// [CommentService], and [BookmarkService]) decouples the UI from the
// data backend; [boardstore.Store] is the SQLite implementation. The
// session layer supplies the signed-in identity and the read-only
// rule for guests: every mutating key handler gates on the session
// before calling the backend, and the store enforces the same rule a
// second time on its own.
//
// Data flow:
//
//	[SQLite store]
//	      | (Service interface)
//	  [Model] <- bubbletea event loop
//	      |
//	[terminal output]
package boardui
