// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package boardstore manages SQLite storage for the board: users,
// categories, posts, comments, and bookmarks.
//
// The store is the single authority for mutation policy. Every
// mutating method takes the acting user and re-checks what the UI
// already checked: guests cannot mutate, non-owners cannot edit or
// delete other people's posts and comments (admins can), deactivated
// accounts cannot authenticate. The terminal UI enforces the same
// rules for presentation, but a store compiled into a different
// front end keeps the board correct on its own.
//
// Listings are read whole: the post list query returns every post
// with its derived comment count and ordered tag list, and the UI
// filters and paginates in memory. A dial-up board measures its
// catalog in thousands of posts, not millions, and whole-catalog
// reads keep pagination, tag filtering, and bookmark views purely
// client-side.
//
// Backups are handled by [Store.Backup], [Store.Restore], and
// [Inspect]: a deterministic CBOR snapshot wrapped in a compressed,
// digest-protected, optionally encrypted container.
package boardstore
