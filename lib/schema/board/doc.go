// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package board defines the Telboard domain types: users, categories,
// posts, comments, and post drafts. These are the structs the store
// persists, the backup snapshots carry, and the terminal UI renders.
package board
