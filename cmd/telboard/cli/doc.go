// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the telboard
// binary: a nested [Command] tree with pflag flag sets, structured
// help output, typo suggestions for unknown commands and flags,
// categorized [ToolError] values that map to exit codes, and a
// terminal-aware structured logger.
package cli
