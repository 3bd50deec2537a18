// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines the telboard command tree. The root
// command launches the interactive board client; subcommands cover
// the component demo screen and the admin area (posts, categories,
// users, backups, force sign-out).
package commands
