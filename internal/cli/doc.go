// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the riskapi command: flag parsing, connecting to
// RiskAPI and the interactive shell.
//
// # Key Types
//
//   - App: process-level collaborators (terminal, library, shell, logger)
//   - Launcher: connects and builds the session namespace
//   - Console: the liner-backed interactive shell
//   - FatalError: a failure that ends the process before the shell
//
// # Usage
//
//	os.Exit(cli.Main(context.Background(), cli.DefaultApp(), os.Args[1:]))
//
// # Startup
//
// With --local the launcher connects to the development server without
// resolving parameters or prompting. Otherwise it resolves parameters,
// prompts for a missing password with echo disabled and connects. The
// namespace holds the library's public exports, then the connection as
// "conn", then the connection's public exports, so connection names win.
package cli
