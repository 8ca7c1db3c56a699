// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the riskapi console.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - ClientConfig: Connection parameters used when a flag is absent
//   - TransportConfig: HTTP timeout, throttling and page size
//   - ConsoleConfig: History, logging and color settings
//
// # Configuration Precedence
//
// Connection parameters are resolved from (in order of precedence):
//   - Command-line flags
//   - Environment variables (RISKAPI_*)
//   - ~/.riskapi/config.toml
//   - ~/.riskapi/config.json
//   - Built-in defaults
//
// # Example
//
//	[client]
//	host = "api.risk.statpro.com"
//	customer = "acme"
//	user = "jdoe"
//
//	[transport]
//	timeout_secs = 60
//	requests_per_second = 5
package config
