// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the console's YAML configuration.
//
// A configuration file is optional: [Default] returns a usable
// development configuration pointing at a local simulator. When a file
// is used it comes from exactly one place, either the FWCONSOLE_CONFIG
// environment variable (via [Load]) or a --config flag (via
// [LoadFile]). Command-line flags applied by the binary override both.
//
// The file may carry development and production sections that
// override base values when [Config].Environment matches.
//
// Path fields go through ${VAR} and ${VAR:-default} expansion after
// loading, with ${HOME} always available. No other environment
// variables override configuration values.
//
// Key exports:
//
//   - [Config] -- Server, Terminal, Rules and Paths sections
//   - [Default] -- development defaults
//   - [Load] and [LoadFile] -- the two file entry points
//   - [Config.Validate] -- rejects values the console cannot run with
package config
