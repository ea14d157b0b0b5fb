// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the binary entrypoint error path: reporting a
// failure from run() on stderr before or after the structured logger
// and the TUI own the terminal.
package process
