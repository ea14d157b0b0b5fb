// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package terminal holds the console's fixed set of terminal sessions
// and the keystroke handling for each.
//
// Input handling is the pure transition function [Step]: given a
// terminal's command buffer and one control code it returns the new
// buffer and a list of [Effect] values describing what the screen
// must do (echo, erase, newline, clear, prompt) and whether a command
// was submitted. Step knows nothing about screens, which keeps the
// state machine testable on its own.
//
// A [Registry] is built once per client session and owns one
// [Terminal] (buffer, addressing display, [Screen]) for each [ID]. The
// [Multiplexer] is the only writer: it applies Step's effects to the
// right screen and renders server output, clears, address updates and
// connection banners. A full client reset discards the Registry and
// builds a new one; nothing in this package is global.
//
// Nothing here is safe for concurrent use. The console mutates
// terminals only from its single event loop.
package terminal
