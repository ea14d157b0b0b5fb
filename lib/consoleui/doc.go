// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package consoleui is the bubbletea front end of the firewall
// console. It owns nothing but presentation state: which terminal is
// focused, whether the log panel is showing, the import prompt and the
// window size. Every domain decision goes through a
// [console.Controller], called from Update so the controller sees a
// single ordered stream of key presses, transport events and session
// expiries.
//
// Key presses aimed at a terminal are translated into control codes
// (see [KeyCodes]) and fed to the controller one at a time, so pasted
// text behaves exactly like typed text.
package consoleui
