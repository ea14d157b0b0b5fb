// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the shared terminal user interface pieces the
// console front end is drawn with: the color theme, centered modal
// dialogs, a single-line prompt, overlay splicing and scrollbars.
//
// The package knows nothing about firewalls or sessions. Callers map
// their own states onto a [Tone] and hand plain strings to the
// dialogs; layout and key routing stay with the caller's model.
package tui
