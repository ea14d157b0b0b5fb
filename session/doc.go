// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session tracks the lifetime of the server session behind
// the console.
//
// The server announces a lifetime in seconds when it initializes a
// session. [Manager.Arm] starts one countdown for it, replacing any
// countdown still pending. When the countdown elapses the manager
// posts an [Expiry] on [Manager.Expired]; the event loop confirms it
// with [Manager.Confirm] before resetting the client. Each arm bumps a
// generation counter, so an expiry posted by a replaced countdown is
// rejected even if its timer had already started running.
package session
