// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package console binds the terminals, the log stream, the rule
// bridge and the session timer into the console's single event flow.
//
// A [Controller] is driven by one goroutine, the UI's update loop.
// Key presses, transport events, timer expiries and user choices are
// handed to it one at a time, and every outbound message is sent
// synchronously from that goroutine, so messages leave in the order
// their triggers arrived. The controller holds no locks.
//
// Failures surface according to their [ErrorCategory]: validation
// and snapshot failures raise a blocking alert, transport failures
// are written inline into the affected terminals, and nothing ends the
// console. Destructive actions wait for an explicit confirmation.
package console
