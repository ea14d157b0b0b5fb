// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport carries the console's event channel over one
// websocket connection to the simulator.
//
// [Client.Run] owns the connection lifecycle: dial, subprotocol
// negotiation, frame reading, keepalive pings and exponential backoff
// reconnection. Lifecycle changes and inbound envelopes are delivered
// in order on [Client.Events] as [Connected], [Disconnected] and
// [Received] values; the console's event loop is their only consumer.
//
// [Client.Send] writes one envelope on the live connection. It fails
// with [protocol.ErrDisconnected] when there is none: nothing is
// queued, and nothing is replayed after a reconnect.
//
// The simulator keys its session on an HTTP cookie set during the
// handshake. The client keeps cookies in a jar that survives
// reconnects, so a reconnect resumes the same server session.
// [Client.ResetSession] replaces the jar and drops the connection,
// so the next connection starts a new session.
package transport
