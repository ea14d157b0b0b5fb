// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "github.com/bureau-foundation/fwconsole/protocol"

// Event is a connection lifecycle change or an inbound envelope.
type Event interface {
	transportEvent()
}

// Connected reports an established connection.
type Connected struct {
	// Reconnect is true when an earlier connection of the same server
	// session was lost.
	Reconnect bool
	// Subprotocol is the server's selection, empty if none.
	Subprotocol string
	// Codec names the framing in use.
	Codec string
}

// Disconnected reports that an established connection ended. The
// client is already trying to reconnect.
type Disconnected struct {
	Err error
}

// Received carries one inbound envelope.
type Received struct {
	Envelope protocol.Envelope
}

func (Connected) transportEvent()    {}
func (Disconnected) transportEvent() {}
func (Received) transportEvent()     {}
