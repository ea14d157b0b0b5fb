// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"
	"errors"
)

// ErrDisconnected is returned by a Sender that has no live connection.
// Nothing is queued for later delivery.
var ErrDisconnected = errors.New("not connected to the simulator")

// Sender delivers outbound messages. Send returns once the message is
// written or has failed; messages from one goroutine are delivered in
// call order.
type Sender interface {
	Send(ctx context.Context, message Message) error
}
