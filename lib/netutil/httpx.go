// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies connection errors and bounds diagnostic
// reads for the console's websocket transport.
//
// [IsExpectedCloseError] separates normal teardown (the server closing
// the socket, the console shutting down) from failures worth a warning.
// [ErrorBody] extracts a bounded excerpt of a rejected handshake's
// response body for error messages.
package netutil

import "io"

// MaxErrorBodySize bounds how much of a handshake rejection body is
// read into an error message.
const MaxErrorBodySize int64 = 4 << 10

// ErrorBody reads at most MaxErrorBodySize bytes of body. Read errors
// are ignored; a partial body is still useful in a message.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBodySize))
	return string(data)
}
