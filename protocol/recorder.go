// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"
	"sync"
)

// Recorder is a Sender that keeps every message it is given. Tests use
// it in place of a live transport. The zero value records successfully.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

// Send records message, or returns the configured failure without
// recording.
func (r *Recorder) Send(ctx context.Context, message Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, message)
	return nil
}

// Fail makes subsequent sends return err. A nil err restores success.
func (r *Recorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Events returns the recorded event names in send order.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.messages))
	for index, message := range r.messages {
		names[index] = message.Event
	}
	return names
}

// Reset discards the recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
