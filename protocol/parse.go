// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned by Parse for event names outside the
// catalogue. Callers drop such events.
var ErrUnknownEvent = errors.New("unknown event")

// Parse decodes an inbound envelope into its typed Event.
func Parse(envelope Envelope) (Event, error) {
	switch envelope.Event {
	case EventConnected:
		return decodeAs[Connected](envelope)
	case EventSessionInitialized:
		var event SessionInitialized
		if err := envelope.Decode(&event); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", envelope.Event, err)
		}
		if event.Lifetime < 0 {
			return nil, fmt.Errorf("%s: negative lifetime %v", envelope.Event, event.Lifetime)
		}
		return event, nil
	case EventOutput:
		return decodeAs[Output](envelope)
	case EventClear:
		return decodeAs[Clear](envelope)
	case EventUpdateIPDisplay:
		return decodeAs[UpdateIPDisplay](envelope)
	case EventNewLog:
		// The announcement only triggers a snapshot request, so a
		// push without a decodable entry is still a valid trigger.
		var entry LogEntry
		if envelope.HasPayload() {
			if err := envelope.Decode(&entry); err != nil {
				entry = LogEntry{}
			}
		}
		return NewLog{Entry: entry}, nil
	case EventLogsData:
		return decodeAs[LogsData](envelope)
	case EventRawLogsData:
		return decodeAs[RawLogsData](envelope)
	case EventRulesData:
		return decodeAs[RulesData](envelope)
	case EventError:
		return decodeAs[ServerError](envelope)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownEvent, envelope.Event)
}

func decodeAs[T Event](envelope Envelope) (Event, error) {
	var event T
	if err := envelope.Decode(&event); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", envelope.Event, err)
	}
	return event, nil
}
