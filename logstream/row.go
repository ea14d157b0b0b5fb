// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstream

import (
	"fmt"
	"strings"
	"time"

	"github.com/bureau-foundation/fwconsole/protocol"
)

// Class is the visual category of a row.
type Class int

const (
	ClassInfo Class = iota
	ClassAllowed
	ClassBlocked
	ClassWarning
)

// TimestampLayout is the server's timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// Row is one rendered log entry.
type Row struct {
	// Time is the entry's time of day, or the raw timestamp when it
	// does not parse.
	Time   string
	Action string
	// Summary is the traffic line, or the warning text for WARNING
	// entries.
	Summary string
	Rule    string
	Warning string
	Class   Class
}

// FormatRow renders entry.
func FormatRow(entry protocol.LogEntry) Row {
	row := Row{
		Time:   timeOfDay(entry.Timestamp),
		Action: entry.Action,
		Class:  classify(entry),
	}
	if entry.Action == protocol.ActionWarning {
		subject := entry.Rule
		if subject == "" {
			subject = entry.Source
		}
		row.Summary = "⚠ " + subject
		return row
	}

	endpoint := strings.ToUpper(entry.Protocol)
	if entry.Port != "" {
		endpoint += ":" + string(entry.Port)
	}
	row.Summary = fmt.Sprintf("%s → %s (%s)", entry.Source, entry.Destination, endpoint)
	row.Rule = entry.Rule
	row.Warning = entry.Warning
	return row
}

// String renders the row as one plain line.
func (r Row) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s %-7s %s", r.Time, r.Action, r.Summary)
	if r.Rule != "" {
		builder.WriteString(" | Rule: ")
		builder.WriteString(r.Rule)
	}
	if r.Warning != "" {
		builder.WriteString(" | ⚠ ")
		builder.WriteString(r.Warning)
	}
	return builder.String()
}

func classify(entry protocol.LogEntry) Class {
	switch {
	case isWarning(entry):
		return ClassWarning
	case isBlocked(entry):
		return ClassBlocked
	case entry.Action == protocol.ActionAccept:
		return ClassAllowed
	}
	return ClassInfo
}

func timeOfDay(timestamp string) string {
	parsed, err := time.Parse(TimestampLayout, timestamp)
	if err != nil {
		return timestamp
	}
	return parsed.Format("15:04:05")
}
