// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstream

import (
	"fmt"

	"github.com/bureau-foundation/fwconsole/protocol"
)

// Filter selects which log entries are rendered.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterBlocked  Filter = "blocked"
	FilterAllowed  Filter = "allowed"
	FilterWarnings Filter = "warnings"
)

// Filters returns the filters in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterBlocked, FilterAllowed, FilterWarnings}
}

// ParseFilter returns the filter named value.
func ParseFilter(value string) (Filter, error) {
	for _, filter := range Filters() {
		if string(filter) == value {
			return filter, nil
		}
	}
	return "", fmt.Errorf("unknown log filter %q (valid: all, blocked, allowed, warnings)", value)
}

// Match reports whether entry passes the filter. Blocked means DROP or
// REJECT; allowed means ACCEPT; warnings matches the warning category
// and WARNING actions.
func (f Filter) Match(entry protocol.LogEntry) bool {
	switch f {
	case FilterBlocked:
		return isBlocked(entry)
	case FilterAllowed:
		return entry.Action == protocol.ActionAccept
	case FilterWarnings:
		return isWarning(entry)
	}
	return true
}

// Apply returns the entries of logs that pass the filter, in order.
// logs is not modified.
func (f Filter) Apply(logs []protocol.LogEntry) []protocol.LogEntry {
	matched := make([]protocol.LogEntry, 0, len(logs))
	for _, entry := range logs {
		if f.Match(entry) {
			matched = append(matched, entry)
		}
	}
	return matched
}

func isBlocked(entry protocol.LogEntry) bool {
	return entry.Action == protocol.ActionDrop || entry.Action == protocol.ActionReject
}

func isWarning(entry protocol.LogEntry) bool {
	return entry.Category == protocol.CategoryWarning || entry.Action == protocol.ActionWarning
}

// ComputeStats derives counters from logs, for snapshots that arrive
// without them. Only the warning category counts as a warning here.
func ComputeStats(logs []protocol.LogEntry) protocol.LogStats {
	stats := protocol.LogStats{Total: len(logs)}
	for _, entry := range logs {
		switch {
		case isBlocked(entry):
			stats.Blocked++
		case entry.Action == protocol.ActionAccept:
			stats.Allowed++
		}
		if entry.Category == protocol.CategoryWarning {
			stats.Warnings++
		}
	}
	return stats
}
