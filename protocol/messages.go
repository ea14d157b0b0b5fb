// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/bureau-foundation/fwconsole/lib/codec"
)

// Event names, as they appear in the envelope's "event" field.
const (
	EventCommand             = "command"
	EventGetLogs             = "get_logs"
	EventGetRawLogs          = "get_raw_logs"
	EventGetRules            = "get_rules"
	EventLoadRulesFromScript = "load_rules_from_script"
	EventClearLogs           = "clear_logs"

	EventConnected          = "connected"
	EventSessionInitialized = "session_initialized"
	EventOutput             = "output"
	EventClear              = "clear"
	EventUpdateIPDisplay    = "update_ip_display"
	EventNewLog             = "new_log"
	EventLogsData           = "logs_data"
	EventRawLogsData        = "raw_logs_data"
	EventRulesData          = "rules_data"
	EventError              = "error"
)

// Log actions the client distinguishes. Other values are informational.
const (
	ActionAccept  = "ACCEPT"
	ActionDrop    = "DROP"
	ActionReject  = "REJECT"
	ActionWarning = "WARNING"
	ActionLog     = "LOG"
	ActionInfo    = "INFO"
)

// Log categories.
const (
	CategoryNormal  = "normal"
	CategoryWarning = "warning"
	CategoryInfo    = "info"
)

// Message is an outbound event. Data is nil for payload-less requests.
type Message struct {
	Event string
	Data  any
}

// CommandRequest submits a line to a terminal's simulated shell.
type CommandRequest struct {
	Terminal string `json:"terminal"`
	Command  string `json:"command"`
}

// LoadRulesRequest carries an imported rule set verbatim.
type LoadRulesRequest struct {
	Script string `json:"script"`
}

// Command builds a command message.
func Command(terminal, command string) Message {
	return Message{Event: EventCommand, Data: CommandRequest{Terminal: terminal, Command: command}}
}

// GetLogs requests a logs_data snapshot.
func GetLogs() Message { return Message{Event: EventGetLogs} }

// GetRawLogs requests the plain-text log export.
func GetRawLogs() Message { return Message{Event: EventGetRawLogs} }

// GetRules requests the current rule set.
func GetRules() Message { return Message{Event: EventGetRules} }

// ClearLogs asks the server to reset its log store and counters.
func ClearLogs() Message { return Message{Event: EventClearLogs} }

// LoadRulesFromScript submits an imported rule set.
func LoadRulesFromScript(script string) Message {
	return Message{Event: EventLoadRulesFromScript, Data: LoadRulesRequest{Script: script}}
}

// Port is a log entry's port. The wire carries it as a string, but
// numbers and null are accepted too.
type Port string

// UnmarshalJSON accepts a string, a number or null.
func (p *Port) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	return p.set(value)
}

// UnmarshalCBOR accepts a text string, an integer, a float or null.
func (p *Port) UnmarshalCBOR(data []byte) error {
	var value any
	if err := codec.Unmarshal(data, &value); err != nil {
		return err
	}
	return p.set(value)
}

func (p *Port) set(value any) error {
	switch typed := value.(type) {
	case nil:
		*p = ""
	case string:
		*p = Port(typed)
	case float64:
		if typed != math.Trunc(typed) {
			return fmt.Errorf("port %v is not an integer", typed)
		}
		*p = Port(strconv.FormatInt(int64(typed), 10))
	case uint64:
		*p = Port(strconv.FormatUint(typed, 10))
	case int64:
		*p = Port(strconv.FormatInt(typed, 10))
	default:
		return fmt.Errorf("port has unsupported type %T", value)
	}
	return nil
}

// LogEntry is one server-side firewall log record.
type LogEntry struct {
	Timestamp   string `json:"timestamp"`
	Action      string `json:"action"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Protocol    string `json:"protocol"`
	Port        Port   `json:"port,omitempty"`
	Rule        string `json:"rule,omitempty"`
	Category    string `json:"category,omitempty"`
	Warning     string `json:"warning,omitempty"`
	Details     string `json:"details,omitempty"`
}

// LogStats are the server's aggregate counters.
type LogStats struct {
	Total    int `json:"total"`
	Blocked  int `json:"blocked"`
	Allowed  int `json:"allowed"`
	Warnings int `json:"warnings"`
}

// RuleWarning is a rule-set problem the server detected: CONFLICT
// warnings name two rules, UNREACHABLE warnings name one.
type RuleWarning struct {
	Type    string `json:"type"`
	Chain   string `json:"chain"`
	Rules   []int  `json:"rules,omitempty"`
	Rule    int    `json:"rule,omitempty"`
	Message string `json:"message"`
}

// Event is a decoded inbound event.
type Event interface {
	EventName() string
}

// Connected is the server's greeting.
type Connected struct {
	Data string `json:"data"`
}

// SessionInitialized starts a server session lasting Lifetime seconds.
type SessionInitialized struct {
	Lifetime float64 `json:"lifetime"`
}

// Output is text for a terminal.
type Output struct {
	Terminal string `json:"terminal"`
	Output   string `json:"output"`
}

// Clear wipes a terminal.
type Clear struct {
	Terminal string `json:"terminal"`
}

// UpdateIPDisplay reports a terminal's address.
type UpdateIPDisplay struct {
	Terminal string `json:"terminal"`
	IP       string `json:"ip"`
	Network  string `json:"network,omitempty"`
}

// NewLog announces that Entry was recorded.
type NewLog struct {
	Entry LogEntry
}

// LogsData is a complete log snapshot. Stats may be absent from older
// servers.
type LogsData struct {
	Logs     []LogEntry    `json:"logs"`
	Stats    *LogStats     `json:"stats,omitempty"`
	Warnings []RuleWarning `json:"warnings,omitempty"`
}

// RawLogsData is the server's plain-text log export.
type RawLogsData struct {
	Logs string `json:"logs"`
}

// RulesData is the current rule set, opaque to the client.
type RulesData struct {
	Rules string `json:"rules"`
}

// ServerError reports that the server could not serve a request.
type ServerError struct {
	Message string `json:"message"`
}

func (Connected) EventName() string          { return EventConnected }
func (SessionInitialized) EventName() string { return EventSessionInitialized }
func (Output) EventName() string             { return EventOutput }
func (Clear) EventName() string              { return EventClear }
func (UpdateIPDisplay) EventName() string    { return EventUpdateIPDisplay }
func (NewLog) EventName() string             { return EventNewLog }
func (LogsData) EventName() string           { return EventLogsData }
func (RawLogsData) EventName() string        { return EventRawLogsData }
func (RulesData) EventName() string          { return EventRulesData }
func (ServerError) EventName() string        { return EventError }
