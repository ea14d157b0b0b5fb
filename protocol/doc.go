// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the event protocol spoken with the firewall
// simulator.
//
// The protocol is a catalogue of named, asynchronous messages with no
// correlation identifiers. Requests and their responses pair by name
// (get_logs and logs_data, get_rules and rules_data, get_raw_logs and
// raw_logs_data); responses are full snapshots, so a duplicated or
// reordered request is harmless.
//
// Client to server:
//
//	command {terminal, command}
//	get_logs
//	get_raw_logs
//	get_rules
//	load_rules_from_script {script}
//	clear_logs
//
// Server to client:
//
//	connected {data}
//	session_initialized {lifetime}
//	output {terminal, output}
//	clear {terminal}
//	update_ip_display {terminal, ip, network}
//	new_log {LogEntry}
//	logs_data {logs, stats, warnings}
//	raw_logs_data {logs}
//	rules_data {rules}
//	error {message}
//
// # Framing
//
// Every websocket message carries one envelope, {"event": name,
// "data": payload}, with data omitted for payload-less requests. The
// framing is chosen per connection by websocket subprotocol: [JSON]
// ("fwsim.v1.json", text frames) or [CBOR] ("fwsim.v1.cbor", binary
// frames, Core Deterministic Encoding via lib/codec). A server that
// selects no subprotocol is spoken to in JSON.
//
// Payload types carry only `json` tags, which name fields in both
// framings.
package protocol
