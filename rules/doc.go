// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rules moves firewall rule sets between the simulator and
// local files.
//
// A rule set is opaque text. Export sends get_rules and writes the
// rules_data answer unchanged to a file named for the local wall-clock
// time, YYYYMMDDHHMMSS.<ext>. Import checks the file name's extension
// before anything else, then reads the file whole and submits it with
// load_rules_from_script. An import with the wrong extension fails
// without contacting the server.
package rules
