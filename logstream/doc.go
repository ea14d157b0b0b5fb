// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logstream keeps the console's view of the simulator's
// firewall log.
//
// The server owns the log. The client never renders from individual
// new_log pushes: each push only triggers a get_logs request, and the
// list is rebuilt from the logs_data snapshot that answers it. A
// [Filter] narrows a snapshot to blocked, allowed or warning entries;
// filtering is a pure function of the snapshot and the filter, so the
// same snapshot always renders the same rows.
//
// While the log panel is open the [Synchronizer] keeps the last
// snapshot, and changing the filter re-renders from it without a
// round trip. Closing the panel discards the snapshot.
package logstream
