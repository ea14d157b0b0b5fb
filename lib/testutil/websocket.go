// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "strings"

// WebsocketURL rewrites an httptest server URL (http:// or https://)
// to its websocket scheme and appends path.
//
//	server := httptest.NewServer(handler)
//	url := testutil.WebsocketURL(server.URL, "/ws")
func WebsocketURL(serverURL, path string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + path
}
