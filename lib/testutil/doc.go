// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout pattern so tests of the transport and the
// session timer never block forever on a channel. They are the only
// place tests use a real wall-clock timeout; everything else runs on
// lib/clock's fake clock.
//
// [WebsocketURL] turns an httptest server URL into the ws:// form the
// transport dials.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
