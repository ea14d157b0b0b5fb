// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the console's single CBOR configuration.
//
// The firewall simulator protocol has two framings negotiated per
// connection: JSON (the interoperable default) and CBOR. Protocol
// payload types carry only `json` struct tags; fxamacker/cbor falls
// back to `json` tags when no `cbor` tag exists, so one tag set names
// the fields in both framings. Never add `cbor` tags next to `json`
// tags on the same field.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same envelope always produces the same bytes:
//
//	data, err := codec.Marshal(envelope)
//	err = codec.Unmarshal(data, &envelope)
package codec
