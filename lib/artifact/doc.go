// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact writes and reads the text artifacts the console
// exchanges with the simulator: exported and imported rule sets and
// plain-text log exports.
//
// Artifacts are opaque. Bytes are written and read unchanged, and
// every write or read yields a BLAKE3 digest in a domain chosen by the
// artifact's [Kind], so a rule set exported and later imported can be
// matched in the logs by its digest. Writes go through a temporary
// file in the destination directory and a rename, so a reader never
// observes a partially written export.
package artifact
