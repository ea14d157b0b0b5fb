// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. The byte values
// are the ASCII domain name, zero-padded.
type domainKey [32]byte

// Kind selects the hash domain of an artifact.
type Kind int

const (
	// RuleSet is an iptables-style rule script.
	RuleSet Kind = iota
	// LogExport is the server's plain-text log export.
	LogExport
)

var (
	ruleSetDomainKey = domainKey{
		'f', 'w', 'c', 'o', 'n', 's', 'o', 'l', 'e', '.', 'r', 'u', 'l', 'e', 's', 'e',
		't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	logExportDomainKey = domainKey{
		'f', 'w', 'c', 'o', 'n', 's', 'o', 'l', 'e', '.', 'l', 'o', 'g', 'e', 'x', 'p',
		'o', 'r', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

func (k Kind) String() string {
	switch k {
	case RuleSet:
		return "rule set"
	case LogExport:
		return "log export"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) domain() domainKey {
	if k == LogExport {
		return logExportDomainKey
	}
	return ruleSetDomainKey
}

// Digest hashes data in kind's domain.
func Digest(kind Kind, data []byte) Hash {
	key := kind.domain()
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("artifact: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// FormatHash returns the hex encoding of hash.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing artifact hash: %w", err)
	}
	if len(decoded) != 32 {
		return hash, fmt.Errorf("artifact hash is %d bytes, want 32", len(decoded))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// FormatRef returns the short form used in log lines and notices:
// "art-" followed by the first 12 hex characters.
func FormatRef(hash Hash) string {
	return "art-" + hex.EncodeToString(hash[:6])
}
