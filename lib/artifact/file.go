// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Stored describes an artifact written to or read from disk.
type Stored struct {
	Path string
	Size int
	Hash Hash
}

// Write stores data as dir/name, creating dir if needed. An existing
// file of the same name is replaced.
func Write(kind Kind, dir, name string, data []byte) (Stored, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Stored{}, fmt.Errorf("invalid %s file name %q", kind, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Stored{}, fmt.Errorf("creating export directory: %w", err)
	}

	finalPath := filepath.Join(dir, name)

	tmpFile, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return Stored{}, fmt.Errorf("creating temp %s file: %w", kind, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return Stored{}, fmt.Errorf("writing %s: %w", kind, err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return Stored{}, fmt.Errorf("setting %s permissions: %w", kind, err)
	}
	if err := tmpFile.Close(); err != nil {
		return Stored{}, fmt.Errorf("closing temp %s file: %w", kind, err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return Stored{}, fmt.Errorf("renaming %s to %s: %w", kind, finalPath, err)
	}

	success = true
	return Stored{Path: finalPath, Size: len(data), Hash: Digest(kind, data)}, nil
}

// Read loads the whole file at path.
func Read(kind Kind, path string) ([]byte, Stored, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Stored{}, fmt.Errorf("reading %s: %w", kind, err)
	}
	return data, Stored{Path: path, Size: len(data), Hash: Digest(kind, data)}, nil
}
