// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/bureau-foundation/fwconsole/lib/artifact"
	"github.com/bureau-foundation/fwconsole/lib/clock"
	"github.com/bureau-foundation/fwconsole/protocol"
)

// DefaultExtension is the rule-set file extension, without the dot.
const DefaultExtension = "rules"

// TimestampLayout names exported rule sets.
const TimestampLayout = "20060102150405"

var (
	// ErrWrongExtension is returned by Import for a file whose name
	// does not end in the configured extension.
	ErrWrongExtension = errors.New("rule set file has the wrong extension")

	// ErrNotSent is returned by Import when the file was read but could
	// not be submitted.
	ErrNotSent = errors.New("rule set not sent")
)

// Config holds Bridge dependencies.
type Config struct {
	Sender protocol.Sender
	Clock  clock.Clock
	Logger *slog.Logger
	// ExportDirectory receives exported rule sets.
	ExportDirectory string
	// Extension defaults to DefaultExtension.
	Extension string
}

// Bridge exports and imports rule sets.
type Bridge struct {
	sender    protocol.Sender
	clock     clock.Clock
	logger    *slog.Logger
	exportDir string
	extension string
}

// Imported describes a submitted rule set.
type Imported struct {
	artifact.Stored
	Name string
}

// NewBridge returns a Bridge.
func NewBridge(config Config) *Bridge {
	extension := strings.TrimPrefix(config.Extension, ".")
	if extension == "" {
		extension = DefaultExtension
	}
	return &Bridge{
		sender:    config.Sender,
		clock:     config.Clock,
		logger:    config.Logger,
		exportDir: config.ExportDirectory,
		extension: extension,
	}
}

// Extension returns the accepted extension, without the dot.
func (b *Bridge) Extension() string { return b.extension }

// ExportFilename names a rule set exported at now, in now's location.
func (b *Bridge) ExportFilename(now time.Time) string {
	return now.Format(TimestampLayout) + "." + b.extension
}

// RequestExport asks the server for the current rule set.
func (b *Bridge) RequestExport(ctx context.Context) error {
	if err := b.sender.Send(ctx, protocol.GetRules()); err != nil {
		return fmt.Errorf("sending get_rules: %w", err)
	}
	return nil
}

// HandleRulesData writes a rules_data answer byte-for-byte into the
// export directory, named for the local time of arrival.
func (b *Bridge) HandleRulesData(data protocol.RulesData) (artifact.Stored, error) {
	name := b.ExportFilename(b.clock.Now().Local())
	stored, err := artifact.Write(artifact.RuleSet, b.exportDir, name, []byte(data.Rules))
	if err != nil {
		return artifact.Stored{}, err
	}
	b.logger.Info("rule set exported",
		"path", stored.Path,
		"bytes", stored.Size,
		"blake3", artifact.FormatHash(stored.Hash),
	)
	return stored, nil
}

// CheckName returns ErrWrongExtension unless path ends in
// ".<extension>". The comparison is case-sensitive.
func (b *Bridge) CheckName(path string) error {
	if !strings.HasSuffix(filepath.Base(path), "."+b.extension) {
		return fmt.Errorf("%w: %s is not a .%s file", ErrWrongExtension, filepath.Base(path), b.extension)
	}
	return nil
}

// Import reads the rule set at path and submits it. The name is
// checked first; a rejected name is never read or sent.
func (b *Bridge) Import(ctx context.Context, path string) (Imported, error) {
	if err := b.CheckName(path); err != nil {
		return Imported{}, err
	}
	data, stored, err := artifact.Read(artifact.RuleSet, path)
	if err != nil {
		return Imported{}, err
	}
	if err := b.sender.Send(ctx, protocol.LoadRulesFromScript(string(data))); err != nil {
		return Imported{}, fmt.Errorf("%w: sending load_rules_from_script: %w", ErrNotSent, err)
	}
	b.logger.Info("rule set imported",
		"path", stored.Path,
		"bytes", stored.Size,
		"blake3", artifact.FormatHash(stored.Hash),
	)
	return Imported{Stored: stored, Name: filepath.Base(path)}, nil
}
