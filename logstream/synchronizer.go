// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logstream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bureau-foundation/fwconsole/lib/artifact"
	"github.com/bureau-foundation/fwconsole/lib/clock"
	"github.com/bureau-foundation/fwconsole/protocol"
)

// Placeholder texts rendered in place of an empty list.
const (
	PlaceholderEmpty    = "No firewall logs yet. Traffic will be logged as rules are applied."
	placeholderFiltered = "No logs in %q category."
)

// FilteredPlaceholder is the text shown when a snapshot has entries but
// none pass filter.
func FilteredPlaceholder(filter Filter) string {
	return fmt.Sprintf(placeholderFiltered, string(filter))
}

// View is the rendered state of the log panel.
type View struct {
	Filter Filter
	Stats  protocol.LogStats
	Rows   []Row
	// Placeholder is non-empty exactly when Rows is empty and a
	// snapshot has been rendered.
	Placeholder string
	Warnings    []protocol.RuleWarning
	// Loaded is false until the first snapshot of the view session.
	Loaded bool
}

// ExportFilename names a log export written at now:
// firewall_logs_<unix milliseconds>.txt.
func ExportFilename(now time.Time) string {
	return "firewall_logs_" + strconv.FormatInt(now.UnixMilli(), 10) + ".txt"
}

// Config holds Synchronizer dependencies.
type Config struct {
	Sender protocol.Sender
	Clock  clock.Clock
	Logger *slog.Logger
	// ExportDirectory receives log exports.
	ExportDirectory string
}

// Synchronizer requests log snapshots and renders them through the
// current filter. It is not safe for concurrent use; the console's
// event loop owns it.
type Synchronizer struct {
	sender    protocol.Sender
	clock     clock.Clock
	logger    *slog.Logger
	exportDir string

	filter Filter
	open   bool
	// snapshot is the last logs_data of the current view session.
	snapshot *protocol.LogsData
	stats    protocol.LogStats
	view     View
}

// NewSynchronizer returns a Synchronizer with the panel closed and the
// filter set to all.
func NewSynchronizer(config Config) *Synchronizer {
	return &Synchronizer{
		sender:    config.Sender,
		clock:     config.Clock,
		logger:    config.Logger,
		exportDir: config.ExportDirectory,
		filter:    FilterAll,
		view:      View{Filter: FilterAll},
	}
}

// Filter returns the current filter.
func (s *Synchronizer) Filter() Filter { return s.filter }

// IsOpen reports whether a view session is active.
func (s *Synchronizer) IsOpen() bool { return s.open }

// Stats returns the counters of the most recent snapshot, open panel
// or not.
func (s *Synchronizer) Stats() protocol.LogStats { return s.stats }

// View returns the rendered panel state.
func (s *Synchronizer) View() View { return s.view }

// Open starts a view session and requests a snapshot.
func (s *Synchronizer) Open(ctx context.Context) error {
	s.open = true
	s.snapshot = nil
	s.view = View{Filter: s.filter, Stats: s.stats}
	return s.request(ctx)
}

// Close ends the view session and discards its snapshot.
func (s *Synchronizer) Close() {
	s.open = false
	s.snapshot = nil
}

// Refresh requests a new snapshot.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	return s.request(ctx)
}

// HandleNewLog reacts to a new_log push by requesting a snapshot. The
// pushed entry itself is never rendered.
func (s *Synchronizer) HandleNewLog(ctx context.Context, event protocol.NewLog) error {
	s.logger.Debug("new log entry announced",
		"action", event.Entry.Action,
		"source", event.Entry.Source,
		"destination", event.Entry.Destination,
	)
	return s.request(ctx)
}

// HandleSnapshot renders a logs_data snapshot: the list is rebuilt
// from scratch, counters come from the snapshot (or are derived when
// it carries none), and only entries passing the filter are kept.
func (s *Synchronizer) HandleSnapshot(data protocol.LogsData) View {
	if data.Stats != nil {
		s.stats = *data.Stats
	} else {
		s.stats = ComputeStats(data.Logs)
	}
	if s.open {
		s.snapshot = &data
	}
	s.view = render(s.filter, s.stats, data)
	return s.view
}

// SelectFilter changes the filter. With a cached snapshot the view is
// re-rendered locally; otherwise a snapshot is requested.
func (s *Synchronizer) SelectFilter(ctx context.Context, filter Filter) error {
	if _, err := ParseFilter(string(filter)); err != nil {
		return err
	}
	s.filter = filter
	if s.open && s.snapshot != nil {
		s.view = render(filter, s.stats, *s.snapshot)
		return nil
	}
	s.view.Filter = filter
	return s.request(ctx)
}

// Clear asks the server to discard its log and counters, then requests
// the emptied snapshot. Callers confirm with the user first.
func (s *Synchronizer) Clear(ctx context.Context) error {
	if err := s.sender.Send(ctx, protocol.ClearLogs()); err != nil {
		return fmt.Errorf("sending clear_logs: %w", err)
	}
	s.logger.Info("log clear requested")
	return s.request(ctx)
}

// RequestExport asks the server for its plain-text log export.
func (s *Synchronizer) RequestExport(ctx context.Context) error {
	if err := s.sender.Send(ctx, protocol.GetRawLogs()); err != nil {
		return fmt.Errorf("sending get_raw_logs: %w", err)
	}
	return nil
}

// HandleRawLogs writes a raw_logs_data export to the export directory
// unchanged.
func (s *Synchronizer) HandleRawLogs(data protocol.RawLogsData) (artifact.Stored, error) {
	stored, err := artifact.Write(artifact.LogExport, s.exportDir, ExportFilename(s.clock.Now()), []byte(data.Logs))
	if err != nil {
		return artifact.Stored{}, err
	}
	s.logger.Info("log export saved",
		"path", stored.Path,
		"bytes", stored.Size,
		"blake3", artifact.FormatHash(stored.Hash),
	)
	return stored, nil
}

func (s *Synchronizer) request(ctx context.Context) error {
	if err := s.sender.Send(ctx, protocol.GetLogs()); err != nil {
		return fmt.Errorf("sending get_logs: %w", err)
	}
	return nil
}

func render(filter Filter, stats protocol.LogStats, data protocol.LogsData) View {
	view := View{
		Filter:   filter,
		Stats:    stats,
		Warnings: data.Warnings,
		Loaded:   true,
	}
	if len(data.Logs) == 0 {
		view.Placeholder = PlaceholderEmpty
		return view
	}
	for _, entry := range filter.Apply(data.Logs) {
		view.Rows = append(view.Rows, FormatRow(entry))
	}
	if len(view.Rows) == 0 {
		view.Placeholder = FilteredPlaceholder(filter)
	}
	return view
}
