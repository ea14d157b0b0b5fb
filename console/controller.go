// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/fwconsole/lib/artifact"
	"github.com/bureau-foundation/fwconsole/lib/clock"
	"github.com/bureau-foundation/fwconsole/logstream"
	"github.com/bureau-foundation/fwconsole/protocol"
	"github.com/bureau-foundation/fwconsole/rules"
	"github.com/bureau-foundation/fwconsole/session"
	"github.com/bureau-foundation/fwconsole/terminal"
	"github.com/bureau-foundation/fwconsole/transport"
)

// Texts written into terminals and alerts.
const (
	DisconnectedBanner = "[Connection lost. Attempting to reconnect...]"
	ReconnectedBanner  = "[Reconnected successfully]"
	DiscardedNotice    = "[Not connected: command discarded]"
	ExpiredMessage     = "Your session has expired. The simulator will now reset."
	ClearLogsPrompt    = "Are you sure you want to clear all logs and statistics? This action cannot be undone."
)

// SessionResetter starts a new server session. The transport
// implements it.
type SessionResetter interface {
	ResetSession() error
}

// AlertKind distinguishes alerts that need different handling on
// dismissal.
type AlertKind int

const (
	AlertError AlertKind = iota
	// AlertExpired resets the client when dismissed.
	AlertExpired
)

// Alert is a blocking message the user must dismiss.
type Alert struct {
	Kind     AlertKind
	Category ErrorCategory
	Title    string
	Message  string
}

// Confirmation is a destructive action awaiting the user's answer.
type Confirmation struct {
	Title  string
	Prompt string
}

// Config holds Controller dependencies.
type Config struct {
	Sender   protocol.Sender
	Resetter SessionResetter
	Session  *session.Manager
	Clock    clock.Clock
	Logger   *slog.Logger

	ScrollbackLines int
	ExportDirectory string
	RulesExtension  string
}

// Controller is the console's state machine. Methods must be called
// from one goroutine.
type Controller struct {
	config Config
	logger *slog.Logger

	registry *terminal.Registry
	mux      *terminal.Multiplexer
	logs     *logstream.Synchronizer
	rules    *rules.Bridge

	connected    bool
	alerts       []Alert
	confirmation *Confirmation
	status       string
}

// NewController returns a Controller with a fresh set of terminals.
// The console starts disconnected.
func NewController(config Config) *Controller {
	controller := &Controller{config: config, logger: config.Logger}
	controller.build()
	return controller
}

// build creates the session-scoped state: terminals, log view and
// rule bridge.
func (c *Controller) build() {
	c.registry = terminal.NewRegistry(c.config.ScrollbackLines)
	c.mux = terminal.NewMultiplexer(c.registry, c.logger)
	c.logs = logstream.NewSynchronizer(logstream.Config{
		Sender:          c.config.Sender,
		Clock:           c.config.Clock,
		Logger:          c.logger,
		ExportDirectory: c.config.ExportDirectory,
	})
	c.rules = rules.NewBridge(rules.Config{
		Sender:          c.config.Sender,
		Clock:           c.config.Clock,
		Logger:          c.logger,
		ExportDirectory: c.config.ExportDirectory,
		Extension:       c.config.RulesExtension,
	})
}

// Registry returns the current terminals. A reset replaces it.
func (c *Controller) Registry() *terminal.Registry { return c.registry }

// Connected reports whether the transport has a live connection.
func (c *Controller) Connected() bool { return c.connected }

// LogView returns the rendered log panel.
func (c *Controller) LogView() logstream.View { return c.logs.View() }

// LogStats returns the most recent log counters.
func (c *Controller) LogStats() protocol.LogStats { return c.logs.Stats() }

// LogsOpen reports whether the log panel's view session is active.
func (c *Controller) LogsOpen() bool { return c.logs.IsOpen() }

// RulesExtension returns the accepted rule-set extension.
func (c *Controller) RulesExtension() string { return c.rules.Extension() }

// Status returns the latest one-line status message.
func (c *Controller) Status() string { return c.status }

// Alert returns the alert at the head of the queue.
func (c *Controller) Alert() (Alert, bool) {
	if len(c.alerts) == 0 {
		return Alert{}, false
	}
	return c.alerts[0], true
}

// PendingConfirmation returns the action awaiting confirmation.
func (c *Controller) PendingConfirmation() (Confirmation, bool) {
	if c.confirmation == nil {
		return Confirmation{}, false
	}
	return *c.confirmation, true
}

// HandleKey feeds one control code to terminal id. A completed command
// is sent at once; without a connection it is discarded with a notice
// in that terminal.
func (c *Controller) HandleKey(ctx context.Context, id terminal.ID, code rune) {
	command, submitted := c.mux.Input(id, code)
	if !submitted {
		return
	}
	if !c.connected {
		c.mux.Notice(id, terminal.Red(DiscardedNotice))
		return
	}
	if err := c.config.Sender.Send(ctx, protocol.Command(string(id), command)); err != nil {
		c.logger.Warn("command not sent", "terminal", string(id), "error", err)
		c.mux.Notice(id, terminal.Red(DiscardedNotice))
		return
	}
	c.logger.Debug("command sent", "terminal", string(id), "command", command)
}

// HandleTransport applies a transport event.
func (c *Controller) HandleTransport(ctx context.Context, event transport.Event) {
	switch event := event.(type) {
	case transport.Connected:
		c.connected = true
		if event.Reconnect {
			c.mux.Banner(terminal.Green(ReconnectedBanner), true)
		}
		c.status = "connected (" + event.Codec + ")"
		if c.logs.IsOpen() {
			c.reportSnapshot(c.logs.Refresh(ctx))
		}
	case transport.Disconnected:
		c.connected = false
		c.mux.Banner(terminal.Red(DisconnectedBanner), false)
		c.status = "reconnecting"
	case transport.Received:
		c.Dispatch(ctx, event.Envelope)
	}
}

// Dispatch applies one inbound envelope.
func (c *Controller) Dispatch(ctx context.Context, envelope protocol.Envelope) {
	event, err := protocol.Parse(envelope)
	if errors.Is(err, protocol.ErrUnknownEvent) {
		c.logger.Debug("dropping unknown event", "event", envelope.Event)
		return
	}
	if err != nil {
		switch envelope.Event {
		case protocol.EventLogsData, protocol.EventRawLogsData, protocol.EventRulesData:
			c.fail(Snapshot("%s could not be decoded: %w", envelope.Event, err))
		default:
			c.logger.Warn("dropping malformed event", "event", envelope.Event, "error", err)
		}
		return
	}

	switch event := event.(type) {
	case protocol.Connected:
		c.logger.Info("simulator greeting", "message", event.Data)
	case protocol.SessionInitialized:
		lifetime := session.Lifetime(event.Lifetime)
		c.config.Session.Arm(lifetime)
		c.logger.Info("session initialized", "lifetime", lifetime)
	case protocol.Output:
		c.mux.Output(terminal.ID(event.Terminal), event.Output)
	case protocol.Clear:
		c.mux.Clear(terminal.ID(event.Terminal))
	case protocol.UpdateIPDisplay:
		c.mux.UpdateAddress(terminal.ID(event.Terminal), event.IP, event.Network)
	case protocol.NewLog:
		c.reportSnapshot(c.logs.HandleNewLog(ctx, event))
	case protocol.LogsData:
		c.logs.HandleSnapshot(event)
	case protocol.RawLogsData:
		stored, err := c.logs.HandleRawLogs(event)
		if err != nil {
			c.fail(Snapshot("saving log export: %w", err))
			return
		}
		c.status = "logs saved to " + stored.Path
	case protocol.RulesData:
		stored, err := c.rules.HandleRulesData(event)
		if err != nil {
			c.fail(Snapshot("saving rule set: %w", err))
			return
		}
		c.status = "rules saved to " + stored.Path
	case protocol.ServerError:
		c.fail(Snapshot("simulator error: %s", event.Message))
	}
}

// HandleExpiry applies a session timer expiry. Stale expiries are
// ignored; a current one raises the expiry alert, and dismissing it
// resets the client.
func (c *Controller) HandleExpiry(expiry session.Expiry) {
	if !c.config.Session.Confirm(expiry) {
		c.logger.Debug("ignoring stale session expiry", "generation", expiry.Generation)
		return
	}
	c.logger.Info("session expired")
	c.alerts = append(c.alerts, Alert{
		Kind:    AlertExpired,
		Title:   "Session expired",
		Message: ExpiredMessage,
	})
}

// DismissAlert removes the alert at the head of the queue. Dismissing
// the expiry alert resets the client.
func (c *Controller) DismissAlert() {
	if len(c.alerts) == 0 {
		return
	}
	dismissed := c.alerts[0]
	c.alerts = c.alerts[1:]
	if dismissed.Kind == AlertExpired {
		c.Reset()
	}
}

// Reset discards all client state and starts a new server session:
// fresh terminals, an empty log view, no pending alerts or
// confirmation, and a new transport session.
func (c *Controller) Reset() {
	c.config.Session.Stop()
	c.logs.Close()
	c.build()
	c.alerts = nil
	c.confirmation = nil
	c.connected = false
	c.status = "starting a new session"
	if err := c.config.Resetter.ResetSession(); err != nil {
		c.logger.Error("resetting transport session", "error", err)
	}
	c.logger.Info("client reset")
}

// OpenLogs starts a log panel view session.
func (c *Controller) OpenLogs(ctx context.Context) {
	c.reportSnapshot(c.logs.Open(ctx))
}

// CloseLogs ends the log panel view session.
func (c *Controller) CloseLogs() {
	c.logs.Close()
}

// SelectFilter changes the log filter.
func (c *Controller) SelectFilter(ctx context.Context, filter logstream.Filter) {
	if _, err := logstream.ParseFilter(string(filter)); err != nil {
		c.fail(Validation("%w", err))
		return
	}
	c.reportSnapshot(c.logs.SelectFilter(ctx, filter))
}

// RefreshLogs requests a new log snapshot.
func (c *Controller) RefreshLogs(ctx context.Context) {
	c.reportSnapshot(c.logs.Refresh(ctx))
}

// ExportLogs requests the plain-text log export.
func (c *Controller) ExportLogs(ctx context.Context) {
	c.reportSnapshot(c.logs.RequestExport(ctx))
}

// RequestClearLogs asks for confirmation before clearing the logs.
func (c *Controller) RequestClearLogs() {
	c.confirmation = &Confirmation{Title: "Clear logs", Prompt: ClearLogsPrompt}
}

// Confirm answers the pending confirmation. Declining has no effect
// beyond closing it.
func (c *Controller) Confirm(ctx context.Context, accepted bool) {
	if c.confirmation == nil {
		return
	}
	c.confirmation = nil
	if !accepted {
		c.logger.Debug("log clear declined")
		return
	}
	c.reportSnapshot(c.logs.Clear(ctx))
}

// ExportRules requests the current rule set for saving.
func (c *Controller) ExportRules(ctx context.Context) {
	c.reportSnapshot(c.rules.RequestExport(ctx))
}

// ImportRules submits the rule set at path. On success the admin
// terminal, and only it, gets a confirmation line.
func (c *Controller) ImportRules(ctx context.Context, path string) {
	imported, err := c.rules.Import(ctx, path)
	switch {
	case err == nil:
		c.mux.Notice(terminal.Firewall, terminal.Green(
			fmt.Sprintf("[Rules loaded from %s (%s)]", imported.Name, artifact.FormatRef(imported.Hash))))
		c.status = "rules imported from " + imported.Path
	case errors.Is(err, rules.ErrNotSent):
		c.fail(Transport("%w", err))
	default:
		c.fail(Validation("%w", err))
	}
}

// reportSnapshot raises a snapshot alert for a failed request.
func (c *Controller) reportSnapshot(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, protocol.ErrDisconnected) {
		c.fail(Transport("%w", err))
		return
	}
	c.fail(Snapshot("%w", err))
}

// fail logs err and queues an alert for it.
func (c *Controller) fail(err *Error) {
	c.logger.Warn("console operation failed",
		"category", string(err.Category),
		"error", err,
	)
	c.alerts = append(c.alerts, Alert{
		Kind:     AlertError,
		Category: err.Category,
		Title:    alertTitle(err.Category),
		Message:  err.Error(),
	})
}

func alertTitle(category ErrorCategory) string {
	switch category {
	case CategoryValidation:
		return "Invalid input"
	case CategoryTransport:
		return "Not connected"
	}
	return "Request failed"
}
