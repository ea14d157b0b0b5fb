// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/fwconsole/console"
	"github.com/bureau-foundation/fwconsole/lib/tui"
	"github.com/bureau-foundation/fwconsole/logstream"
	"github.com/bureau-foundation/fwconsole/session"
	"github.com/bureau-foundation/fwconsole/terminal"
	"github.com/bureau-foundation/fwconsole/transport"
)

// Focus identifies what receives key presses when no modal is open.
type Focus int

const (
	// FocusTerminals sends keys to the active terminal.
	FocusTerminals Focus = iota
	// FocusLogs sends keys to the log panel.
	FocusLogs
)

// Layout rows outside the body: header, sub-header and status bar.
const chromeHeight = 3

// clockTickInterval refreshes the session countdown.
const clockTickInterval = time.Second

// transportEventMsg wraps a transport event for the message loop.
type transportEventMsg struct {
	event transport.Event
}

// expiryMsg wraps a session timer expiry for the message loop.
type expiryMsg struct {
	expiry session.Expiry
}

// clockTickMsg redraws the session countdown.
type clockTickMsg struct{}

// Config holds the model's dependencies.
type Config struct {
	Controller *console.Controller
	Session    *session.Manager
	Events     <-chan transport.Event
	Expired    <-chan session.Expiry

	// Context bounds every send the model triggers. Defaults to
	// context.Background.
	Context context.Context

	// ImportPath, when set, is imported once the first connection is
	// up.
	ImportPath string

	// ExportDirectory seeds the import prompt.
	ExportDirectory string
}

// Model is the top-level bubbletea model for the console.
type Model struct {
	controller *console.Controller
	session    *session.Manager
	events     <-chan transport.Event
	expired    <-chan session.Expiry
	ctx        context.Context
	theme      tui.Theme
	keys       KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	active int
	focus  Focus
	prompt *tui.Prompt

	pendingImport   string
	exportDirectory string

	logViewport viewport.Model

	// Latest background log record shown in the status bar.
	logRecord   string
	logLevel    slog.Level
	logSequence int
}

// NewModel returns a Model focused on the first terminal.
func NewModel(config Config) Model {
	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return Model{
		controller:      config.Controller,
		session:         config.Session,
		events:          config.Events,
		expired:         config.Expired,
		ctx:             ctx,
		theme:           tui.DefaultTheme,
		keys:            DefaultKeyMap,
		pendingImport:   config.ImportPath,
		exportDirectory: config.ExportDirectory,
		logViewport:     viewport.New(0, 0),
	}
}

// Init implements tea.Model. Starts listening for transport events and
// session expiries.
func (model Model) Init() tea.Cmd {
	return tea.Batch(
		listenForTransportEvent(model.events),
		listenForExpiry(model.expired),
		scheduleClockTick(),
	)
}

// listenForTransportEvent returns a tea.Cmd that blocks until the
// transport posts an event. A closed or nil channel stops listening.
func listenForTransportEvent(channel <-chan transport.Event) tea.Cmd {
	if channel == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return nil
		}
		return transportEventMsg{event: event}
	}
}

// listenForExpiry is listenForTransportEvent for session expiries.
func listenForExpiry(channel <-chan session.Expiry) tea.Cmd {
	if channel == nil {
		return nil
	}
	return func() tea.Msg {
		expiry, ok := <-channel
		if !ok {
			return nil
		}
		return expiryMsg{expiry: expiry}
	}
}

func scheduleClockTick() tea.Cmd {
	return tea.Tick(clockTickInterval, func(time.Time) tea.Msg {
		return clockTickMsg{}
	})
}

// ActiveTerminal returns the terminal keys are typed into.
func (model Model) ActiveTerminal() terminal.ID {
	return terminal.IDs()[model.active]
}

// Focus returns what receives key presses when no modal is open.
func (model Model) Focus() Focus {
	return model.focus
}

// Prompting reports whether the import path prompt is open.
func (model Model) Prompting() bool {
	return model.prompt != nil
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.syncLogViewport()
		return model, nil

	case transportEventMsg:
		model.controller.HandleTransport(model.ctx, message.event)
		if _, connected := message.event.(transport.Connected); connected && model.pendingImport != "" {
			path := model.pendingImport
			model.pendingImport = ""
			model.controller.ImportRules(model.ctx, path)
		}
		model.syncLogViewport()
		return model, listenForTransportEvent(model.events)

	case expiryMsg:
		model.controller.HandleExpiry(message.expiry)
		return model, listenForExpiry(model.expired)

	case clockTickMsg:
		return model, scheduleClockTick()

	case logRecordMsg:
		model.logRecord = message.Summary
		model.logLevel = message.Level
		model.logSequence++
		sequence := model.logSequence
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		if message.sequence == model.logSequence {
			model.logRecord = ""
		}
		return model, nil
	}
	return model, nil
}

// handleKey routes a key press. Modals take precedence in the order
// alert, confirmation, import prompt; Quit works everywhere.
func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.Quit) {
		return model, tea.Quit
	}

	if alert, ok := model.controller.Alert(); ok {
		if key.Matches(message, model.keys.Accept, model.keys.Decline) || message.Type == tea.KeySpace {
			model.controller.DismissAlert()
			if alert.Kind == console.AlertExpired {
				model.afterReset()
			}
			model.syncLogViewport()
		}
		return model, nil
	}

	if _, ok := model.controller.PendingConfirmation(); ok {
		switch {
		case key.Matches(message, model.keys.Accept):
			model.controller.Confirm(model.ctx, true)
		case key.Matches(message, model.keys.Decline):
			model.controller.Confirm(model.ctx, false)
		}
		model.syncLogViewport()
		return model, nil
	}

	if model.prompt != nil {
		return model.handlePromptKey(message)
	}

	switch {
	case key.Matches(message, model.keys.ToggleLogs):
		if model.focus == FocusLogs {
			model.closeLogs()
		} else {
			model.controller.OpenLogs(model.ctx)
			model.focus = FocusLogs
			model.logViewport.GotoTop()
		}
	case key.Matches(message, model.keys.ExportRules):
		model.controller.ExportRules(model.ctx)
	case key.Matches(message, model.keys.ImportRules):
		prompt := tui.NewPrompt(
			"Import rules",
			"path/to/rules."+model.controller.RulesExtension(),
			directoryPrefix(model.exportDirectory),
			"Enter load  Esc cancel",
		)
		model.prompt = &prompt
	case model.focus == FocusLogs:
		model.handleLogKey(message)
	default:
		model.handleTerminalKey(message)
	}
	model.syncLogViewport()
	return model, nil
}

func (model Model) handlePromptKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEnter:
		path := model.prompt.Value()
		model.prompt = nil
		if path != "" {
			model.controller.ImportRules(model.ctx, path)
		}
		return model, nil
	case tea.KeyEsc:
		model.prompt = nil
		return model, nil
	}
	prompt := *model.prompt
	command := prompt.Update(message)
	model.prompt = &prompt
	return model, command
}

func (model *Model) handleTerminalKey(message tea.KeyMsg) {
	count := len(terminal.IDs())
	switch {
	case key.Matches(message, model.keys.NextTerminal):
		model.active = (model.active + 1) % count
		return
	case key.Matches(message, model.keys.PreviousTerminal):
		model.active = (model.active + count - 1) % count
		return
	}
	for index, binding := range model.keys.SelectTerminal {
		if key.Matches(message, binding) {
			model.active = index
			return
		}
	}

	id := model.ActiveTerminal()
	for _, code := range KeyCodes(message) {
		model.controller.HandleKey(model.ctx, id, code)
	}
}

func (model *Model) handleLogKey(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.FilterAll):
		model.controller.SelectFilter(model.ctx, logstream.FilterAll)
	case key.Matches(message, model.keys.FilterBlocked):
		model.controller.SelectFilter(model.ctx, logstream.FilterBlocked)
	case key.Matches(message, model.keys.FilterAllowed):
		model.controller.SelectFilter(model.ctx, logstream.FilterAllowed)
	case key.Matches(message, model.keys.FilterWarnings):
		model.controller.SelectFilter(model.ctx, logstream.FilterWarnings)
	case key.Matches(message, model.keys.Refresh):
		model.controller.RefreshLogs(model.ctx)
	case key.Matches(message, model.keys.Download):
		model.controller.ExportLogs(model.ctx)
	case key.Matches(message, model.keys.ClearLogs):
		model.controller.RequestClearLogs()
	case key.Matches(message, model.keys.Back):
		model.closeLogs()
	case key.Matches(message, model.keys.ScrollUp):
		model.logViewport.ScrollUp(1)
	case key.Matches(message, model.keys.ScrollDown):
		model.logViewport.ScrollDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.logViewport.PageUp()
	case key.Matches(message, model.keys.PageDown):
		model.logViewport.PageDown()
	}
}

func (model *Model) closeLogs() {
	model.controller.CloseLogs()
	model.focus = FocusTerminals
}

// afterReset returns presentation state to its starting point once
// the controller has discarded the session.
func (model *Model) afterReset() {
	model.focus = FocusTerminals
	model.active = 0
	model.prompt = nil
	model.logViewport.SetContent("")
	model.logViewport.GotoTop()
}

// directoryPrefix returns dir with a trailing separator, or "".
func directoryPrefix(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.Clean(dir) + string(filepath.Separator)
}

// bodyHeight is the number of rows between the headers and the
// status bar.
func (model Model) bodyHeight() int {
	return max(model.height-chromeHeight, 0)
}

// syncLogViewport sizes the log viewport and loads the current rows.
func (model *Model) syncLogViewport() {
	view := model.controller.LogView()
	model.logViewport.Width = max(model.width-1, 0)
	model.logViewport.Height = max(model.bodyHeight()-len(model.warningLines(view)), 0)

	lines := make([]string, 0, len(view.Rows))
	for _, row := range view.Rows {
		lines = append(lines, tui.FitLine(model.renderRow(row), model.logViewport.Width))
	}
	model.logViewport.SetContent(strings.Join(lines, "\n"))
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Connecting to the firewall simulator..."
	}

	sections := []string{
		model.renderHeader(),
		model.renderSubheader(),
	}
	if model.focus == FocusLogs {
		sections = append(sections, model.renderLogBody())
	} else {
		sections = append(sections, model.renderTerminalBody())
	}
	sections = append(sections, model.renderStatusBar())
	view := strings.Join(sections, "\n")

	if alert, ok := model.controller.Alert(); ok {
		tone := tui.ToneBad
		if alert.Kind == console.AlertExpired {
			tone = tui.ToneCaution
		}
		dialog := tui.Dialog{Title: alert.Title, Body: alert.Message, Footer: "Enter OK", Tone: tone}
		lines, anchorX, anchorY := dialog.Render(model.theme, model.width, model.height)
		return tui.SpliceOverlay(view, lines, anchorX, anchorY)
	}
	if confirmation, ok := model.controller.PendingConfirmation(); ok {
		dialog := tui.Dialog{
			Title:  confirmation.Title,
			Body:   confirmation.Prompt,
			Footer: "y/Enter confirm  n/Esc cancel",
			Tone:   tui.ToneCaution,
		}
		lines, anchorX, anchorY := dialog.Render(model.theme, model.width, model.height)
		return tui.SpliceOverlay(view, lines, anchorX, anchorY)
	}
	if model.prompt != nil {
		lines, anchorX, anchorY := model.prompt.Render(model.theme, model.width, model.height)
		return tui.SpliceOverlay(view, lines, anchorX, anchorY)
	}
	return view
}

// renderHeader draws one tab per terminal plus the log tab, with the
// connection state on the right.
func (model Model) renderHeader() string {
	selected := lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.SelectedForeground).
		Background(model.theme.SelectedBackground)
	normal := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var tabs []string
	for index, id := range terminal.IDs() {
		text := fmt.Sprintf(" F%d %s ", index+1, id)
		if model.focus == FocusTerminals && index == model.active {
			tabs = append(tabs, selected.Render(text))
		} else {
			tabs = append(tabs, normal.Render(text))
		}
	}
	logTab := " F5 logs "
	if model.focus == FocusLogs {
		tabs = append(tabs, selected.Render(logTab))
	} else {
		tabs = append(tabs, normal.Render(logTab))
	}

	state := model.theme.ToneStyle(tui.ToneBad).Render("● disconnected")
	if model.controller.Connected() {
		state = model.theme.ToneStyle(tui.ToneGood).Render("● connected")
	}
	return spread(strings.Join(tabs, ""), state, model.width)
}

// spread places left and right at the edges of a width-column line.
// When both do not fit, right wins and left is truncated.
func spread(left, right string, width int) string {
	rightWidth := lipgloss.Width(right)
	if rightWidth >= width {
		return tui.FitLine(right, width)
	}
	left = tui.FitLine(left, width-rightWidth-1)
	return left + " " + right
}

// renderSubheader shows the active terminal's addressing, or the log
// filter and counters.
func (model Model) renderSubheader() string {
	faint := model.theme.ToneStyle(tui.ToneFaint)
	if model.focus == FocusLogs {
		view := model.controller.LogView()
		var filters []string
		for _, filter := range logstream.Filters() {
			name := string(filter)
			text := "[" + name[:1] + "]" + name[1:]
			if filter == view.Filter {
				text = lipgloss.NewStyle().Bold(true).Foreground(model.theme.Accent).Render(text)
			} else {
				text = faint.Render(text)
			}
			filters = append(filters, text)
		}
		stats := view.Stats
		counters := fmt.Sprintf("Total: %d  %s  %s  %s",
			stats.Total,
			model.theme.ToneStyle(tui.ToneBad).Render(fmt.Sprintf("Blocked: %d", stats.Blocked)),
			model.theme.ToneStyle(tui.ToneGood).Render(fmt.Sprintf("Allowed: %d", stats.Allowed)),
			model.theme.ToneStyle(tui.ToneCaution).Render(fmt.Sprintf("Warnings: %d", stats.Warnings)),
		)
		return tui.FitLine(strings.Join(filters, " ")+"   "+counters, model.width)
	}

	term, ok := model.controller.Registry().Get(model.ActiveTerminal())
	if !ok {
		return tui.FitLine("", model.width)
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(term.DisplayTitle())
	if network := term.NetworkLabel(); network != "" {
		title += "  " + faint.Render(network)
	}
	return tui.FitLine(title, model.width)
}

func (model Model) renderTerminalBody() string {
	height := model.bodyHeight()
	lines := make([]string, height)
	term, ok := model.controller.Registry().Get(model.ActiveTerminal())
	if ok {
		for index, line := range term.Screen().Tail(height) {
			lines[index] = line
		}
	}
	for index := range lines {
		lines[index] = tui.FitLine(lines[index], model.width)
	}
	return strings.Join(lines, "\n")
}

// warningLines renders the server's rule-set warnings above the log
// rows. At most a third of the body is spent on them.
func (model Model) warningLines(view logstream.View) []string {
	if len(view.Warnings) == 0 {
		return nil
	}
	limit := max(model.bodyHeight()/3, 1)
	style := model.theme.ToneStyle(tui.ToneCaution)
	var lines []string
	for _, warning := range view.Warnings {
		if len(lines) == limit {
			break
		}
		text := fmt.Sprintf("⚠ %s %s: %s", warning.Type, warning.Chain, warning.Message)
		lines = append(lines, tui.FitLine(style.Render(text), model.width))
	}
	return lines
}

func (model Model) renderLogBody() string {
	height := model.bodyHeight()
	view := model.controller.LogView()
	lines := model.warningLines(view)

	remaining := height - len(lines)
	if remaining <= 0 {
		return strings.Join(lines[:height], "\n")
	}

	if len(view.Rows) == 0 {
		message := view.Placeholder
		if !view.Loaded {
			message = "Loading logs..."
		}
		body := make([]string, remaining)
		body[0] = model.theme.ToneStyle(tui.ToneFaint).Render(message)
		for index := range body {
			body[index] = tui.FitLine(body[index], model.width)
		}
		return strings.Join(append(lines, body...), "\n")
	}

	scrollbar := tui.RenderScrollbar(model.theme, remaining, tui.ScrollState{
		Total:   model.logViewport.TotalLineCount(),
		Visible: remaining,
		Offset:  model.logViewport.YOffset,
	}, true)
	rows := lipgloss.JoinHorizontal(lipgloss.Top, model.logViewport.View(), scrollbar)
	return strings.Join(append(lines, rows), "\n")
}

// renderRow colors a log row by its class.
func (model Model) renderRow(row logstream.Row) string {
	faint := model.theme.ToneStyle(tui.ToneFaint)
	action := model.theme.ToneStyle(classTone(row.Class)).Bold(true).Render(fmt.Sprintf("%-7s", row.Action))

	line := faint.Render(row.Time) + " " + action + " " + row.Summary
	if row.Rule != "" {
		line += faint.Render(" | Rule: " + row.Rule)
	}
	if row.Warning != "" {
		line += model.theme.ToneStyle(tui.ToneCaution).Render(" | ⚠ " + row.Warning)
	}
	return line
}

func classTone(class logstream.Class) tui.Tone {
	switch class {
	case logstream.ClassAllowed:
		return tui.ToneGood
	case logstream.ClassBlocked:
		return tui.ToneBad
	case logstream.ClassWarning:
		return tui.ToneCaution
	}
	return tui.ToneFaint
}

// renderStatusBar shows the latest log record or controller status on
// the left and the session countdown and key help on the right.
func (model Model) renderStatusBar() string {
	left := model.theme.ToneStyle(tui.ToneFaint).Render(model.controller.Status())
	if model.logRecord != "" {
		tone := tui.ToneCaution
		if model.logLevel >= slog.LevelError {
			tone = tui.ToneBad
		}
		left = model.theme.ToneStyle(tone).Render(model.logRecord)
	}

	helpStyle := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	countdown := ""
	if model.session != nil {
		if remaining, ok := model.session.Remaining(); ok {
			countdown = "session " + formatCountdown(remaining)
		}
	}

	// Help gives way to the countdown on narrow screens.
	right := strings.TrimSpace(countdown + "  " + model.renderHelp())
	if lipgloss.Width(left)+lipgloss.Width(right)+1 > model.width {
		right = countdown
	}
	return spread(left, helpStyle.Render(right), model.width)
}

func (model Model) renderHelp() string {
	var bindings []key.Binding
	if model.focus == FocusLogs {
		bindings = []key.Binding{
			model.keys.FilterAll, model.keys.FilterBlocked, model.keys.FilterAllowed,
			model.keys.FilterWarnings, model.keys.Refresh, model.keys.Download,
			model.keys.ClearLogs, model.keys.Back,
		}
	} else {
		bindings = []key.Binding{model.keys.NextTerminal, model.keys.ToggleLogs}
	}
	bindings = append(bindings, model.keys.ExportRules, model.keys.ImportRules, model.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}

// formatCountdown renders d as m:ss, rounding up so the display never
// shows 0:00 while time remains.
func formatCountdown(d time.Duration) string {
	seconds := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
