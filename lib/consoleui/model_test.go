// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/fwconsole/console"
	"github.com/bureau-foundation/fwconsole/lib/clock"
	"github.com/bureau-foundation/fwconsole/lib/testutil"
	"github.com/bureau-foundation/fwconsole/logstream"
	"github.com/bureau-foundation/fwconsole/protocol"
	"github.com/bureau-foundation/fwconsole/session"
	"github.com/bureau-foundation/fwconsole/terminal"
	"github.com/bureau-foundation/fwconsole/transport"
)

type countingResetter struct {
	resets int
}

func (r *countingResetter) ResetSession() error {
	r.resets++
	return nil
}

type fixture struct {
	model      Model
	controller *console.Controller
	recorder   *protocol.Recorder
	resetter   *countingResetter
	clock      *clock.FakeClock
	session    *session.Manager
	exportDir  string
}

func newFixture(t *testing.T, importPath string) *fixture {
	t.Helper()
	fake := clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))
	f := &fixture{
		recorder:  &protocol.Recorder{},
		resetter:  &countingResetter{},
		clock:     fake,
		session:   session.NewManager(fake),
		exportDir: t.TempDir(),
	}
	f.controller = console.NewController(console.Config{
		Sender:          f.recorder,
		Resetter:        f.resetter,
		Session:         f.session,
		Clock:           fake,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		ScrollbackLines: 200,
		ExportDirectory: f.exportDir,
		RulesExtension:  "rules",
	})
	f.model = NewModel(Config{
		Controller:      f.controller,
		Session:         f.session,
		Expired:         f.session.Expired(),
		ImportPath:      importPath,
		ExportDirectory: f.exportDir,
	})
	f.update(t, tea.WindowSizeMsg{Width: 120, Height: 30})
	return f
}

func (f *fixture) update(t *testing.T, message tea.Msg) tea.Cmd {
	t.Helper()
	updated, command := f.model.Update(message)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	f.model = model
	return command
}

func (f *fixture) connect(t *testing.T) {
	t.Helper()
	f.update(t, transportEventMsg{event: transport.Connected{Codec: "json"}})
}

func (f *fixture) receive(t *testing.T, event string, data any) {
	t.Helper()
	frame, err := protocol.JSON.Encode(protocol.Message{Event: event, Data: data})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	envelope, err := protocol.JSON.Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	f.update(t, transportEventMsg{event: transport.Received{Envelope: envelope}})
}

func (f *fixture) typeText(t *testing.T, text string) {
	t.Helper()
	for _, character := range text {
		f.update(t, runeKey(character))
	}
}

func runeKey(character rune) tea.KeyMsg {
	if character == ' ' {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{character}}
}

func keyOf(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}

func plainView(model Model) string {
	return ansi.Strip(model.View())
}

func TestKeyCodes(t *testing.T) {
	tests := []struct {
		name    string
		message tea.KeyMsg
		want    []rune
	}{
		{"enter", keyOf(tea.KeyEnter), []rune{13}},
		{"backspace", keyOf(tea.KeyBackspace), []rune{127}},
		{"ctrl+c", keyOf(tea.KeyCtrlC), []rune{3}},
		{"ctrl+l", keyOf(tea.KeyCtrlL), []rune{12}},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, []rune{32}},
		{"rune", runeKey('p'), []rune{'p'}},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ls\n"), Paste: true}, []rune{'l', 's', 13}},
		{"arrow", keyOf(tea.KeyUp), nil},
		{"f6", keyOf(tea.KeyF6), nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := KeyCodes(test.message); !slices.Equal(got, test.want) {
				t.Errorf("KeyCodes = %v, want %v", got, test.want)
			}
		})
	}
}

func TestTypedCommandReachesActiveTerminal(t *testing.T) {
	f := newFixture(t, "")
	f.connect(t)

	f.update(t, keyOf(tea.KeyF4))
	if f.model.ActiveTerminal() != terminal.DMZ {
		t.Fatalf("active terminal = %s after F4, want dmz", f.model.ActiveTerminal())
	}
	f.typeText(t, "ping 10.0.0.5")
	f.update(t, keyOf(tea.KeyEnter))

	messages := f.recorder.Messages()
	if len(messages) != 1 {
		t.Fatalf("sent %d messages, want 1: %v", len(messages), f.recorder.Events())
	}
	want := protocol.CommandRequest{Terminal: "dmz", Command: "ping 10.0.0.5"}
	if messages[0].Event != protocol.EventCommand || messages[0].Data != want {
		t.Errorf("sent %+v, want command %+v", messages[0], want)
	}
}

func TestPastedTextSubmitsLikeTyping(t *testing.T) {
	f := newFixture(t, "")
	f.connect(t)

	f.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("iptables -L\n"), Paste: true})

	messages := f.recorder.Messages()
	if len(messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(messages))
	}
	if data := messages[0].Data.(protocol.CommandRequest); data.Terminal != "firewall" || data.Command != "iptables -L" {
		t.Errorf("sent %+v", data)
	}
}

func TestTabCyclesTerminals(t *testing.T) {
	f := newFixture(t, "")
	ids := terminal.IDs()

	for step := 1; step <= len(ids); step++ {
		f.update(t, keyOf(tea.KeyTab))
		if want := ids[step%len(ids)]; f.model.ActiveTerminal() != want {
			t.Fatalf("after %d tabs active = %s, want %s", step, f.model.ActiveTerminal(), want)
		}
	}
	f.update(t, keyOf(tea.KeyShiftTab))
	if want := ids[len(ids)-1]; f.model.ActiveTerminal() != want {
		t.Errorf("shift+tab from first terminal gave %s, want %s", f.model.ActiveTerminal(), want)
	}
	if len(f.recorder.Messages()) != 0 {
		t.Errorf("terminal switching sent %v", f.recorder.Events())
	}
}

func TestLogPanelFilters(t *testing.T) {
	f := newFixture(t, "")
	f.connect(t)

	f.update(t, keyOf(tea.KeyF5))
	if f.model.Focus() != FocusLogs {
		t.Fatal("F5 did not focus the log panel")
	}
	if events := f.recorder.Events(); !slices.Equal(events, []string{protocol.EventGetLogs}) {
		t.Fatalf("opening logs sent %v, want [get_logs]", events)
	}
	if !strings.Contains(plainView(f.model), "Loading logs...") {
		t.Error("log panel does not show the loading placeholder before a snapshot")
	}

	f.receive(t, protocol.EventLogsData, protocol.LogsData{
		Logs: []protocol.LogEntry{
			{Timestamp: "2026-03-01 09:00:01", Action: "DROP", Source: "10.0.2.15", Destination: "10.0.1.10", Protocol: "tcp", Port: "22", Rule: "INPUT #3"},
			{Timestamp: "2026-03-01 09:00:02", Action: "ACCEPT", Source: "10.0.1.10", Destination: "10.0.3.20", Protocol: "tcp", Port: "80"},
		},
		Stats: &protocol.LogStats{Total: 2, Blocked: 1, Allowed: 1},
	})
	view := plainView(f.model)
	if !strings.Contains(view, "10.0.2.15 → 10.0.1.10 (TCP:22)") || !strings.Contains(view, "10.0.1.10 → 10.0.3.20 (TCP:80)") {
		t.Fatalf("log panel does not show both rows:\n%s", view)
	}

	f.recorder.Reset()
	f.update(t, runeKey('b'))
	if got := f.controller.LogView(); got.Filter != logstream.FilterBlocked || len(got.Rows) != 1 {
		t.Fatalf("filter blocked gave %s with %d rows", got.Filter, len(got.Rows))
	}
	if len(f.recorder.Messages()) != 0 {
		t.Errorf("filtering a cached snapshot sent %v", f.recorder.Events())
	}
	if strings.Contains(plainView(f.model), "10.0.3.20") {
		t.Error("blocked filter still shows the ACCEPT row")
	}

	f.update(t, runeKey('l'))
	f.update(t, runeKey('w'))
	view = plainView(f.model)
	if !strings.Contains(view, `No logs in "warnings" category.`) {
		t.Errorf("warnings filter does not show the category placeholder:\n%s", view)
	}

	f.update(t, keyOf(tea.KeyEsc))
	if f.model.Focus() != FocusTerminals || f.controller.LogsOpen() {
		t.Error("Esc did not close the log panel")
	}
}

func TestLogPanelKeysAreNotTyped(t *testing.T) {
	f := newFixture(t, "")
	f.connect(t)
	f.update(t, keyOf(tea.KeyF5))
	f.recorder.Reset()

	f.update(t, runeKey('r'))
	f.update(t, runeKey('d'))
	if events := f.recorder.Events(); !slices.Equal(events, []string{protocol.EventGetLogs, protocol.EventGetRawLogs}) {
		t.Errorf("r, d sent %v, want [get_logs get_raw_logs]", events)
	}
	term, _ := f.controller.Registry().Get(terminal.Firewall)
	if term.Buffer() != "" {
		t.Errorf("log panel keys reached the terminal buffer: %q", term.Buffer())
	}
}

func TestClearLogsConfirmation(t *testing.T) {
	f := newFixture(t, "")
	f.connect(t)
	f.update(t, keyOf(tea.KeyF5))
	f.recorder.Reset()

	f.update(t, runeKey('x'))
	if _, pending := f.controller.PendingConfirmation(); !pending {
		t.Fatal("x did not ask for confirmation")
	}
	if !strings.Contains(plainView(f.model), "cannot be undone") {
		t.Error("confirmation dialog not drawn")
	}
	f.update(t, runeKey('n'))
	if len(f.recorder.Messages()) != 0 {
		t.Fatalf("declining sent %v", f.recorder.Events())
	}

	f.update(t, runeKey('x'))
	f.update(t, runeKey('y'))
	if events := f.recorder.Events(); !slices.Equal(events, []string{protocol.EventClearLogs, protocol.EventGetLogs}) {
		t.Errorf("confirming sent %v, want [clear_logs get_logs]", events)
	}
}

func TestExpiryAlertResetsOnDismiss(t *testing.T) {
	f := newFixture(t, "")
	f.connect(t)
	f.update(t, keyOf(tea.KeyF3))
	f.update(t, keyOf(tea.KeyF5))

	f.receive(t, protocol.EventSessionInitialized, map[string]any{"lifetime": 60})
	f.clock.Advance(time.Minute)
	expiry := testutil.RequireReceive(t, f.session.Expired(), 5*time.Second, "waiting for expiry")
	f.update(t, expiryMsg{expiry: expiry})

	if !strings.Contains(plainView(f.model), "Your session has expired.") {
		t.Fatal("expiry alert not drawn")
	}

	// Keys other than dismissal are swallowed while the alert is up.
	f.update(t, runeKey('r'))
	if f.resetter.resets != 0 {
		t.Fatal("reset before the alert was dismissed")
	}

	f.update(t, keyOf(tea.KeyEnter))
	if f.resetter.resets != 1 {
		t.Fatalf("resets = %d after dismissing, want 1", f.resetter.resets)
	}
	if f.model.Focus() != FocusTerminals || f.model.ActiveTerminal() != terminal.Firewall {
		t.Error("presentation state not reset")
	}
	if _, open := f.controller.Alert(); open {
		t.Error("alert still open after dismissal")
	}
}

func TestImportPrompt(t *testing.T) {
	f := newFixture(t, "")
	f.connect(t)
	script := "*filter\n-A INPUT -p tcp --dport 22 -j DROP\nCOMMIT\n"
	if err := os.WriteFile(filepath.Join(f.exportDir, "lab.rules"), []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	f.update(t, keyOf(tea.KeyCtrlO))
	if !f.model.Prompting() {
		t.Fatal("ctrl+o did not open the import prompt")
	}
	f.typeText(t, "lab.rules")
	f.update(t, keyOf(tea.KeyEnter))

	if f.model.Prompting() {
		t.Error("prompt still open after Enter")
	}
	messages := f.recorder.Messages()
	if len(messages) != 1 || messages[0].Event != protocol.EventLoadRulesFromScript {
		t.Fatalf("sent %v, want [load_rules_from_script]", f.recorder.Events())
	}
	if data := messages[0].Data.(protocol.LoadRulesRequest); data.Script != script {
		t.Errorf("script changed in transit: %q", data.Script)
	}
}

func TestImportPromptCancel(t *testing.T) {
	f := newFixture(t, "")
	f.connect(t)

	f.update(t, keyOf(tea.KeyCtrlO))
	f.typeText(t, "whatever.rules")
	f.update(t, keyOf(tea.KeyEsc))

	if f.model.Prompting() {
		t.Error("Esc did not close the prompt")
	}
	if len(f.recorder.Messages()) != 0 {
		t.Errorf("cancelled import sent %v", f.recorder.Events())
	}
	term, _ := f.controller.Registry().Get(terminal.Firewall)
	if term.Buffer() != "" {
		t.Errorf("prompt keys reached the terminal: %q", term.Buffer())
	}
}

func TestImportFlagRunsAfterFirstConnect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "startup.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, path)
	if _, open := f.controller.Alert(); open {
		t.Fatal("import attempted before connecting")
	}

	f.connect(t)
	alert, open := f.controller.Alert()
	if !open || alert.Category != console.CategoryValidation {
		t.Fatalf("wrong-extension import at startup raised %+v (open=%v), want a validation alert", alert, open)
	}

	f.update(t, keyOf(tea.KeyEnter))
	f.update(t, transportEventMsg{event: transport.Disconnected{}})
	f.connect(t)
	if _, open := f.controller.Alert(); open {
		t.Error("startup import ran twice")
	}
}

func TestViewShowsTerminalAndConnectionState(t *testing.T) {
	f := newFixture(t, "")
	view := plainView(f.model)
	if !strings.Contains(view, "disconnected") {
		t.Error("header does not show the disconnected state")
	}
	if !strings.Contains(view, "Firewall Admin") {
		t.Error("header does not name the firewall terminal")
	}

	f.connect(t)
	f.receive(t, protocol.EventUpdateIPDisplay, map[string]any{"terminal": "firewall", "ip": "10.0.0.1", "network": "MGMT"})
	view = plainView(f.model)
	if !strings.Contains(view, "● connected") {
		t.Error("header does not show the connected state")
	}
	if !strings.Contains(view, "Firewall Admin (10.0.0.1)") || !strings.Contains(view, "Network: MGMT") {
		t.Errorf("addressing not shown:\n%s", view)
	}
	if !strings.Contains(view, "firewall@firewall:~$") {
		t.Error("terminal body does not show the prompt")
	}

	for index, line := range strings.Split(f.model.View(), "\n") {
		if width := ansi.StringWidth(line); width > 120 {
			t.Errorf("line %d is %d columns wide on a 120-column screen", index, width)
		}
	}
}

func TestStatusBarCountdown(t *testing.T) {
	f := newFixture(t, "")
	f.connect(t)
	f.receive(t, protocol.EventSessionInitialized, map[string]any{"lifetime": 2700})
	f.clock.Advance(90 * time.Second)

	if view := plainView(f.model); !strings.Contains(view, "session 43:30") {
		t.Errorf("status bar does not show the countdown:\n%s", view)
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      string
	}{
		{45 * time.Minute, "45:00"},
		{59*time.Second + 100*time.Millisecond, "1:00"},
		{500 * time.Millisecond, "0:01"},
		{0, "0:00"},
	}
	for _, test := range tests {
		if got := formatCountdown(test.remaining); got != test.want {
			t.Errorf("formatCountdown(%v) = %q, want %q", test.remaining, got, test.want)
		}
	}
}

func TestLogRecordFades(t *testing.T) {
	f := newFixture(t, "")
	f.update(t, logRecordMsg{Summary: "first", Level: slog.LevelWarn})
	f.update(t, logRecordMsg{Summary: "second", Level: slog.LevelError})
	if !strings.Contains(plainView(f.model), "second") {
		t.Fatal("newest log record not shown")
	}

	// The fade scheduled for the first record must not clear the second.
	f.update(t, logRecordFadeMsg{sequence: 1})
	if !strings.Contains(plainView(f.model), "second") {
		t.Error("stale fade cleared the newest record")
	}
	f.update(t, logRecordFadeMsg{sequence: 2})
	if strings.Contains(plainView(f.model), "second") {
		t.Error("fade did not clear the record")
	}
}

func TestQuit(t *testing.T) {
	f := newFixture(t, "")
	command := f.update(t, keyOf(tea.KeyCtrlQ))
	if command == nil {
		t.Fatal("ctrl+q returned no command")
	}
	if _, ok := command().(tea.QuitMsg); !ok {
		t.Error("ctrl+q did not quit")
	}
}

func TestTransportListenerStopsOnClose(t *testing.T) {
	events := make(chan transport.Event, 1)
	events <- transport.Disconnected{}
	listen := listenForTransportEvent(events)
	if message, ok := listen().(transportEventMsg); !ok {
		t.Fatalf("listener returned %T", message)
	}
	close(events)
	if message := listenForTransportEvent(events)(); message != nil {
		t.Errorf("listener on a closed channel returned %T", message)
	}
	if listenForTransportEvent(nil) != nil {
		t.Error("listener on a nil channel is not nil")
	}
}
