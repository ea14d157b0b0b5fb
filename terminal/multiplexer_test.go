// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package terminal

import (
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func newTestMultiplexer() *Multiplexer {
	return NewMultiplexer(NewRegistry(1000), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func typeText(m *Multiplexer, id ID, text string) (string, bool) {
	var command string
	var submitted bool
	for _, code := range text {
		if c, ok := m.Input(id, code); ok {
			command, submitted = c, true
		}
	}
	return command, submitted
}

func plainLines(terminal *Terminal) []string {
	lines := terminal.Screen().Lines()
	for index, line := range lines {
		lines[index] = ansi.Strip(line)
	}
	return lines
}

func TestRegistryBuildsFixedTerminals(t *testing.T) {
	registry := NewRegistry(100)
	all := registry.All()
	if len(all) != 4 {
		t.Fatalf("registry has %d terminals, want 4", len(all))
	}
	for index, id := range IDs() {
		if all[index].ID() != id {
			t.Errorf("terminal %d = %s, want %s", index, all[index].ID(), id)
		}
		if all[index].Buffer() != "" {
			t.Errorf("%s starts with buffer %q", id, all[index].Buffer())
		}
		current := ansi.Strip(all[index].Screen().Current())
		if current != string(id)+"@firewall:~$ " {
			t.Errorf("%s current line = %q, want prompt", id, current)
		}
	}

	firewall, _ := registry.Get(Firewall)
	if !slices.ContainsFunc(plainLines(firewall), func(line string) bool {
		return strings.Contains(line, "WebApp Firewall Simulator - FIREWALL ADMIN")
	}) {
		t.Error("firewall terminal lacks its welcome banner")
	}
	dmz, _ := registry.Get(DMZ)
	if !slices.ContainsFunc(plainLines(dmz), func(line string) bool {
		return strings.Contains(line, "ifconfig set ip <ip_address>")
	}) {
		t.Error("dmz terminal lacks host hints")
	}
}

func TestSubmitInHostTerminal(t *testing.T) {
	m := newTestMultiplexer()
	command, submitted := typeText(m, DMZ, "ping 10.0.0.5\r")
	if !submitted {
		t.Fatal("Enter did not submit")
	}
	if command != "ping 10.0.0.5" {
		t.Errorf("command = %q", command)
	}
	dmz, _ := m.Registry().Get(DMZ)
	if dmz.Buffer() != "" {
		t.Errorf("buffer after submit = %q", dmz.Buffer())
	}
	lines := plainLines(dmz)
	if got := lines[len(lines)-2]; got != "dmz@firewall:~$ ping 10.0.0.5" {
		t.Errorf("echoed line = %q", got)
	}
	if got := lines[len(lines)-1]; got != "" {
		t.Errorf("current line after submit = %q, want empty until output arrives", got)
	}
}

func TestBackspaceOnEmptyBufferLeavesScreen(t *testing.T) {
	m := newTestMultiplexer()
	for _, id := range IDs() {
		terminal, _ := m.Registry().Get(id)
		before := terminal.Screen().Lines()
		if _, submitted := m.Input(id, CodeDelete); submitted {
			t.Errorf("%s: backspace submitted", id)
		}
		if terminal.Buffer() != "" {
			t.Errorf("%s: buffer = %q", id, terminal.Buffer())
		}
		if !slices.Equal(before, terminal.Screen().Lines()) {
			t.Errorf("%s: screen changed on backspace with empty buffer", id)
		}
	}
}

func TestBackspaceErasesEchoedCharacter(t *testing.T) {
	m := newTestMultiplexer()
	typeText(m, Insider, "lss")
	m.Input(Insider, CodeDelete)
	insider, _ := m.Registry().Get(Insider)
	if insider.Buffer() != "ls" {
		t.Errorf("buffer = %q", insider.Buffer())
	}
	if got := ansi.Strip(insider.Screen().Current()); got != "insider@firewall:~$ ls" {
		t.Errorf("current line = %q", got)
	}
}

func TestCancelAndClearScreen(t *testing.T) {
	m := newTestMultiplexer()
	typeText(m, Outsider, "nmap")
	m.Input(Outsider, CodeCancel)
	outsider, _ := m.Registry().Get(Outsider)
	lines := plainLines(outsider)
	if got := lines[len(lines)-2]; got != "outsider@firewall:~$ nmap^C" {
		t.Errorf("cancelled line = %q", got)
	}
	if outsider.Buffer() != "" {
		t.Errorf("buffer after cancel = %q", outsider.Buffer())
	}

	typeText(m, Outsider, "ip")
	m.Input(Outsider, CodeClearScreen)
	lines = plainLines(outsider)
	if len(lines) != 1 || lines[0] != "outsider@firewall:~$ ip" {
		t.Errorf("after clear screen lines = %q, want only the prompt with the kept buffer", lines)
	}
	if outsider.Buffer() != "ip" {
		t.Errorf("clear screen changed the buffer to %q", outsider.Buffer())
	}
}

func TestOutputSplitsLines(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{"single line", "PING ok", []string{"PING ok"}},
		{"trailing newline suppressed", "a\nb\n", []string{"a", "b"}},
		{"blank line kept", "a\n\nb", []string{"a", "", "b"}},
		{"only newline", "\n", []string{""}},
		{"empty output", "", nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newTestMultiplexer()
			typeText(m, Firewall, "x\r")
			firewall, _ := m.Registry().Get(Firewall)
			before := len(firewall.Screen().Lines())

			m.Output(Firewall, test.output)

			lines := plainLines(firewall)
			written := lines[before-1 : len(lines)-1]
			if !slices.Equal(written, test.want) && !(len(written) == 0 && len(test.want) == 0) {
				t.Errorf("written lines = %q, want %q", written, test.want)
			}
			if got := lines[len(lines)-1]; got != "firewall@firewall:~$ " {
				t.Errorf("prompt line = %q", got)
			}
		})
	}
}

func TestOutputDoesNotTouchOtherTerminals(t *testing.T) {
	m := newTestMultiplexer()
	insider, _ := m.Registry().Get(Insider)
	before := insider.Screen().Lines()
	m.Output(DMZ, "hello")
	m.Clear(Outsider)
	if !slices.Equal(before, insider.Screen().Lines()) {
		t.Error("insider screen changed by events for other terminals")
	}
}

func TestClearLeavesOnlyPrompt(t *testing.T) {
	m := newTestMultiplexer()
	m.Clear(Firewall)
	firewall, _ := m.Registry().Get(Firewall)
	lines := plainLines(firewall)
	if len(lines) != 1 || lines[0] != "firewall@firewall:~$ " {
		t.Errorf("lines after clear = %q", lines)
	}
}

func TestUpdateAddress(t *testing.T) {
	m := newTestMultiplexer()
	m.UpdateAddress(Insider, "192.168.10.5", "192.168.10.0/24")
	insider, _ := m.Registry().Get(Insider)
	if insider.IP() != "192.168.10.5" {
		t.Errorf("IP = %q", insider.IP())
	}
	if insider.NetworkLabel() != "Network: 192.168.10.0/24" {
		t.Errorf("NetworkLabel = %q", insider.NetworkLabel())
	}
	if insider.DisplayTitle() != "LAN1 - Internal PC (192.168.10.5)" {
		t.Errorf("DisplayTitle = %q", insider.DisplayTitle())
	}

	m.UpdateAddress(Insider, "192.168.10.6", "")
	if insider.NetworkLabel() != "Network: 192.168.10.0/24" {
		t.Errorf("empty network replaced label: %q", insider.NetworkLabel())
	}
	if insider.DisplayTitle() != "LAN1 - Internal PC (192.168.10.6)" {
		t.Errorf("DisplayTitle = %q", insider.DisplayTitle())
	}
}

func TestUnknownTerminalIgnored(t *testing.T) {
	m := newTestMultiplexer()
	snapshot := map[ID][]string{}
	for _, terminal := range m.Registry().All() {
		snapshot[terminal.ID()] = terminal.Screen().Lines()
	}
	m.Output("router", "boom")
	m.Clear("router")
	m.UpdateAddress("router", "1.2.3.4", "")
	if _, submitted := m.Input("router", CodeSubmit); submitted {
		t.Error("unknown terminal submitted")
	}
	for _, terminal := range m.Registry().All() {
		if !slices.Equal(snapshot[terminal.ID()], terminal.Screen().Lines()) {
			t.Errorf("%s changed by events for an unknown terminal", terminal.ID())
		}
	}
}

func TestBannerWritesEveryTerminal(t *testing.T) {
	m := newTestMultiplexer()
	typeText(m, DMZ, "cur")
	m.Banner(Red("[Connection lost. Attempting to reconnect...]"), false)
	m.Banner(Green("[Reconnected successfully]"), true)

	for _, terminal := range m.Registry().All() {
		lines := plainLines(terminal)
		n := len(lines)
		if lines[n-3] != "[Connection lost. Attempting to reconnect...]" {
			t.Errorf("%s: disconnect banner = %q", terminal.ID(), lines[n-3])
		}
		if lines[n-2] != "[Reconnected successfully]" {
			t.Errorf("%s: reconnect banner = %q", terminal.ID(), lines[n-2])
		}
		wantPrompt := string(terminal.ID()) + "@firewall:~$ " + terminal.Buffer()
		if lines[n-1] != wantPrompt {
			t.Errorf("%s: prompt line = %q, want %q", terminal.ID(), lines[n-1], wantPrompt)
		}
	}
}

func TestNoticeWritesOneTerminal(t *testing.T) {
	m := newTestMultiplexer()
	m.Notice(Firewall, "Rules imported from lab.rules")
	firewall, _ := m.Registry().Get(Firewall)
	lines := plainLines(firewall)
	if lines[len(lines)-2] != "Rules imported from lab.rules" {
		t.Errorf("notice line = %q", lines[len(lines)-2])
	}
	if lines[len(lines)-1] != "firewall@firewall:~$ " {
		t.Errorf("prompt after notice = %q", lines[len(lines)-1])
	}
}

func TestScreenScrollbackBound(t *testing.T) {
	screen := NewScreen(3)
	for _, line := range []string{"1", "2", "3", "4", "5"} {
		screen.WriteLine(line)
	}
	screen.Write("cur")
	if got := screen.Lines(); !slices.Equal(got, []string{"3", "4", "5", "cur"}) {
		t.Errorf("Lines() = %q", got)
	}
	if got := screen.Tail(2); !slices.Equal(got, []string{"5", "cur"}) {
		t.Errorf("Tail(2) = %q", got)
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("dmz"); err != nil || id != DMZ {
		t.Errorf("ParseID(dmz) = %q, %v", id, err)
	}
	if _, err := ParseID("router"); err == nil {
		t.Error("ParseID(router) succeeded")
	}
}
