// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/fwconsole/terminal"
)

// KeyMap defines the console's key bindings. Keys not bound here are
// typed into the focused terminal.
type KeyMap struct {
	// Terminal selection.
	NextTerminal     key.Binding
	PreviousTerminal key.Binding
	SelectTerminal   [4]key.Binding // F1-F4, in terminal display order.

	// Panels and artifacts.
	ToggleLogs  key.Binding
	ExportRules key.Binding
	ImportRules key.Binding

	// Log panel.
	FilterAll      key.Binding
	FilterBlocked  key.Binding
	FilterAllowed  key.Binding
	FilterWarnings key.Binding
	Refresh        key.Binding
	Download       key.Binding
	ClearLogs      key.Binding
	Back           key.Binding
	ScrollUp       key.Binding
	ScrollDown     key.Binding
	PageUp         key.Binding
	PageDown       key.Binding

	// Modals.
	Accept  key.Binding
	Decline key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	NextTerminal: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next terminal"),
	),
	PreviousTerminal: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "previous terminal"),
	),
	SelectTerminal: [4]key.Binding{
		key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "firewall")),
		key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "insider")),
		key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "outsider")),
		key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "dmz")),
	},
	ToggleLogs: key.NewBinding(
		key.WithKeys("f5"),
		key.WithHelp("F5", "logs"),
	),
	ExportRules: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("C-e", "export rules"),
	),
	ImportRules: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "import rules"),
	),
	FilterAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all"),
	),
	FilterBlocked: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "blocked"),
	),
	FilterAllowed: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "allowed"),
	),
	FilterWarnings: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "warnings"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Download: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "download"),
	),
	ClearLogs: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "terminals"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("up", "k"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter", "y"),
		key.WithHelp("Enter/y", "yes"),
	),
	Decline: key.NewBinding(
		key.WithKeys("esc", "n"),
		key.WithHelp("Esc/n", "no"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+q"),
		key.WithHelp("C-q", "quit"),
	),
}

// KeyCodes translates a key press into the control codes a terminal
// understands. Keys with no terminal meaning translate to nothing;
// runes outside the printable range pass through and are ignored by
// the input state machine. A newline in pasted text submits, as a
// carriage return would.
func KeyCodes(message tea.KeyMsg) []rune {
	switch message.Type {
	case tea.KeyEnter:
		return []rune{terminal.CodeSubmit}
	case tea.KeyBackspace:
		return []rune{terminal.CodeDelete}
	case tea.KeyCtrlC:
		return []rune{terminal.CodeCancel}
	case tea.KeyCtrlL:
		return []rune{terminal.CodeClearScreen}
	case tea.KeySpace:
		return []rune{' '}
	case tea.KeyRunes:
		codes := make([]rune, len(message.Runes))
		for index, character := range message.Runes {
			if character == '\n' {
				character = terminal.CodeSubmit
			}
			codes[index] = character
		}
		return codes
	}
	return nil
}
