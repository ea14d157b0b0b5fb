// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package terminal

import (
	"log/slog"
	"strings"
)

// Multiplexer is the single writer of a Registry's terminals. Every
// method touches at most the named terminal's screen, except Banner,
// which writes the same line to every terminal in display order.
// Unknown terminal identifiers are logged and ignored.
type Multiplexer struct {
	registry *Registry
	logger   *slog.Logger
}

// NewMultiplexer returns a Multiplexer over registry.
func NewMultiplexer(registry *Registry, logger *slog.Logger) *Multiplexer {
	return &Multiplexer{registry: registry, logger: logger}
}

// Registry returns the terminals this multiplexer writes to.
func (m *Multiplexer) Registry() *Registry {
	return m.registry
}

// Input feeds one control code to the terminal's input state machine
// and renders the resulting effects. It returns the submitted command
// when the code completed one.
func (m *Multiplexer) Input(id ID, code rune) (string, bool) {
	terminal, ok := m.lookup(id, "input")
	if !ok {
		return "", false
	}

	buffer, effects := Step(terminal.buffer, code)
	terminal.buffer = buffer

	var command string
	var submitted bool
	for _, effect := range effects {
		switch effect.Kind {
		case EffectEcho:
			terminal.screen.Write(effect.Text)
		case EffectErase:
			terminal.screen.Erase()
		case EffectNewline:
			terminal.screen.Newline()
		case EffectCancelMarker:
			terminal.screen.WriteLine(CancelMarker)
		case EffectClearScreen:
			terminal.screen.Clear()
		case EffectPrompt:
			terminal.renderPrompt()
		case EffectSubmit:
			command, submitted = effect.Text, true
		}
	}
	return command, submitted
}

// Output renders server output: every newline-separated segment
// becomes a line, except an empty final segment, so "a\n" yields one
// line and "a\n\nb" keeps its blank line. The prompt follows.
func (m *Multiplexer) Output(id ID, text string) {
	terminal, ok := m.lookup(id, "output")
	if !ok {
		return
	}
	segments := strings.Split(text, "\n")
	for index, segment := range segments {
		if segment == "" && index == len(segments)-1 {
			break
		}
		terminal.screen.WriteLine(strings.TrimSuffix(segment, "\r"))
	}
	terminal.renderPrompt()
}

// Clear wipes the terminal's screen and renders the prompt.
func (m *Multiplexer) Clear(id ID) {
	terminal, ok := m.lookup(id, "clear")
	if !ok {
		return
	}
	terminal.screen.Clear()
	terminal.renderPrompt()
}

// UpdateAddress records the IP and network the server assigned. An
// empty network leaves the previous network label in place.
func (m *Multiplexer) UpdateAddress(id ID, ip, network string) {
	terminal, ok := m.lookup(id, "update address")
	if !ok {
		return
	}
	terminal.ip = ip
	if network != "" {
		terminal.network = network
	}
}

// Notice writes text as its own line in one terminal and renders the
// prompt after it.
func (m *Multiplexer) Notice(id ID, text string) {
	terminal, ok := m.lookup(id, "notice")
	if !ok {
		return
	}
	terminal.screen.BreakLine()
	terminal.screen.WriteLine(text)
	terminal.renderPrompt()
}

// Banner writes text as its own line in every terminal, followed by
// the prompt when prompt is set.
func (m *Multiplexer) Banner(text string, prompt bool) {
	for _, terminal := range m.registry.All() {
		terminal.screen.BreakLine()
		terminal.screen.WriteLine(text)
		if prompt {
			terminal.renderPrompt()
		}
	}
}

func (m *Multiplexer) lookup(id ID, operation string) (*Terminal, bool) {
	terminal, ok := m.registry.Get(id)
	if !ok {
		m.logger.Warn("event for unknown terminal ignored",
			"terminal", string(id),
			"operation", operation,
		)
	}
	return terminal, ok
}
