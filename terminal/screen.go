// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package terminal

import "github.com/charmbracelet/x/ansi"

// Screen is a line-oriented rendering surface: completed lines plus
// the line being composed. Completed lines beyond the scrollback limit
// are dropped oldest first. Lines may contain ANSI SGR sequences.
type Screen struct {
	lines      []string
	current    string
	scrollback int
}

// NewScreen returns an empty Screen keeping at most scrollback
// completed lines.
func NewScreen(scrollback int) *Screen {
	if scrollback < 1 {
		scrollback = 1
	}
	return &Screen{scrollback: scrollback}
}

// Write appends text to the current line.
func (s *Screen) Write(text string) {
	s.current += text
}

// WriteLine appends text to the current line and ends it.
func (s *Screen) WriteLine(text string) {
	s.current += text
	s.Newline()
}

// Newline ends the current line.
func (s *Screen) Newline() {
	s.lines = append(s.lines, s.current)
	s.current = ""
	if overflow := len(s.lines) - s.scrollback; overflow > 0 {
		s.lines = append(s.lines[:0], s.lines[overflow:]...)
	}
}

// BreakLine ends the current line only if it holds anything.
func (s *Screen) BreakLine() {
	if s.current != "" {
		s.Newline()
	}
}

// Erase removes the last printable cell of the current line, leaving
// escape sequences alone. It is a no-op on a line with no printable
// content.
func (s *Screen) Erase() {
	width := ansi.StringWidth(s.current)
	if width == 0 {
		return
	}
	s.current = ansi.Truncate(s.current, width-1, "")
}

// Clear wipes every line.
func (s *Screen) Clear() {
	s.lines = nil
	s.current = ""
}

// Lines returns the completed lines followed by the current line.
// The returned slice is a copy.
func (s *Screen) Lines() []string {
	result := make([]string, 0, len(s.lines)+1)
	result = append(result, s.lines...)
	return append(result, s.current)
}

// Current returns the line being composed.
func (s *Screen) Current() string {
	return s.current
}

// Tail returns the last n lines of Lines.
func (s *Screen) Tail(n int) []string {
	lines := s.Lines()
	if n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	return lines
}
