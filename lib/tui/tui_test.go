// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func TestScrollThumb(t *testing.T) {
	tests := []struct {
		name      string
		state     ScrollState
		height    int
		wantStart int
		wantSize  int
	}{
		{"fits", ScrollState{Total: 5, Visible: 10}, 10, 0, 10},
		{"top", ScrollState{Total: 100, Visible: 10, Offset: 0}, 10, 0, 1},
		{"bottom", ScrollState{Total: 100, Visible: 10, Offset: 90}, 10, 9, 1},
		{"half", ScrollState{Total: 20, Visible: 10, Offset: 10}, 10, 5, 5},
		{"offset past end", ScrollState{Total: 20, Visible: 10, Offset: 50}, 10, 5, 5},
		{"zero height", ScrollState{Total: 20, Visible: 10}, 0, 0, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			start, size := test.state.Thumb(test.height)
			if start != test.wantStart || size != test.wantSize {
				t.Errorf("Thumb(%d) = (%d, %d), want (%d, %d)",
					test.height, start, size, test.wantStart, test.wantSize)
			}
		})
	}
}

func TestRenderScrollbarHeight(t *testing.T) {
	bar := RenderScrollbar(DefaultTheme, 7, ScrollState{Total: 30, Visible: 7, Offset: 3}, true)
	if lines := strings.Split(bar, "\n"); len(lines) != 7 {
		t.Fatalf("scrollbar has %d lines, want 7", len(lines))
	}
	if RenderScrollbar(DefaultTheme, 0, ScrollState{}, false) != "" {
		t.Error("zero-height scrollbar is not empty")
	}
}

func TestSpliceOverlay(t *testing.T) {
	view := "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"
	result := SpliceOverlay(view, []string{"XY", "ZW"}, 3, 1)
	lines := strings.Split(result, "\n")
	if got := ansi.Strip(lines[0]); got != "aaaaaaaaaa" {
		t.Errorf("line above overlay changed: %q", got)
	}
	if got := ansi.Strip(lines[1]); got != "bbbXYbbbbb" {
		t.Errorf("line 1 = %q, want bbbXYbbbbb", got)
	}
	if got := ansi.Strip(lines[2]); got != "cccZWccccc" {
		t.Errorf("line 2 = %q, want cccZWccccc", got)
	}
}

func TestSpliceOverlayPastShortLine(t *testing.T) {
	result := SpliceOverlay("ab", []string{"XY"}, 4, 0)
	if got := ansi.Strip(result); got != "ab  XY" {
		t.Errorf("got %q, want %q", got, "ab  XY")
	}
}

func TestFitLine(t *testing.T) {
	if got := FitLine("abc", 5); got != "abc  " {
		t.Errorf("FitLine pad = %q", got)
	}
	if got := ansi.Strip(FitLine("\x1b[31mabcdef\x1b[0m", 3)); got != "abc" {
		t.Errorf("FitLine truncate = %q", got)
	}
	if FitLine("abc", 0) != "" {
		t.Error("FitLine(0) is not empty")
	}
}

func TestDialogRenderIsCenteredAndRectangular(t *testing.T) {
	dialog := Dialog{
		Title:  "Session expired",
		Body:   "Your session has expired. The simulator will now reset.",
		Footer: "Enter OK",
		Tone:   ToneCaution,
	}
	lines, anchorX, anchorY := dialog.Render(DefaultTheme, 100, 40)
	if len(lines) < 6 {
		t.Fatalf("dialog has %d lines, want at least 6", len(lines))
	}
	width := ansi.StringWidth(lines[0])
	for index, line := range lines {
		if ansi.StringWidth(line) != width {
			t.Errorf("line %d is %d wide, want %d", index, ansi.StringWidth(line), width)
		}
	}
	if anchorX != (100-width)/2 || anchorY != (40-len(lines))/2 {
		t.Errorf("anchor (%d, %d) does not center a %dx%d box", anchorX, anchorY, width, len(lines))
	}
	joined := ansi.Strip(strings.Join(lines, "\n"))
	for _, want := range []string{"Session expired", "Your session has expired.", "Enter OK"} {
		if !strings.Contains(joined, want) {
			t.Errorf("dialog does not contain %q", want)
		}
	}
}

func TestDialogTruncatesOnShortScreen(t *testing.T) {
	dialog := Dialog{Title: "t", Body: strings.Repeat("line\n", 50), Footer: "f"}
	lines, _, anchorY := dialog.Render(DefaultTheme, 80, 12)
	if len(lines) > 12 {
		t.Errorf("dialog has %d lines on a 12-line screen", len(lines))
	}
	if anchorY != 0 {
		t.Errorf("anchorY = %d, want 0", anchorY)
	}
}

func TestPromptEditing(t *testing.T) {
	prompt := NewPrompt("Import rules", "path", "/tmp/", "Enter load  Esc cancel")
	for _, character := range "a.rules" {
		prompt.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{character}})
	}
	if got := prompt.Value(); got != "/tmp/a.rules" {
		t.Fatalf("Value() = %q, want /tmp/a.rules", got)
	}
	prompt.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := prompt.Value(); got != "/tmp/a.rule" {
		t.Errorf("Value() after backspace = %q", got)
	}

	lines, _, _ := prompt.Render(DefaultTheme, 80, 24)
	if !strings.Contains(ansi.Strip(strings.Join(lines, "\n")), "Import rules") {
		t.Error("prompt does not show its title")
	}
}
