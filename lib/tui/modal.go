// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Modal chrome overhead: 2 columns border + 2 columns padding
// horizontally; 2 lines border + title + blank + footer vertically.
const (
	modalChromeWidth  = 4
	modalChromeHeight = 5
	// Dialogs never grow past this inner width so messages stay
	// readable on wide terminals.
	modalMaxInnerWidth = 64
	modalMinInnerWidth = 20
	// Margin between the modal edge and the screen edge.
	modalMargin = 2
)

// Dialog is a centered, bordered message box: a title, a wrapped body
// and a footer naming the keys that close it.
type Dialog struct {
	Title  string
	Body   string
	Footer string
	// Tone colors the border and title.
	Tone Tone
}

// innerWidth picks the text width for a screen of screenWidth
// columns.
func innerWidth(screenWidth int) int {
	width := screenWidth - modalMargin*2 - modalChromeWidth
	width = min(width, modalMaxInnerWidth)
	width = max(width, modalMinInnerWidth)
	return min(width, max(screenWidth-modalChromeWidth, 1))
}

// Render produces the dialog's lines and the anchor that centers them
// on the screen, ready for [SpliceOverlay].
func (dialog Dialog) Render(theme Theme, screenWidth, screenHeight int) ([]string, int, int) {
	width := innerWidth(screenWidth)

	var body []string
	for _, paragraph := range strings.Split(dialog.Body, "\n") {
		body = append(body, strings.Split(ansi.Wrap(paragraph, width, ""), "\n")...)
	}
	// Leave room for the chrome; long bodies lose their tail.
	if maxBody := screenHeight - modalChromeHeight; maxBody > 0 && len(body) > maxBody {
		body = body[:maxBody]
		body[maxBody-1] = ansi.Truncate(body[maxBody-1], width-1, "") + "…"
	}

	lines := renderBox(theme, dialog.Tone, dialog.Title, body, dialog.Footer, width)
	anchorX, anchorY := Center(lines, screenWidth, screenHeight)
	return lines, anchorX, anchorY
}

// renderBox draws the shared modal frame around body lines.
func renderBox(theme Theme, tone Tone, title string, body []string, footer string, width int) []string {
	backgroundStyle := lipgloss.NewStyle().Background(theme.ModalBackground)
	accent := theme.ToneColor(tone)
	if tone == ToneNormal {
		accent = theme.HeaderForeground
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(accent).
		Background(theme.ModalBackground)
	textStyle := lipgloss.NewStyle().
		Foreground(theme.ModalForeground).
		Background(theme.ModalBackground)
	footerStyle := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.ModalBackground)

	content := make([]string, 0, len(body)+3)
	content = append(content, PadLine(titleStyle.Render(title), width, backgroundStyle))
	content = append(content, PadLine("", width, backgroundStyle))
	for _, line := range body {
		content = append(content, PadLine(textStyle.Render(line), width, backgroundStyle))
	}
	content = append(content, PadLine(footerStyle.Render(footer), width, backgroundStyle))

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		BorderBackground(theme.ModalBackground).
		Background(theme.ModalBackground).
		Padding(0, 1)

	return strings.Split(borderStyle.Render(strings.Join(content, "\n")), "\n")
}

// Prompt is a modal single-line text entry, used for file paths. It
// wraps a bubbles textinput; the caller decides which keys submit and
// cancel and forwards the rest to [Prompt.Update].
type Prompt struct {
	Title  string
	Footer string

	input textinput.Model
}

// NewPrompt returns a focused prompt with an optional initial value.
func NewPrompt(title, placeholder, value, footer string) Prompt {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = placeholder
	input.SetValue(value)
	input.CursorEnd()
	input.Focus()
	return Prompt{Title: title, Footer: footer, input: input}
}

// Value returns the entered text with surrounding whitespace removed.
func (prompt Prompt) Value() string {
	return strings.TrimSpace(prompt.input.Value())
}

// Update applies a key message to the text field.
func (prompt *Prompt) Update(message tea.Msg) tea.Cmd {
	var command tea.Cmd
	prompt.input, command = prompt.input.Update(message)
	return command
}

// Render produces the prompt's lines and centered anchor.
func (prompt Prompt) Render(theme Theme, screenWidth, screenHeight int) ([]string, int, int) {
	width := innerWidth(screenWidth)
	input := prompt.input
	input.Width = max(width-ansi.StringWidth(input.Prompt)-1, 1)
	input.TextStyle = lipgloss.NewStyle().Foreground(theme.ModalForeground).Background(theme.ModalBackground)
	input.PromptStyle = lipgloss.NewStyle().Foreground(theme.Accent).Background(theme.ModalBackground)
	input.PlaceholderStyle = lipgloss.NewStyle().Foreground(theme.FaintText).Background(theme.ModalBackground)

	lines := renderBox(theme, ToneAccent, prompt.Title, []string{input.View()}, prompt.Footer, width)
	anchorX, anchorY := Center(lines, screenWidth, screenHeight)
	return lines, anchorX, anchorY
}
