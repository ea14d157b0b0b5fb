// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ScrollState describes a scrolled region: how many lines exist, how
// many are visible, and the index of the first visible line.
type ScrollState struct {
	Total   int
	Visible int
	Offset  int
}

// Thumb returns the thumb's first row and size for a bar of height
// rows. When everything fits the thumb spans the whole bar.
func (state ScrollState) Thumb(height int) (start, size int) {
	if height <= 0 {
		return 0, 0
	}
	if state.Total <= state.Visible || state.Total <= 0 {
		return 0, height
	}

	size = max(height*state.Visible/state.Total, 1)

	scrollable := state.Total - state.Visible
	track := height - size
	if scrollable > 0 && track > 0 {
		start = min(max(state.Offset, 0), scrollable) * track / scrollable
	}
	if start+size > height {
		start = height - size
	}
	return start, size
}

// RenderScrollbar produces a single-column scrollbar of the given
// height. The thumb uses the focus color when focused.
func RenderScrollbar(theme Theme, height int, state ScrollState, focused bool) string {
	if height <= 0 {
		return ""
	}

	thumbColor := theme.BorderColor
	if focused {
		thumbColor = theme.FocusBorderColor
	}
	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(thumbColor)

	start, size := state.Thumb(height)
	lines := make([]string, height)
	for index := range lines {
		if index >= start && index < start+size {
			lines[index] = thumbStyle.Render("┃")
		} else {
			lines[index] = trackStyle.Render("│")
		}
	}
	return strings.Join(lines, "\n")
}
