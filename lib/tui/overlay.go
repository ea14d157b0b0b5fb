// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay replaces a rectangular region of a rendered view with
// overlay content. The overlay lines are placed starting at (anchorX,
// anchorY) in screen coordinates. Uses ANSI-aware truncation so escape
// sequences in the original view are preserved on both sides of the
// overlay.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		viewLineIndex := anchorY + index
		if viewLineIndex < 0 || viewLineIndex >= len(viewLines) {
			continue
		}

		viewLine := viewLines[viewLineIndex]
		viewLineWidth := ansi.StringWidth(viewLine)

		var result strings.Builder
		if anchorX > 0 {
			prefix := ansi.Truncate(viewLine, anchorX, "")
			result.WriteString(prefix)
			// Short lines leave a gap before the overlay.
			if gap := anchorX - ansi.StringWidth(prefix); gap > 0 {
				result.WriteString(strings.Repeat(" ", gap))
			}
		}
		result.WriteString("\x1b[0m")
		result.WriteString(overlayLine)
		result.WriteString("\x1b[0m")

		suffixStart := anchorX + overlayWidth
		if suffixStart < viewLineWidth {
			result.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}

		viewLines[viewLineIndex] = result.String()
	}

	return strings.Join(viewLines, "\n")
}

// Center returns the anchor that centers a block of lines on a
// screenWidth x screenHeight screen. Blocks larger than the screen
// anchor at the origin.
func Center(lines []string, screenWidth, screenHeight int) (int, int) {
	width := 0
	if len(lines) > 0 {
		width = ansi.StringWidth(lines[0])
	}
	return max((screenWidth-width)/2, 0), max((screenHeight-len(lines))/2, 0)
}

// PadLine pads styled content to width with background-colored
// spaces. Content wider than width is truncated.
func PadLine(styledContent string, width int, backgroundStyle lipgloss.Style) string {
	contentWidth := ansi.StringWidth(styledContent)
	if contentWidth > width {
		return ansi.Truncate(styledContent, width, "…")
	}
	if contentWidth == width {
		return styledContent
	}
	return styledContent + backgroundStyle.Render(strings.Repeat(" ", width-contentWidth))
}

// FitLine truncates or pads plain or styled text to exactly width
// columns without adding any style.
func FitLine(text string, width int) string {
	if width <= 0 {
		return ""
	}
	textWidth := ansi.StringWidth(text)
	if textWidth > width {
		return ansi.Truncate(text, width, "")
	}
	return text + strings.Repeat(" ", width-textWidth)
}
