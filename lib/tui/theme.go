// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the console. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected tab or row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Tone colors, indexed by [Tone].
	Good    lipgloss.Color
	Bad     lipgloss.Color
	Caution lipgloss.Color
	Accent  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	FocusBorderColor lipgloss.Color
	HelpText         lipgloss.Color

	// Modal dialogs.
	ModalForeground lipgloss.Color
	ModalBackground lipgloss.Color
}

// Tone is the semantic weight of a piece of text: a blocked packet
// and a lost connection are both [ToneBad].
type Tone int

const (
	ToneNormal Tone = iota
	ToneFaint
	ToneGood
	ToneBad
	ToneCaution
	ToneAccent
)

// ToneColor returns the color for tone. Unknown tones return
// NormalText.
func (theme Theme) ToneColor(tone Tone) lipgloss.Color {
	switch tone {
	case ToneFaint:
		return theme.FaintText
	case ToneGood:
		return theme.Good
	case ToneBad:
		return theme.Bad
	case ToneCaution:
		return theme.Caution
	case ToneAccent:
		return theme.Accent
	default:
		return theme.NormalText
	}
}

// ToneStyle returns a foreground style for tone.
func (theme Theme) ToneStyle(tone Tone) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.ToneColor(tone))
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	Good:    lipgloss.Color("114"), // green
	Bad:     lipgloss.Color("196"), // red
	Caution: lipgloss.Color("220"), // amber
	Accent:  lipgloss.Color("75"),  // blue

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	FocusBorderColor: lipgloss.Color("75"),
	HelpText:         lipgloss.Color("241"),

	ModalForeground: lipgloss.Color("252"),
	ModalBackground: lipgloss.Color("237"),
}
