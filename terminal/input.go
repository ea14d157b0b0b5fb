// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package terminal

import "strings"

// Control codes with reserved meaning. Codes in [CodePrintableFirst,
// CodePrintableLast] are printable; every other code is ignored.
const (
	CodeCancel         rune = 3
	CodeClearScreen    rune = 12
	CodeSubmit         rune = 13
	CodeDelete         rune = 127
	CodePrintableFirst rune = 32
	CodePrintableLast  rune = 126
)

// EffectKind is the kind of rendering or protocol action a transition
// asks for.
type EffectKind int

const (
	// EffectEcho writes Text at the end of the current line.
	EffectEcho EffectKind = iota
	// EffectErase removes the last cell of the current line.
	EffectErase
	// EffectNewline ends the current line.
	EffectNewline
	// EffectCancelMarker writes the cancellation marker and ends the line.
	EffectCancelMarker
	// EffectClearScreen wipes the screen.
	EffectClearScreen
	// EffectPrompt renders the prompt followed by the buffer.
	EffectPrompt
	// EffectSubmit carries a trimmed, non-empty command in Text.
	EffectSubmit
)

// Effect is one action produced by [Step].
type Effect struct {
	Kind EffectKind
	Text string
}

// CancelMarker is echoed when a line is cancelled.
const CancelMarker = "^C"

// IsPrintable reports whether code may enter a command buffer.
func IsPrintable(code rune) bool {
	return code >= CodePrintableFirst && code <= CodePrintableLast
}

// Step applies one control code to buffer. The returned buffer only
// ever holds printable characters, and an EffectSubmit, when present,
// is the last effect and the returned buffer is empty.
func Step(buffer string, code rune) (string, []Effect) {
	switch {
	case code == CodeSubmit:
		command := strings.TrimSpace(buffer)
		if command == "" {
			return "", []Effect{{Kind: EffectNewline}, {Kind: EffectPrompt}}
		}
		return "", []Effect{{Kind: EffectNewline}, {Kind: EffectSubmit, Text: command}}

	case code == CodeDelete:
		if buffer == "" {
			return buffer, nil
		}
		return buffer[:len(buffer)-1], []Effect{{Kind: EffectErase}}

	case code == CodeCancel:
		return "", []Effect{{Kind: EffectCancelMarker}, {Kind: EffectPrompt}}

	case code == CodeClearScreen:
		return buffer, []Effect{{Kind: EffectClearScreen}, {Kind: EffectPrompt}}

	case IsPrintable(code):
		character := string(code)
		return buffer + character, []Effect{{Kind: EffectEcho, Text: character}}
	}
	return buffer, nil
}
