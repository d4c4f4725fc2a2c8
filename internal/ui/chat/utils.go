// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains text layout helpers used by the renderer.
package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// wrapText wraps text to a maximum display width, measuring wide characters
// as two columns. It preserves existing line breaks and breaks long lines at
// the last space that fits, or mid-word when there is none.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		var parts []string
		for runewidth.StringWidth(line) > maxWidth {
			cut := breakIndex(line, maxWidth)
			parts = append(parts, strings.TrimRight(line[:cut], " "))
			line = strings.TrimLeft(line[cut:], " ")
		}
		if line != "" || len(parts) == 0 {
			parts = append(parts, line)
		}
		result.WriteString(strings.Join(parts, "\n"))
	}

	return result.String()
}

// breakIndex returns the byte offset where line should be split so the
// first part fits in maxWidth columns. Always at least one rune.
func breakIndex(line string, maxWidth int) int {
	width, lastSpace, cut := 0, -1, 0
	for i, r := range line {
		w := runewidth.RuneWidth(r)
		if width+w > maxWidth {
			if r == ' ' {
				return i
			}
			break
		}
		if r == ' ' {
			lastSpace = i
		}
		width += w
		// An invalid byte decodes as RuneError but spans one byte, so the
		// size comes from the decoder rather than utf8.RuneLen.
		_, size := utf8.DecodeRuneInString(line[i:])
		cut = i + size
	}

	if lastSpace > 0 {
		return lastSpace
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(line)
		return size
	}
	return cut
}

// truncateToWidth shortens s to fit width columns, marking the cut with an
// ellipsis.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
