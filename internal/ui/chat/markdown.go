// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

// MarkdownRenderer turns assistant markdown into terminal output.
// *glamour.TermRenderer satisfies it.
type MarkdownRenderer interface {
	Render(in string) (string, error)
}

// NewMarkdownRenderer builds a glamour renderer for the given background
// that wraps at width columns.
func NewMarkdownRenderer(dark bool, width int) (MarkdownRenderer, error) {
	style := "light"
	if dark {
		style = "dark"
	}
	if width < 10 {
		width = 10
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(lipgloss.ColorProfile()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create markdown renderer")
	}
	return r, nil
}

// renderMarkdown renders content with r, or returns ok=false so the caller
// can fall back to plain text.
func renderMarkdown(r MarkdownRenderer, content string) (string, bool) {
	if r == nil {
		return "", false
	}
	out, err := r.Render(content)
	if err != nil {
		return "", false
	}
	out = strings.Trim(out, "\n")
	if strings.TrimSpace(out) == "" {
		return "", false
	}
	return out, true
}
