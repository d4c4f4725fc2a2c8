// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains all rendering logic for the chat interface:
//   - Transcript rendering (Render), a pure function of a snapshot
//   - Header, input area and footer used by Model.View
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/juwamardott/chatbot/internal/conversation"
	"github.com/juwamardott/chatbot/internal/locale"
	"github.com/juwamardott/chatbot/internal/model"
	"github.com/juwamardott/chatbot/internal/ui/styles"
)

// defaultRenderWidth is used when the terminal size is not known yet.
const defaultRenderWidth = 80

// bubbleChrome is the horizontal space taken by a bubble's border and
// padding, which the wrapped text must leave free.
const bubbleChrome = 6

// RenderOptions carries everything Render needs besides the state itself.
type RenderOptions struct {
	// Width is the available width in columns. Zero means 80.
	Width int
	// Height, when positive, vertically centers the empty state.
	Height int
	// Theme supplies the styles. Nil uses a dark theme.
	Theme *styles.Theme
	// Strings supplies localized text.
	Strings locale.Strings
	// Markdown renders assistant turns when non-nil.
	Markdown MarkdownRenderer
	// Spinner is the current frame of the typing indicator.
	Spinner string
}

// =============================================================================
// TRANSCRIPT RENDER
// =============================================================================

// Render draws the transcript for snap. It has no side effects: the same
// snapshot and options always produce the same string.
//
// An empty, idle transcript shows the empty-state placeholder. Otherwise
// each turn becomes one row in order, user rows against the right edge and
// assistant rows against the left, followed by the typing indicator while
// a request is pending.
func Render(snap conversation.Snapshot, opts RenderOptions) string {
	width := opts.Width
	if width <= 0 {
		width = defaultRenderWidth
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeDark)
	}
	if theme.Width != width {
		sized := *theme
		sized.SetSize(width, opts.Height)
		theme = &sized
	}

	if snap.Empty() && !snap.Pending {
		return renderEmptyState(theme, opts.Strings, width, opts.Height)
	}

	rows := make([]string, 0, len(snap.Turns)+1)
	for _, turn := range snap.Turns {
		rows = append(rows, renderTurn(theme, opts.Markdown, turn, width))
	}
	if snap.Pending {
		rows = append(rows, renderTyping(theme, opts.Strings, opts.Spinner))
	}

	return strings.Join(rows, "\n\n")
}

// renderEmptyState renders the centered placeholder shown before the first
// message.
func renderEmptyState(theme *styles.Theme, s locale.Strings, width, height int) string {
	block := lipgloss.JoinVertical(lipgloss.Center,
		theme.EmptyTitle.Render(s.EmptyTitle),
		theme.EmptyHint.Render(s.EmptyHint),
	)
	if height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}

// renderTurn renders one transcript row aligned by role.
func renderTurn(theme *styles.Theme, md MarkdownRenderer, turn model.Turn, width int) string {
	inner := theme.BubbleWidth() - bubbleChrome
	if inner > width-bubbleChrome {
		inner = width - bubbleChrome
	}
	if inner < 1 {
		inner = 1
	}

	if turn.Role == model.RoleUser {
		bubble := theme.UserBubble.Render(wrapText(turn.Content, inner))
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}

	body, ok := renderMarkdown(md, turn.Content)
	if !ok {
		body = wrapText(turn.Content, inner)
	}
	bubble := theme.AssistantBubble.Render(body)
	return lipgloss.PlaceHorizontal(width, lipgloss.Left, bubble)
}

// renderTyping renders the in-progress indicator, left-aligned like the
// assistant row it stands in for.
func renderTyping(theme *styles.Theme, s locale.Strings, frame string) string {
	if frame == "" {
		return theme.Typing.Render(s.Typing)
	}
	return theme.TypingSpinner.Render(frame) + " " + theme.Typing.Render(s.Typing)
}

// =============================================================================
// CHROME
// =============================================================================

// renderHeader renders the title line and subtitle.
func renderHeader(theme *styles.Theme, s locale.Strings, width int) string {
	title := theme.HeaderTitle.Render(truncateToWidth(s.Title, width-2))
	subtitle := theme.HeaderSubtitle.Render(truncateToWidth(s.Subtitle, width-2))
	return theme.Header.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, subtitle))
}

// renderInputArea renders the bordered input next to the send affordance.
// canSend selects the enabled or disabled look.
func renderInputArea(theme *styles.Theme, s locale.Strings, input string, canSend bool) string {
	send := theme.SendDisabled.Render(s.Send)
	if canSend {
		send = theme.SendEnabled.Render(s.Send)
	}
	box := theme.InputBorder.Render(input)
	return lipgloss.JoinHorizontal(lipgloss.Center, box, " ", send)
}

// renderFooter renders the key hint, or the help view when it has content.
func renderFooter(theme *styles.Theme, s locale.Strings, helpView string, pending bool, width int) string {
	status := theme.StatusReady.Render("●")
	if pending {
		status = theme.StatusBusy.Render("●")
	}
	hint := helpView
	if hint == "" {
		hint = theme.KeyHint.Render(truncateToWidth(s.KeyHint, width-2))
	}
	return status + " " + hint
}
