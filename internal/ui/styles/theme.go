// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the chatbot TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Typing          lipgloss.Style
	TypingSpinner   lipgloss.Style

	// ==========================================================================
	// EMPTY STATE STYLES
	// ==========================================================================

	EmptyTitle lipgloss.Style
	EmptyHint  lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputBorder  lipgloss.Style
	SendEnabled  lipgloss.Style
	SendDisabled lipgloss.Style
	KeyHint      lipgloss.Style
	StatusReady  lipgloss.Style
	StatusBusy   lipgloss.Style
}

// NewTheme creates a new theme with all styles configured. mode is one of
// ModeAuto, ModeDark or ModeLight; anything else is treated as ModeAuto.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.Typing = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.TypingSpinner = lipgloss.NewStyle().
		Foreground(Purple)

	// Empty state
	t.EmptyTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		Align(lipgloss.Center)

	t.EmptyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center)

	// Input area
	t.InputBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.SendEnabled = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Blue).
		Padding(0, 1)

	t.SendDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 1)

	t.KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatusReady = lipgloss.NewStyle().
		Foreground(Emerald)

	t.StatusBusy = lipgloss.NewStyle().
		Foreground(Amber)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)

// BubbleWidth returns the widest a message bubble may be for the current
// layout: nearly full width on narrow terminals, about three quarters on
// wider ones.
func (t *Theme) BubbleWidth() int {
	w := t.Width
	if w <= 0 {
		w = 80
	}
	if w < 60 {
		w -= 4
	} else {
		w = w * 3 / 4
	}
	if w < 10 {
		w = 10
	}
	return w
}
