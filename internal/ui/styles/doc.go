// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatbot TUI.

# Color System (colors.go)

Every color is a Lip Gloss AdaptiveColor, so the same token works on light
and dark terminals:

	UserBubbleBg/Fg/Border      - right-aligned user turns
	AssistantBubbleBg/Fg/Border - left-aligned assistant turns
	TextPrimary/Secondary/Muted - body text, labels, hints

# Theme (theme.go)

NewTheme builds every lipgloss.Style the chat view uses. The mode comes
from ui.theme in the config: "dark" and "light" force the background,
"auto" asks the terminal through termenv.

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)
	bubble := theme.UserBubble.MaxWidth(theme.BubbleWidth())
*/
package styles
