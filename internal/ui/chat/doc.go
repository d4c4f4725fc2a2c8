// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat view component for the chatbot TUI.

The view is a thin Bubble Tea layer over a conversation.Controller. The
controller owns the transcript and the pending flag; this package only
renders snapshots and turns key presses into submissions.

# Key Components

## Model (model.go)

  - Subscribes to the controller and re-renders on every snapshot
  - Multi-line textarea input, viewport scrolling, typing spinner
  - Clears the input only when a submission is accepted

## View Rendering (view.go)

Render is a pure function of a conversation.Snapshot:
  - Empty state placeholder before the first message
  - User turns right-aligned, assistant turns left-aligned
  - Typing indicator while a request is pending

## Keys (keys.go)

	enter            send
	alt+enter        new line
	ctrl+j           new line
	pgup / pgdown    scroll
	ctrl+g           toggle help
	ctrl+c / esc     quit

# Usage

	ctrl, _ := conversation.New(conversation.Options{Completer: client})
	m := chat.New(ctrl, chat.Options{
		Theme:    styles.NewTheme(cfg.UI.Theme),
		Strings:  locale.For(cfg.UI.Language),
		Markdown: cfg.UI.Markdown,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
