// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types used by the chat interface.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/juwamardott/chatbot/internal/conversation"
)

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// SnapshotMsg delivers a new conversation state to the model.
type SnapshotMsg conversation.Snapshot

// SubscriptionClosedMsg signals that the controller stopped publishing.
type SubscriptionClosedMsg struct{}

// waitForSnapshot blocks on the subscription until the next state arrives.
// The model re-issues it after every SnapshotMsg.
func waitForSnapshot(updates <-chan conversation.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return SubscriptionClosedMsg{}
		}
		return SnapshotMsg(snap)
	}
}
