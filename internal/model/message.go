// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation transcript.
package model

import "strings"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsKnown reports whether the role is one of the three roles the completion
// endpoint understands.
func (r Role) IsKnown() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one entry in a conversation. A Turn is a value: once created it is
// never edited, only appended to a transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewTurn creates a turn with the given role and content. Content is stored
// exactly as given.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content}
}

// NewUserTurn creates a user turn.
func NewUserTurn(content string) Turn {
	return NewTurn(RoleUser, content)
}

// NewAssistantTurn creates an assistant turn.
func NewAssistantTurn(content string) Turn {
	return NewTurn(RoleAssistant, content)
}

// NewSystemTurn creates a system turn.
func NewSystemTurn(content string) Turn {
	return NewTurn(RoleSystem, content)
}

// IsZero reports whether the turn carries neither a role nor content.
func (t Turn) IsZero() bool {
	return t.Role == "" && t.Content == ""
}

// IsBlank reports whether the content is empty after trimming whitespace.
func (t Turn) IsBlank() bool {
	return strings.TrimSpace(t.Content) == ""
}

// CloneTurns returns a copy of turns that shares no backing array with it.
// A nil or empty input yields an empty, non-nil slice.
func CloneTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
