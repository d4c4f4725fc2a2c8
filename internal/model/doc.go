// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation transcript.
//
// # Key Types
//
//   - Role: turn author enumeration (system, user, assistant)
//   - Turn: immutable role and content pair
//
// # Usage
//
//	history := []model.Turn{
//	    model.NewUserTurn("Halo!"),
//	    model.NewAssistantTurn("Halo, ada yang bisa saya bantu?"),
//	}
//	snapshot := model.CloneTurns(history)
package model
