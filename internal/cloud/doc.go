// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the Together AI chat completions client.
//
// # Key Types
//
//   - Client: sends a conversation and returns the first choice's message
//   - APIError: a non-2xx response, unwrapping to a sentinel by status
//
// # Errors
//
// Failures fall into three groups. ErrTransport covers requests that never
// got a response. APIError covers non-2xx statuses (ErrAuthFailed,
// ErrRateLimited, ErrServerError and friends via errors.Is).
// ErrMalformedResponse covers 2xx bodies without a usable first choice.
//
// # Usage
//
//	client, err := cloud.NewClient(os.Getenv("TOGETHER_API_KEY"))
//	if err != nil {
//	    return err // ErrNotConfigured
//	}
//	reply, err := client.Complete(ctx, []model.Turn{
//	    model.NewSystemTurn("You are a helpful assistant."),
//	    model.NewUserTurn("Halo"),
//	})
package cloud
