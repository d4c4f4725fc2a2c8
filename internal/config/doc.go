// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatbot.
//
// # Key Types
//
//   - Config: API key plus logging and UI preferences
//   - ValidationError: one invalid field
//   - ValidateErrors: every invalid field found by Validate
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TOGETHER_API_KEY, CHATBOT_*)
//   - ~/.chatbot/config.toml
//   - Built-in defaults
//
// The API key is only ever read from the environment. Validate rejects a
// config without one, so a client is never built without credentials.
//
// # Usage
//
//	cfg, err := config.Load()
//	if errors.Is(err, config.ErrMissingAPIKey) {
//	    fmt.Fprintln(os.Stderr, "export TOGETHER_API_KEY first")
//	    os.Exit(1)
//	}
package config
