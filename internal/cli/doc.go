// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the chatbot command line.
//
// # Commands
//
//   - chat: interactive chat, full-screen when on a terminal (default)
//   - chat --plain: line-mode REPL
//   - ask: single question, reply on stdout
//   - config: effective configuration, key masked
//   - version: build information
//
// Global flags: --config, --log-level, --log-file, --lang.
//
// # Usage
//
//	func main() {
//	    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer stop()
//	    os.Exit(cli.Execute(ctx, os.Args[1:]))
//	}
package cli
