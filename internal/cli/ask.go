// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question: submit once, wait, print the reply.
//
// A failed request still prints the fallback reply and exits 0, the same
// as the interactive front-ends.

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/juwamardott/chatbot/internal/config"
	"github.com/juwamardott/chatbot/internal/ui/chat"
	"github.com/juwamardott/chatbot/internal/ui/styles"
)

// stdinArg makes ask read the prompt from stdin.
const stdinArg = "-"

func newAskCommand(env Environment, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt...>",
		Short: "Ask a single question and print the reply",
		Example: `  chatbot ask "Apa ibu kota Indonesia?"
  echo "Explain goroutines" | chatbot ask -`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &UsageError{Reason: "ask: a prompt is required"}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := askPrompt(args, env.Stdin)
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), env, flags, prompt)
		},
	}
}

// askPrompt joins the arguments, or reads stdin for a lone "-".
func askPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == stdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "read prompt from stdin")
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func runAsk(ctx context.Context, env Environment, flags *globalFlags, prompt string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(env, flags, false)
	if err != nil {
		return NewCommandError("ask", "start session", err)
	}
	defer s.Close()

	if !s.ctrl.Submit(prompt) {
		return &UsageError{Reason: "ask: prompt is empty"}
	}
	if err := s.ctrl.Wait(ctx); err != nil {
		return err
	}

	format := newReplyFormatter(s.cfg, env.StdoutTTY())
	for _, turn := range repliesSince(s.ctrl.Transcript(), 0) {
		fmt.Fprintln(env.Stdout, format(turn.Content))
	}
	return nil
}

// =============================================================================
// REPLY FORMATTING
// =============================================================================

// newReplyFormatter returns the function used to print assistant replies.
// Markdown is rendered only on a terminal, so piped output stays verbatim.
func newReplyFormatter(cfg *config.Config, tty bool) func(string) string {
	plain := func(s string) string { return s }
	if !tty || !cfg.UI.Markdown {
		return plain
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	r, err := chat.NewMarkdownRenderer(theme.IsDark, GetTerminalWidth()-4)
	if err != nil {
		return plain
	}
	return func(s string) string {
		out, err := r.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimRight(out, "\n")
	}
}
