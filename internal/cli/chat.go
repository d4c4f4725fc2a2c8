// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat: the full-screen TUI, or a line-mode REPL when
// the terminal cannot host one (or --plain is given).
//
// In the REPL a line ending in a backslash continues on the next line, the
// line-mode counterpart of Alt+Enter in the TUI.

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/juwamardott/chatbot/internal/model"
	"github.com/juwamardott/chatbot/internal/ui/chat"
	"github.com/juwamardott/chatbot/internal/ui/styles"
)

const (
	replPrompt         = "> "
	replContinuePrompt = ". "
	continuationMarker = `\`
)

func newChatCommand(env Environment, flags *globalFlags) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), env, flags, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "use the line-mode REPL instead of the full-screen UI")
	return cmd
}

func runChat(ctx context.Context, env Environment, flags *globalFlags, plain bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tui := !plain && env.Interactive()

	s, err := openSession(env, flags, tui)
	if err != nil {
		return NewCommandError("chat", "start session", err)
	}
	defer s.Close()

	if tui {
		return runTUI(ctx, s, env.Stdout)
	}

	reader := env.NewLineReader()
	defer reader.Close()
	return runREPL(ctx, s, reader, env)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(ctx context.Context, s *session, out io.Writer) error {
	m := chat.New(s.ctrl, chat.Options{
		Theme:    styles.NewTheme(s.cfg.UI.Theme),
		Strings:  s.strings,
		Markdown: s.cfg.UI.Markdown,
		Logger:   &s.logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(chat.Model); ok {
		fm.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run chat UI")
	}

	fmt.Fprintln(out, s.strings.Goodbye)
	return nil
}

// =============================================================================
// LINE-MODE REPL
// =============================================================================

// runREPL submits each message read from in and prints the reply once the
// controller goes idle. It ends on EOF or Ctrl+C, at the prompt or while a
// reply is pending.
func runREPL(ctx context.Context, s *session, in LineReader, env Environment) error {
	out := env.Stdout
	format := newReplyFormatter(s.cfg, env.StdoutTTY())

	fmt.Fprintln(out, s.strings.Title)
	fmt.Fprintln(out, s.strings.PlainHint)

	for {
		text, err := readMessage(in)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(out, s.strings.Goodbye)
				return nil
			}
			return errors.Wrap(err, "read input")
		}

		before := s.ctrl.Len()
		if !s.ctrl.Submit(text) {
			continue
		}
		in.AppendHistory(text)

		if err := s.ctrl.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(out, s.strings.Goodbye)
				return nil
			}
			return err
		}
		for _, turn := range repliesSince(s.ctrl.Transcript(), before) {
			fmt.Fprintln(out, format(turn.Content))
		}
	}
}

// readMessage reads one message, joining lines that end in a backslash.
func readMessage(in LineReader) (string, error) {
	var lines []string
	prompt := replPrompt

	for {
		line, err := in.Prompt(prompt)
		if err != nil {
			return "", err
		}
		if strings.HasSuffix(line, continuationMarker) {
			lines = append(lines, strings.TrimSuffix(line, continuationMarker))
			prompt = replContinuePrompt
			continue
		}
		lines = append(lines, line)
		return strings.Join(lines, "\n"), nil
	}
}

// repliesSince returns the assistant turns appended after index before.
func repliesSince(turns []model.Turn, before int) []model.Turn {
	if before > len(turns) {
		return nil
	}
	var replies []model.Turn
	for _, turn := range turns[before:] {
		if turn.Role == model.RoleAssistant {
			replies = append(replies, turn)
		}
	}
	return replies
}
