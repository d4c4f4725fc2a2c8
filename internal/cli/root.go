// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - Root command, global flags and session bootstrap.
//
// Every front-end (TUI, line-mode REPL, ask) goes through openSession:
// config, then logging, then the completion backend, then one
// conversation controller.

package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/juwamardott/chatbot/internal/cloud"
	"github.com/juwamardott/chatbot/internal/config"
	"github.com/juwamardott/chatbot/internal/conversation"
	"github.com/juwamardott/chatbot/internal/locale"
	"github.com/juwamardott/chatbot/internal/logging"
)

// closeGrace bounds how long shutdown waits for an in-flight request.
const closeGrace = 2 * time.Second

// =============================================================================
// ENVIRONMENT
// =============================================================================

// LineReader reads one line of terminal input at a time.
// *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// Environment is everything the commands take from the process. Tests
// replace the parts they need.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive reports whether the full-screen TUI can run.
	Interactive func() bool
	// StdoutTTY reports whether replies may be rendered as markdown.
	StdoutTTY func() bool
	// NewCompleter builds the completion backend for a loaded config.
	NewCompleter func(cfg *config.Config, logger zerolog.Logger) (conversation.Completer, error)
	// NewLineReader opens the line editor for the plain REPL.
	NewLineReader func() LineReader
}

// DefaultEnvironment wires the real terminal and the cloud client.
func DefaultEnvironment() Environment {
	return Environment{
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Interactive:  IsInteractive,
		StdoutTTY:    IsStdoutTTY,
		NewCompleter: newCloudCompleter,
		NewLineReader: func() LineReader {
			line := liner.NewLiner()
			line.SetCtrlCAborts(true)
			return line
		},
	}
}

func (e Environment) withDefaults() Environment {
	d := DefaultEnvironment()
	if e.Stdin == nil {
		e.Stdin = d.Stdin
	}
	if e.Stdout == nil {
		e.Stdout = d.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = d.Stderr
	}
	if e.Interactive == nil {
		e.Interactive = d.Interactive
	}
	if e.StdoutTTY == nil {
		e.StdoutTTY = d.StdoutTTY
	}
	if e.NewCompleter == nil {
		e.NewCompleter = d.NewCompleter
	}
	if e.NewLineReader == nil {
		e.NewLineReader = d.NewLineReader
	}
	return e
}

// newCloudCompleter builds the hosted completion client.
func newCloudCompleter(cfg *config.Config, logger zerolog.Logger) (conversation.Completer, error) {
	client, err := cloud.NewClient(cfg.APIKey)
	if err != nil {
		return nil, err
	}
	client = client.WithLogger(logging.Component(logger, "cloud"))

	logger.Info().
		Str("model", client.Model()).
		Str("base_url", client.BaseURL()).
		Str("key", client.KeyFingerprint()).
		Msg("cloud client ready")
	return client, nil
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFile    string
	lang       string
}

// apply copies the flags that were set over cfg.
func (f *globalFlags) apply(cfg *config.Config) {
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
	if f.lang != "" {
		cfg.UI.Language = f.lang
	}
}

// NewRootCommand builds the chatbot command tree. Running it without a
// subcommand starts a chat.
func NewRootCommand(env Environment) *cobra.Command {
	env = env.withDefaults()
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "Chat with a hosted language model from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), env, flags, false)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.chatbot/config.toml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	pf.StringVar(&flags.logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&flags.lang, "lang", "", "interface language: id, en")

	root.SetIn(env.Stdin)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Reason: err.Error()}
	})

	root.AddCommand(
		newChatCommand(env, flags),
		newAskCommand(env, flags),
		newConfigCommand(env, flags),
		newVersionCommand(env),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	lipgloss.SetColorProfile(GetColorProfile())

	env := DefaultEnvironment()
	root := NewRootCommand(env)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		DisplayError(env.Stderr, err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// SESSION BOOTSTRAP
// =============================================================================

// session is one running conversation and the resources behind it.
type session struct {
	cfg     *config.Config
	logger  zerolog.Logger
	strings locale.Strings
	ctrl    *conversation.Controller
	closer  io.Closer
}

// loadConfig reads the config file and environment, then applies flags.
// A config is returned alongside validation errors so it can be shown.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromPath(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if cfg == nil {
		return nil, err
	}

	flags.apply(cfg)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// openSession builds a controller ready to accept submissions. In TUI mode
// logs go to a file because the program owns the terminal; otherwise they
// go to stderr at warn unless --log-level or --log-file says otherwise.
func openSession(env Environment, flags *globalFlags, tui bool) (*session, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: env.Stderr,
		File:   cfg.Log.File,
	}
	if tui && logCfg.File == "" {
		logCfg.File = config.DefaultLogFile()
	}
	if !tui && flags.logLevel == "" && logCfg.File == "" {
		logCfg.Level = "warn"
	}
	if !tui && logCfg.File == "" {
		logCfg.Pretty = true
	}

	logger, closer, err := logging.New(logCfg)
	if err != nil {
		return nil, errors.Wrap(err, "set up logging")
	}

	strs := locale.For(cfg.UI.Language)
	completer, err := env.NewCompleter(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, errors.Wrap(err, "create completion client")
	}

	ctrl, err := conversation.New(conversation.Options{
		Completer:    completer,
		FallbackText: strs.Fallback,
		Logger:       &logger,
	})
	if err != nil {
		closer.Close()
		return nil, err
	}

	logger.Debug().
		Str("session_id", ctrl.ID()).
		Str("language", strs.Tag.String()).
		Bool("tui", tui).
		Msg("session started")

	return &session{
		cfg:     cfg,
		logger:  logger,
		strings: strs,
		ctrl:    ctrl,
		closer:  closer,
	}, nil
}

// Close shuts the controller down, giving an in-flight request a short
// grace period, and releases the log file.
func (s *session) Close() {
	done := make(chan struct{})
	go func() {
		s.ctrl.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(closeGrace):
		s.logger.Warn().Msg("request still in flight at exit")
	}

	if err := s.closer.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("close log file")
	}
}
