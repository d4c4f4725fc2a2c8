// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides structured logging for chatbot.
//
// The TUI owns the terminal, so interactive sessions log to a file while
// line-mode commands log to stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ServiceName is attached to every log event.
const ServiceName = "chatbot"

// Config holds logger configuration.
type Config struct {
	Level  string    // debug, info, warn, error, disabled
	Pretty bool      // console formatting instead of JSON lines
	Output io.Writer // used when File is empty; defaults to stderr
	File   string    // append to this path when set
}

// ParseLevel converts a level name to a zerolog level. Unknown or empty names
// map to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New creates a structured logger. The returned closer releases the log
// file and is a no-op when logging to a writer.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	var (
		output io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.Output != nil {
		output = cfg.Output
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), closer, errors.Wrapf(err, "create log directory for %s", cfg.File)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), closer, errors.Wrapf(err, "open log file %s", cfg.File)
		}
		output = f
		closer = f
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.File != "",
		}
	}

	logger := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	return logger, closer, nil
}

// Component returns a child logger tagged with a component name.
func Component(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str("component", name).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
