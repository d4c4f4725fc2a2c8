// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error handling and exit codes for the chatbot CLI.
//
// Commands always return errors; Execute prints them once and maps them
// to an exit code. Completion failures never reach this layer: the
// controller turns them into the fallback reply.

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/juwamardott/chatbot/internal/cloud"
	"github.com/juwamardott/chatbot/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "chat", "ask")
	Action  string // Action being performed (e.g., "load config")
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error.
func NewCommandError(command, action string, err error) error {
	return &CommandError{Command: command, Action: action, Err: err}
}

// UsageError marks bad arguments or flags.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var validation config.ValidateErrors
	switch {
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.Is(err, config.ErrMissingAPIKey),
		errors.Is(err, cloud.ErrNotConfigured),
		errors.As(err, &validation):
		return ExitConfigError
	default:
		return ExitGeneralError
	}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

var errorLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

// DisplayError writes err in the CLI's error format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorLabelStyle.Render("[ERROR]"), err.Error())
	if errors.Is(err, config.ErrMissingAPIKey) {
		fmt.Fprintf(w, "        export %s=<your key>\n", config.EnvAPIKey)
	}
}
