// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for ragchat.
//
// Command handlers return typed errors; main maps them to exit codes
// via GetExitCode so scripts can tell usage mistakes from backend
// failures.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes, stable for scripting.
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2 // bad arguments or flags
	ExitConfigError   = 3 // config file or settings problem
	ExitNetworkError  = 5 // backend unreachable
	ExitNotFoundError = 7 // document or path missing
	ExitTimeoutError  = 8
)

// CommandError wraps a failure inside a command handler with enough
// context to say which command and action broke.
type CommandError struct {
	Command string // e.g. "docs", "ask"
	Action  string // e.g. "list", "delete"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ValidationError rejects user input before anything runs.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string // a valid value, shown when helpful
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError names a document or path that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewCommandError wraps err as a CommandError.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError rejects a field value.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewValidationErrorWithExample rejects a field value and shows a valid one.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// GetExitCode maps an error to the exit code main should use. Typed
// errors decide first; untyped ones are categorized by message since
// net/http and context errors arrive wrapped as plain strings.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ExitUsageError
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ExitNotFoundError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "config"):
		return ExitConfigError
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return ExitTimeoutError
	case strings.Contains(msg, "connection"), strings.Contains(msg, "unreachable"),
		strings.Contains(msg, "dial"), strings.Contains(msg, "network"):
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}
