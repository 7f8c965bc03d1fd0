// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ragchat TUI.
package components

import (
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// ERROR BOX COMPONENT
// =============================================================================

// ErrorBox renders a failure with a title, the message, and recovery
// suggestions. Dismissed with Esc or Enter; the suggestion list keeps
// the user moving instead of staring at a stack of text.
type ErrorBox struct {
	Title       string
	Message     string
	Suggestions []string
	Width       int
	theme       *styles.Theme
}

// NewErrorBox creates an error box.
func NewErrorBox(title, message string, theme *styles.Theme) *ErrorBox {
	return &ErrorBox{
		Title:   title,
		Message: message,
		Width:   80,
		theme:   theme,
	}
}

// WithSuggestions attaches recovery suggestions.
func (e *ErrorBox) WithSuggestions(suggestions ...string) *ErrorBox {
	e.Suggestions = suggestions
	return e
}

// SetWidth sets the box width.
func (e *ErrorBox) SetWidth(width int) {
	e.Width = width
}

// View renders the error box.
func (e *ErrorBox) View() string {
	innerWidth := e.Width - 10
	if innerWidth < 30 {
		innerWidth = 30
	}

	title := e.theme.ErrorTitle.Render(styles.StatusIndicators.Error + " " + e.Title)
	message := e.theme.ErrorMessage.Render(wordWrap(e.Message, innerWidth))

	parts := []string{title, "", message}

	if len(e.Suggestions) > 0 {
		parts = append(parts, "")
		for _, s := range e.Suggestions {
			parts = append(parts, e.theme.ErrorSuggestion.Render("- "+s))
		}
	}

	parts = append(parts, "",
		e.theme.ErrorTip.Render("Press Esc to dismiss"))

	content := strings.Join(parts, "\n")
	return e.theme.ErrorBox.Width(minInt(innerWidth+6, e.Width-2)).Render(content)
}

// SuggestFor maps common failure text to recovery suggestions. Matching
// is substring-based on the lowered message; unknown errors get the
// generic retry hint.
func SuggestFor(message string) []string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "dial"):
		return []string{
			"Check that the backend is running",
			"Verify the server URL: ragchat config show",
		}
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "deadline exceeded"):
		return []string{
			"The backend may be under load; try again",
			"Raise the limit: ragchat config set timeout_secs 120",
		}
	case strings.Contains(lower, "too large"),
		strings.Contains(lower, "unsupported"):
		return []string{
			"Check the file type and size limits: ragchat config show",
		}
	default:
		return []string{"Retry the question", "Check backend logs if it persists"}
	}
}
