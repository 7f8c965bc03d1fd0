// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the ragchat TUI.
//
// This file defines all Bubble Tea message types used by the chat view.
// Messages are organized into the following categories:
//   - Turn lifecycle: open, raw snapshots, final result, failure
//   - Rendering: streaming and spinner ticks
//   - Documents: counts, uploads, inbox watcher events
//   - Conversation: clear and export
//   - Errors: display and dismissal
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/jeranaias/ragchat-tui/internal/citation"
	"github.com/jeranaias/ragchat-tui/internal/docs"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/ui/components"
)

// =============================================================================
// TURN LIFECYCLE MESSAGES
// =============================================================================

// TurnOpenedMsg signals that the assistant placeholder for the current
// turn should become visible. Sent once per turn, before any text.
type TurnOpenedMsg struct {
	StartTime time.Time
}

// TurnRawMsg delivers the cumulative raw text received so far. Each
// snapshot replaces the previous one; the view re-renders on the next
// stream tick, not on every snapshot.
type TurnRawMsg struct {
	Text    string
	IsFirst bool
}

// TurnFinalMsg delivers the one processed result at turn completion.
// After this message the reply is immutable.
type TurnFinalMsg struct {
	Result citation.Result
	Stats  *model.Statistics
}

// TurnFailedMsg signals that the turn failed after all fallbacks.
// Partial raw text stays visible on the failed message.
type TurnFailedMsg struct {
	Err error
}

// TurnCanceledMsg signals that the user canceled the turn. Delivered
// text stays visible; no error is shown.
type TurnCanceledMsg struct{}

// =============================================================================
// RENDERING TICKS
// =============================================================================

// StreamTickMsg is sent at 30fps while streaming to batch raw-text
// renders. This keeps the viewport from re-rendering per token.
type StreamTickMsg struct {
	Time time.Time
}

// NewStreamTickMsg creates a streaming tick message.
func NewStreamTickMsg() StreamTickMsg {
	return StreamTickMsg{Time: time.Now()}
}

// StatusExpireMsg clears a temporary status-bar hint.
type StatusExpireMsg struct{}

// =============================================================================
// DOCUMENT MESSAGES
// =============================================================================

// DocCountMsg delivers the backend document count for the status bar.
type DocCountMsg struct {
	Count int
	Err   error
}

// AttachResultMsg delivers the outcome of attaching files to a question.
type AttachResultMsg struct {
	Results []docs.AttachResult
}

// InboxUploadedMsg reports a document picked up by the inbox watcher.
type InboxUploadedMsg struct {
	Path string
	Err  error
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ClearConversationMsg clears the current conversation.
type ClearConversationMsg struct{}

// ExportDoneMsg confirms a conversation export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// ERROR MESSAGES
// =============================================================================

// ErrorMsg displays an error to the user.
type ErrorMsg struct {
	Title       string
	Message     string
	Suggestions []string
}

// ErrorDismissMsg dismisses the current error.
type ErrorDismissMsg struct{}

// NewErrorMsg creates an error message with suggestions matched from
// the failure text.
func NewErrorMsg(title, message string) ErrorMsg {
	return ErrorMsg{
		Title:       title,
		Message:     message,
		Suggestions: components.SuggestFor(message),
	}
}
