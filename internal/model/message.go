// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/citation"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content is the raw reply text, sentinel block already removed for
	// completed assistant messages.
	Content string `json:"content"`

	// Markup is the citation-annotated form of Content, set once when an
	// assistant message completes. Empty while streaming.
	Markup string `json:"markup,omitempty"`

	// Citations is the retrieval set backing this message's markers.
	Citations citation.Set `json:"citations,omitempty"`

	// HasCitations reports whether any marker in Content resolved.
	HasCitations bool `json:"has_citations,omitempty"`

	// AttachedFiles names the files sent alongside a user message.
	AttachedFiles []string `json:"attached_files,omitempty"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	IsStreaming   bool            `json:"-"`
	Failed        bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	// Performance metrics (for assistant messages)
	TTFT          time.Duration `json:"ttft_ns,omitempty"`
	TotalDuration time.Duration `json:"total_duration_ns,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewUserMessageWithFiles creates a user message carrying attachment names.
func NewUserMessageWithFiles(content string, files []string) *Message {
	msg := NewUserMessage(content)
	msg.AttachedFiles = files
	return msg
}

// NewAssistantMessage creates a streaming assistant placeholder. Content
// stays empty until tokens arrive or the stream finalizes.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// SetRaw replaces the streaming buffer with the full accumulated raw
// text. The stream republishes the whole buffer per delta, so this is a
// replace, not an append.
func (m *Message) SetRaw(text string) {
	if !m.IsStreaming {
		return
	}
	m.streamContent.Reset()
	m.streamContent.WriteString(text)
}

// AppendToken appends one delta to a streaming message.
func (m *Message) AppendToken(token string) {
	if m.IsStreaming {
		m.streamContent.WriteString(token)
	}
}

// FinalizeAnnotated completes streaming with the processed result. The
// message becomes immutable display state: plain text for copy/export,
// markup for rendering, citations for detail views.
func (m *Message) FinalizeAnnotated(res citation.Result) {
	m.Content = citation.StripMarkup(res.Markup)
	m.Markup = res.Markup
	m.Citations = res.Citations
	m.HasCitations = res.HasCitations
	m.streamContent.Reset()
	m.IsStreaming = false
}

// Fail marks a streaming message as failed, keeping whatever raw text
// already arrived visible.
func (m *Message) Fail() {
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
	m.Failed = true
}

// GetDisplayContent returns the content to display (streaming or final).
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.GetDisplayContent()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// SourceCount returns the number of distinct sources backing this
// message, for the "N sources" badge.
func (m *Message) SourceCount() int {
	return len(m.Citations)
}

// FormatStats returns a formatted timing line for assistant messages.
func (m *Message) FormatStats() string {
	if m.Role != RoleAssistant || m.TotalDuration == 0 {
		return ""
	}
	return fmt.Sprintf("%s | first token %dms",
		formatSeconds(m.TotalDuration.Seconds()), m.TTFT.Milliseconds())
}

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics tracks timing for one assistant turn.
type Statistics struct {
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	TTFT          time.Duration
	TotalDuration time.Duration
}

// NewStatistics creates a new Statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// RecordFirstToken records when the first token was received.
func (s *Statistics) RecordFirstToken() {
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
}

// Finalize computes the final statistics.
func (s *Statistics) Finalize() {
	s.EndTime = time.Now()
	s.TotalDuration = s.EndTime.Sub(s.StartTime)
}

// Apply copies the derived metrics onto an assistant message.
func (s *Statistics) Apply(m *Message) {
	m.TTFT = s.TTFT
	m.TotalDuration = s.TotalDuration
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}

// formatSeconds renders a duration in seconds as "340ms" or "2.5s".
func formatSeconds(seconds float64) string {
	if seconds < 1 {
		return fmt.Sprintf("%dms", int(seconds*1000))
	}
	return fmt.Sprintf("%.1fs", seconds)
}
