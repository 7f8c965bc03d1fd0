// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/citation"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

func annotatedMessage(t *testing.T) *model.Message {
	t.Helper()

	c := citation.Citation{
		ID:              "doc-1",
		Rank:            1,
		Filename:        "manual.pdf",
		SimilarityScore: 0.87,
		Content:         "The retry interval defaults to thirty seconds.",
	}

	msg := model.NewAssistantMessage()
	msg.SetRaw("streaming text")
	msg.FinalizeAnnotated(citation.Result{
		Markup:       "According to the manual " + citation.Render(c) + " retries back off.",
		Citations:    citation.Set{c.ID: c},
		HasCitations: true,
	})
	return msg
}

// =============================================================================
// MESSAGE BUBBLE TESTS
// =============================================================================

func TestNewMessageBubble(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewUserMessage("hello")

	b := NewMessageBubble(msg, theme)

	if b.Width != 80 {
		t.Errorf("NewMessageBubble() width = %d, want 80", b.Width)
	}
	if !b.ShowTimestamp {
		t.Error("NewMessageBubble() should show timestamps by default")
	}
}

func TestNewMessageBubbleNilMessage(t *testing.T) {
	theme := styles.NewTheme()

	b := NewMessageBubble(nil, theme)
	if b.Message == nil {
		t.Fatal("NewMessageBubble(nil) should substitute an empty message")
	}

	// Must not panic
	_ = b.View()
}

func TestUserBubbleView(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewUserMessage("What is the retry interval?")

	b := NewMessageBubble(msg, theme)
	view := b.View()

	if !strings.Contains(view, "retry interval") {
		t.Errorf("View() should contain message content, got %q", view)
	}
	if !strings.Contains(view, "you") {
		t.Error("View() should contain the role indicator")
	}
}

func TestUserBubbleAttachedFiles(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewUserMessageWithFiles("summarize these", []string{"a.pdf", "b.txt"})

	b := NewMessageBubble(msg, theme)
	view := b.View()

	if !strings.Contains(view, "+2 file(s)") {
		t.Errorf("View() should show the attachment badge, got %q", view)
	}
}

func TestAssistantBubbleStreaming(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewAssistantMessage()
	msg.SetRaw("partial answer")

	b := NewMessageBubble(msg, theme)
	if !b.Streaming {
		t.Error("bubble for a streaming message should be in streaming mode")
	}

	view := b.View()
	if !strings.Contains(view, "partial answer") {
		t.Errorf("View() should contain streamed text, got %q", view)
	}
}

func TestAssistantBubbleFailed(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewAssistantMessage()
	msg.SetRaw("half an ans")
	msg.Fail()

	b := NewMessageBubble(msg, theme)
	view := b.View()

	if !strings.Contains(view, "failed") {
		t.Errorf("View() of a failed message should carry the failed badge, got %q", view)
	}
	if !strings.Contains(view, "half an ans") {
		t.Error("View() should keep partial text visible after failure")
	}
}

func TestAssistantBubbleSourceBadge(t *testing.T) {
	theme := styles.NewTheme()
	msg := annotatedMessage(t)

	b := NewMessageBubble(msg, theme)
	view := b.View()

	if !strings.Contains(view, "1 source") {
		t.Errorf("View() should show the source count badge, got %q", view)
	}
	if !strings.Contains(view, "[1]") {
		t.Errorf("View() should contain the citation label, got %q", view)
	}
}

func TestStyleMarkersLeavesUnresolvedAlone(t *testing.T) {
	theme := styles.NewTheme()
	msg := annotatedMessage(t)

	b := NewMessageBubble(msg, theme)

	// [9] has no backing citation; it is ordinary bracketed text.
	got := b.styleMarkers("see [9] for details")
	if got != "see [9] for details" {
		t.Errorf("styleMarkers() altered an unresolved label: %q", got)
	}

	// [1] resolves; the label text survives styling either way.
	got = b.styleMarkers("see [1] for details")
	if !strings.Contains(got, "[1]") {
		t.Errorf("styleMarkers() lost the resolved label: %q", got)
	}
}

func TestSystemBubbleView(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewSystemMessage("Conversation cleared")

	b := NewMessageBubble(msg, theme)
	view := b.View()

	if !strings.Contains(view, "Conversation cleared") {
		t.Errorf("View() should contain system text, got %q", view)
	}
}

// =============================================================================
// MESSAGE LIST TESTS
// =============================================================================

func TestMessageListEmpty(t *testing.T) {
	theme := styles.NewTheme()
	ml := NewMessageList(theme)

	view := ml.View()
	if !strings.Contains(view, "No messages yet") {
		t.Errorf("empty list should render the empty state, got %q", view)
	}
}

func TestMessageListView(t *testing.T) {
	theme := styles.NewTheme()
	ml := NewMessageList(theme)
	ml.SetWidth(100)
	ml.SetMessages([]*model.Message{
		model.NewUserMessage("first question"),
		annotatedMessage(t),
	})

	view := ml.View()
	if !strings.Contains(view, "first question") {
		t.Error("View() should contain the user message")
	}
	if !strings.Contains(view, "[1]") {
		t.Error("View() should contain the assistant citation label")
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"NoWrap", "short line", 20, "short line"},
		{"SimpleWrap", "one two three four", 9, "one two\nthree\nfour"},
		{"ZeroWidth", "anything goes", 0, "anything goes"},
		{"PreservesNewlines", "a\nb", 10, "a\nb"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := wordWrap(tc.text, tc.width)
			if got != tc.want {
				t.Errorf("wordWrap(%q, %d) = %q, want %q", tc.text, tc.width, got, tc.want)
			}
		})
	}
}

func TestMaxLineWidth(t *testing.T) {
	if got := maxLineWidth("ab\nabcd\na"); got != 4 {
		t.Errorf("maxLineWidth() = %d, want 4", got)
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
		want string
	}{
		{"Morning", time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC), "9:05 AM"},
		{"Noon", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), "12:00 PM"},
		{"Midnight", time.Date(2025, 3, 1, 0, 30, 0, 0, time.UTC), "12:30 AM"},
		{"Evening", time.Date(2025, 3, 1, 21, 45, 0, 0, time.UTC), "9:45 PM"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatTime(tc.time); got != tc.want {
				t.Errorf("formatTime() = %q, want %q", got, tc.want)
			}
		})
	}
}
