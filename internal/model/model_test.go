// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/citation"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewAssistantMessageStartsStreaming(t *testing.T) {
	msg := NewAssistantMessage()

	if !msg.IsStreaming {
		t.Error("assistant placeholder must start streaming")
	}
	if !msg.IsEmpty() {
		t.Error("placeholder must start empty")
	}
	if msg.Role != RoleAssistant {
		t.Errorf("expected assistant role, got %s", msg.Role)
	}
}

func TestSetRawReplacesBuffer(t *testing.T) {
	msg := NewAssistantMessage()

	msg.SetRaw("Result ")
	msg.SetRaw("Result [1]")

	if got := msg.GetDisplayContent(); got != "Result [1]" {
		t.Errorf("display content = %q, want %q (replace, not append)", got, "Result [1]")
	}
}

func TestSetRawIgnoredAfterFinalize(t *testing.T) {
	msg := NewAssistantMessage()
	msg.FinalizeAnnotated(citation.Result{Markup: "done"})

	msg.SetRaw("late delta")
	if got := msg.GetDisplayContent(); got != "done" {
		t.Errorf("completed message mutated by late delta: %q", got)
	}
}

func TestFinalizeAnnotatedMakesMessageImmutableDisplayState(t *testing.T) {
	set := citation.Set{"a": {Rank: 1, Filename: "doc.txt", SimilarityScore: 0.9, Content: "x"}}
	markup := "See " + citation.Render(citation.Citation{ID: "a", Rank: 1, Filename: "doc.txt", Content: "x"})

	msg := NewAssistantMessage()
	msg.SetRaw("See [1]")
	msg.FinalizeAnnotated(citation.Result{Markup: markup, Citations: set, HasCitations: true})

	if msg.IsStreaming {
		t.Error("finalized message still streaming")
	}
	if msg.Markup != markup {
		t.Error("markup not retained")
	}
	if msg.Content != "See [1]" {
		t.Errorf("plain content = %q, want spans collapsed to labels", msg.Content)
	}
	if !msg.HasCitations || msg.SourceCount() != 1 {
		t.Errorf("citation set not carried: has=%v count=%d", msg.HasCitations, msg.SourceCount())
	}
}

func TestFailKeepsDeliveredText(t *testing.T) {
	msg := NewAssistantMessage()
	msg.SetRaw("partial answer")
	msg.Fail()

	if msg.IsStreaming || !msg.Failed {
		t.Errorf("expected failed terminal state, streaming=%v failed=%v", msg.IsStreaming, msg.Failed)
	}
	if msg.Content != "partial answer" {
		t.Errorf("delivered text lost on failure: %q", msg.Content)
	}
}

func TestPreviewTruncatesOnRunes(t *testing.T) {
	msg := NewUserMessage("héllo wörld, this is a long message")

	got := msg.Preview(10)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if len([]rune(got)) != 10 {
		t.Errorf("expected 10 runes, got %d (%q)", len([]rune(got)), got)
	}
}

func TestFormatStats(t *testing.T) {
	msg := NewAssistantMessage()
	msg.FinalizeAnnotated(citation.Result{Markup: "x"})
	msg.TTFT = 234 * time.Millisecond
	msg.TotalDuration = 2500 * time.Millisecond

	got := msg.FormatStats()
	if !strings.Contains(got, "2.5s") || !strings.Contains(got, "234ms") {
		t.Errorf("unexpected stats line: %q", got)
	}

	if NewUserMessage("x").FormatStats() != "" {
		t.Error("user messages have no stats line")
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversationTitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddSystemMessage("connected")
	conv.AddUserMessage("How do I reset the device?")

	if got := conv.GetTitle(); got != "How do I reset the device?" {
		t.Errorf("title = %q", got)
	}
}

func TestConversationStreamingLifecycle(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("question")
	reply := conv.AddAssistantMessage()

	conv.SetRawOnLast("Answer ")
	conv.SetRawOnLast("Answer [1]")
	conv.FinalizeLast(citation.Result{Markup: "Answer done"})

	if reply.IsStreaming {
		t.Error("FinalizeLast did not complete the placeholder")
	}
	if reply.Content != "Answer done" {
		t.Errorf("content = %q", reply.Content)
	}
	if conv.GetLastAssistantMessage() != reply {
		t.Error("last assistant lookup mismatch")
	}
}

func TestConversationFailLast(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("question")
	reply := conv.AddAssistantMessage()
	conv.SetRawOnLast("partial")
	conv.FailLast()

	if !reply.Failed || reply.Content != "partial" {
		t.Errorf("failed=%v content=%q", reply.Failed, reply.Content)
	}
}

func TestConversationIDsAreUnique(t *testing.T) {
	a, b := NewConversation(), NewConversation()
	if a.ID == b.ID {
		t.Errorf("conversation IDs collided: %s", a.ID)
	}
	if !strings.HasPrefix(a.ID, "chat_") {
		t.Errorf("unexpected ID shape: %s", a.ID)
	}
}

func TestPruneKeepsSystemMessages(t *testing.T) {
	conv := NewConversation()
	conv.AddSystemMessage("pinned")
	for i := 0; i <= MaxMessages; i++ {
		conv.AddUserMessage("filler")
	}

	if conv.Messages[0].Role != RoleSystem {
		t.Error("system message pruned away")
	}
	if conv.MessageCount() != MaxMessages+1 {
		t.Errorf("count = %d, want %d", conv.MessageCount(), MaxMessages+1)
	}
}
