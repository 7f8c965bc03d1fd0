// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/citation"
	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/docs"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	cfg := config.Default()
	client := backend.NewClient(cfg.Server.BaseURL)
	docsMgr := docs.NewManager(client, cfg.Upload)
	turn := NewTurnRunner(session.NewRunner(client, false))
	theme := styles.NewTheme()

	m := New(theme, cfg, docsMgr, turn, "test")
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return sized.(Model)
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t)

	if m.State() != StateReady {
		t.Errorf("new model state = %v, want StateReady", m.State())
	}
	if !m.Conversation().IsEmpty() {
		t.Error("new model should start with an empty conversation")
	}
	if m.chatID == "" {
		t.Error("new model should carry a chat session id")
	}
}

func TestViewBeforeResize(t *testing.T) {
	cfg := config.Default()
	client := backend.NewClient(cfg.Server.BaseURL)
	docsMgr := docs.NewManager(client, cfg.Upload)
	turn := NewTurnRunner(session.NewRunner(client, false))

	m := New(styles.NewTheme(), cfg, docsMgr, turn, "test")

	// Must not panic before the first WindowSizeMsg.
	if m.View() == "" {
		t.Error("View() should render a placeholder before sizing")
	}
}

func TestViewShowsWelcomeWhenEmpty(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	if !strings.Contains(view, "documents") {
		t.Errorf("empty-conversation view should show the welcome screen, got %q", view)
	}
}

func TestTurnLifecycleUpdatesConversation(t *testing.T) {
	m := newTestModel(t)

	m.conversation.AddUserMessage("what is the retry interval?")
	m.state = StateStreaming
	m.streamBuf.SetBatchSize(1) // flush on every snapshot so the test is deterministic

	updated, _ := m.Update(TurnOpenedMsg{})
	m = updated.(Model)
	if m.conversation.MessageCount() != 2 {
		t.Fatalf("TurnOpenedMsg should add the assistant placeholder, have %d messages", m.conversation.MessageCount())
	}

	updated, _ = m.Update(TurnRawMsg{Text: "thirty seconds", IsFirst: true})
	m = updated.(Model)

	// The tick drains the snapshot buffer into the conversation.
	updated, _ = m.Update(StreamTickMsg{})
	m = updated.(Model)
	if got := m.conversation.GetLastMessage().GetDisplayContent(); got != "thirty seconds" {
		t.Errorf("after stream tick content = %q", got)
	}

	c := citation.Citation{ID: "doc-1", Rank: 1, Filename: "faq.md", SimilarityScore: 0.8, Content: "excerpt"}
	res := citation.Result{
		Markup:       "thirty seconds " + citation.Render(c),
		Citations:    citation.Set{"doc-1": c},
		HasCitations: true,
	}

	updated, _ = m.Update(TurnFinalMsg{Result: res})
	m = updated.(Model)

	if m.State() != StateReady {
		t.Errorf("state after final = %v, want StateReady", m.State())
	}
	last := m.conversation.GetLastMessage()
	if !last.HasCitations {
		t.Error("finalized message should carry citations")
	}
	if !strings.Contains(last.GetDisplayContent(), "[1]") {
		t.Errorf("finalized content should carry the [1] label, got %q", last.GetDisplayContent())
	}
}

func TestTurnFailedKeepsPartialText(t *testing.T) {
	m := newTestModel(t)

	m.conversation.AddUserMessage("q")
	m.state = StateStreaming
	updated, _ := m.Update(TurnOpenedMsg{})
	m = updated.(Model)
	updated, _ = m.Update(TurnRawMsg{Text: "partial ans", IsFirst: true})
	m = updated.(Model)

	updated, _ = m.Update(TurnFailedMsg{Err: errFake})
	m = updated.(Model)

	if m.State() != StateError {
		t.Errorf("state after failure = %v, want StateError", m.State())
	}
	last := m.conversation.GetLastMessage()
	if !last.Failed {
		t.Error("message should be marked failed")
	}
	if last.GetDisplayContent() != "partial ans" {
		t.Errorf("partial text should survive failure, got %q", last.GetDisplayContent())
	}
}

func TestErrorDismiss(t *testing.T) {
	m := newTestModel(t)
	m.state = StateError
	err := NewErrorMsg("Request failed", "connection refused")
	m.lastError = &err

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	if m.State() != StateReady {
		t.Errorf("Esc should dismiss the error, state = %v", m.State())
	}
	if m.lastError != nil {
		t.Error("lastError should be cleared")
	}
}

func TestDigitSelectsSourceRank(t *testing.T) {
	m := finalizedModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	m = updated.(Model)

	if m.selectedRank != 1 {
		t.Errorf("selectedRank = %d, want 1", m.selectedRank)
	}
	if m.detail == nil {
		t.Fatal("digit selection should open the detail panel")
	}
	if !strings.Contains(m.View(), "faq.md") {
		t.Error("detail panel should show the source filename")
	}
}

func TestEscClosesDetailPanel(t *testing.T) {
	m := finalizedModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	if m.detail != nil {
		t.Error("Esc should close the detail panel")
	}
	if m.selectedRank != 0 {
		t.Errorf("selection should clear, got rank %d", m.selectedRank)
	}
}

func TestDigitTypesIntoInputWithoutCitations(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")})
	m = updated.(Model)

	if m.input.Value() != "5" {
		t.Errorf("without citations a digit is input, got %q", m.input.Value())
	}
	if m.detail != nil {
		t.Error("no detail panel should open")
	}
}

// finalizedModel returns a model whose latest reply has one resolved
// citation at rank 1.
func finalizedModel(t *testing.T) Model {
	t.Helper()

	m := newTestModel(t)
	m.conversation.AddUserMessage("q")
	m.state = StateStreaming

	updated, _ := m.Update(TurnOpenedMsg{})
	m = updated.(Model)

	c := citation.Citation{ID: "doc-1", Rank: 1, Filename: "faq.md", SimilarityScore: 0.8, Content: "excerpt"}
	res := citation.Result{
		Markup:       "answer " + citation.Render(c),
		Citations:    citation.Set{"doc-1": c},
		HasCitations: true,
	}
	updated, _ = m.Update(TurnFinalMsg{Result: res})
	return updated.(Model)
}

var errFake = &fakeError{}

type fakeError struct{}

func (*fakeError) Error() string { return "connection refused" }

// =============================================================================
// IDLE HOUSEKEEPING WIRING
// =============================================================================

func TestHousekeeperBuiltFromConfig(t *testing.T) {
	m := newTestModel(t)

	want := time.Duration(config.Default().Session.IdleTimeoutMins) * time.Minute
	left := m.sessionMgr.TimeLeft()
	if left > want || left < want-time.Second {
		t.Errorf("idle deadline = %v, want about %v from config", left, want)
	}
}

func TestIdleQuitMsgQuitsProgram(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(session.IdleQuitMsg{})
	if cmd == nil {
		t.Fatal("IdleQuitMsg should produce a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("IdleQuitMsg should quit the program")
	}
}

func TestIdleWarningShowsCountdown(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(session.IdleWarningMsg{Left: 90 * time.Second})
	m = updated.(Model)

	if !strings.Contains(m.statusHint, "1m 30s") {
		t.Errorf("statusHint = %q, want countdown", m.statusHint)
	}
}

func TestAutosaveSkippedWhenTranscriptClean(t *testing.T) {
	m := newTestModel(t)
	m.conversation.AddUserMessage("q")

	// Nothing unsaved: the autosave request is a no-op.
	_, cmd := m.Update(session.AutosaveMsg{})
	if cmd != nil {
		t.Error("clean transcript should not autosave")
	}

	m.sessionMgr.MarkUnsaved()
	_, cmd = m.Update(session.AutosaveMsg{})
	if cmd == nil {
		t.Error("unsaved transcript should autosave")
	}
}
