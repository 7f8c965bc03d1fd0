// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/ragchat-tui/internal/citation"
	"github.com/jeranaias/ragchat-tui/internal/model"
)

func runCommand(t *testing.T, m Model, input string) Model {
	t.Helper()
	updated, _ := m.handleCommand(input)
	return updated.(Model)
}

func TestCommandUnknown(t *testing.T) {
	m := newTestModel(t)

	m = runCommand(t, m, "/frobnicate")

	last := m.conversation.GetLastMessage()
	if last == nil || last.Role != model.RoleSystem {
		t.Fatal("unknown command should add a system message")
	}
	if !strings.Contains(last.GetDisplayContent(), "Unknown command /frobnicate") {
		t.Errorf("system message = %q", last.GetDisplayContent())
	}
}

func TestCommandClear(t *testing.T) {
	m := newTestModel(t)
	m.conversation.AddUserMessage("a question")

	m = runCommand(t, m, "/clear")

	if !m.conversation.IsEmpty() {
		t.Error("/clear should empty the conversation")
	}
	if m.statusHint == "" {
		t.Error("/clear should set a status hint")
	}
}

func TestCommandSourcesWithoutCitations(t *testing.T) {
	m := newTestModel(t)

	m = runCommand(t, m, "/sources")

	last := m.conversation.GetLastMessage()
	if !strings.Contains(last.GetDisplayContent(), "no sources") {
		t.Errorf("system message = %q", last.GetDisplayContent())
	}
}

func TestCommandSourcesListsRanks(t *testing.T) {
	m := finalizedModel(t)

	m = runCommand(t, m, "/sources")

	last := m.conversation.GetLastMessage()
	content := last.GetDisplayContent()
	if !strings.Contains(content, "[1]") || !strings.Contains(content, "faq.md") {
		t.Errorf("/sources output = %q", content)
	}
	if !strings.Contains(content, "80%") {
		t.Errorf("/sources should show similarity, got %q", content)
	}
}

func TestCommandAttachRejectsMissingFile(t *testing.T) {
	m := newTestModel(t)

	m = runCommand(t, m, "/attach /nonexistent/path.txt")

	if len(m.pendingFiles) != 0 {
		t.Error("missing file should not be queued")
	}
	last := m.conversation.GetLastMessage()
	if !strings.Contains(last.GetDisplayContent(), "Rejected") {
		t.Errorf("system message = %q", last.GetDisplayContent())
	}
}

func TestCommandAttachQueuesValidFile(t *testing.T) {
	m := newTestModel(t)

	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	m = runCommand(t, m, "/attach "+path)

	if len(m.pendingFiles) != 1 || m.pendingFiles[0] != path {
		t.Errorf("pendingFiles = %v", m.pendingFiles)
	}
	if !strings.Contains(m.statusHint, "queued") {
		t.Errorf("statusHint = %q", m.statusHint)
	}
}

func TestCommandAttachUsage(t *testing.T) {
	m := newTestModel(t)

	m = runCommand(t, m, "/attach")

	last := m.conversation.GetLastMessage()
	if !strings.Contains(last.GetDisplayContent(), "Usage") {
		t.Errorf("system message = %q", last.GetDisplayContent())
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	conv := model.NewConversation()
	conv.AddUserMessage("what is the retry interval?")

	asst := conv.AddAssistantMessage()
	c := citation.Citation{ID: "doc-1", Rank: 1, Filename: "faq.md", SimilarityScore: 0.8}
	asst.FinalizeAnnotated(citation.Result{
		Markup:       "Thirty seconds " + citation.Render(c),
		Citations:    citation.Set{"doc-1": c},
		HasCitations: true,
	})
	conv.AddSystemMessage("conversation cleared")

	md := ExportMarkdown(conv)

	if !strings.Contains(md, "## You") || !strings.Contains(md, "## Assistant") {
		t.Error("export should carry role headings")
	}
	if !strings.Contains(md, "Thirty seconds [1]") {
		t.Errorf("assistant text should keep its marker, got:\n%s", md)
	}
	if !strings.Contains(md, "- [1] faq.md (80%)") {
		t.Errorf("export should list sources, got:\n%s", md)
	}
	if !strings.Contains(md, "> conversation cleared") {
		t.Error("system messages export as blockquotes")
	}
}

func TestExportCmdWritesFile(t *testing.T) {
	conv := model.NewConversation()
	conv.AddUserMessage("hello")

	path := filepath.Join(t.TempDir(), "out.md")
	msg := exportCmd(conv, path)()

	done, ok := msg.(ExportDoneMsg)
	if !ok {
		t.Fatalf("exportCmd returned %T", msg)
	}
	if done.Err != nil {
		t.Fatalf("export failed: %v", done.Err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Error("exported file should contain the conversation")
	}
}

// =============================================================================
// KEY MAP TESTS
// =============================================================================

func TestDefaultKeyMapHelp(t *testing.T) {
	km := DefaultKeyMap()

	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp should not be empty")
	}
}

func TestGetHelpItemsForContext(t *testing.T) {
	for _, ctx := range []HelpContext{ContextInput, ContextStreaming, ContextSources, ContextError} {
		items := GetHelpItemsForContext(ctx)
		if len(items) == 0 {
			t.Errorf("context %s has no help items", ctx)
		}
		for _, item := range items {
			found := false
			for _, c := range item.Contexts {
				if c == ctx {
					found = true
				}
			}
			if !found {
				t.Errorf("item %q leaked into context %s", item.Key, ctx)
			}
		}
	}
}

func TestGetHelpItemsByCategory(t *testing.T) {
	grouped := GetHelpItemsByCategory(ContextInput)
	if len(grouped[CategoryNavigation]) == 0 {
		t.Error("input context should have navigation items")
	}
	if len(grouped[CategorySources]) == 0 {
		t.Error("input context should include source selection keys")
	}
}

func TestDigitRank(t *testing.T) {
	tests := []struct {
		key  string
		rank int
	}{
		{"0", 0},
		{"1", 1},
		{"9", 9},
		{"a", -1},
		{"10", -1},
		{"", -1},
	}
	for _, tc := range tests {
		if got := digitRank(tc.key); got != tc.rank {
			t.Errorf("digitRank(%q) = %d, want %d", tc.key, got, tc.rank)
		}
	}
}
