// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the ragchat TUI.
//
// This file contains the View function and the layout composition:
// conversation viewport, source detail panel, error box, input area,
// and status bar, top to bottom.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/ui/components"
)

// View renders the chat view.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var sections []string

	if m.conversation.IsEmpty() && m.state == StateReady {
		sections = append(sections, m.welcome.View())
	} else {
		sections = append(sections, m.viewport.View())
	}

	if m.detail != nil {
		sections = append(sections, m.detail.View())
	} else if m.lookupPending != "" {
		sections = append(sections, m.theme.ThinkingText.Render("  loading source..."))
	}

	if m.state == StateError && m.lastError != nil {
		box := components.NewErrorBox(m.lastError.Title, m.lastError.Message, m.theme).
			WithSuggestions(m.lastError.Suggestions...)
		box.SetWidth(m.width)
		sections = append(sections, box.View())
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	}

	if m.state == StateStreaming && m.spinner.IsActive() {
		sections = append(sections, m.spinner.View())
	}

	sections = append(sections, m.input.View())
	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatusBar fills the status bar from the current model state.
func (m Model) renderStatusBar() string {
	m.statusBar.State = m.currentConnState()
	m.statusBar.DocCount = m.docCount
	m.statusBar.MsgCount = m.conversation.MessageCount()
	m.statusBar.Hint = m.statusHint
	return m.statusBar.View()
}

// renderHelp renders the context-filtered help overlay.
func (m Model) renderHelp() string {
	ctx := m.helpContext()
	grouped := GetHelpItemsByCategory(ctx)

	var b strings.Builder
	b.WriteString(m.theme.StatsLabel.Render("Keys - " + GetContextDisplayName(ctx)))

	for _, cat := range GetCategoryOrder() {
		items := grouped[cat]
		if len(items) == 0 {
			continue
		}
		b.WriteString("\n" + m.theme.ShortcutDesc.Render(string(cat)))
		for _, item := range items {
			b.WriteString("\n  " + m.theme.ShortcutKey.Render(padKey(item.Key)) + " " + item.Desc)
		}
	}

	return lipgloss.NewStyle().
		Padding(0, 2).
		Render(b.String())
}

// padKey left-aligns help keys into a fixed column.
func padKey(key string) string {
	const col = 12
	if len(key) >= col {
		return key
	}
	return key + strings.Repeat(" ", col-len(key))
}
