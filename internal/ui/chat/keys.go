// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the ragchat TUI.
//
// This file defines keyboard bindings and shortcuts for the chat view,
// along with context-filtered help text generation.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat view.
// Each binding supports multiple keys and includes help text.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Clear    key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat view.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("Home", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "go to bottom"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send question"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("Esc/C-c", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h", "?"),
			key.WithHelp("C-h", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear conversation"),
		),
	}
}

// ShortHelp returns the key bindings to show in the one-line help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.Help, k.Quit}
}

// FullHelp returns the key bindings for the full help view, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Home, k.End},
		{k.Submit, k.Cancel, k.Clear},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// HELP TEXT DATA
// =============================================================================

// HelpContext represents the UI context for filtering help items.
// Follows lazygit's pattern of context-aware keybinding display.
type HelpContext string

const (
	// ContextInput is the default state, typing a question
	ContextInput HelpContext = "input"
	// ContextStreaming is when receiving a streaming response
	ContextStreaming HelpContext = "streaming"
	// ContextSources is when the source detail panel is open
	ContextSources HelpContext = "sources"
	// ContextError is when an error is displayed
	ContextError HelpContext = "error"
)

// HelpCategory represents action type grouping for help display.
type HelpCategory string

const (
	CategoryNavigation HelpCategory = "Navigation"
	CategoryActions    HelpCategory = "Actions"
	CategoryCommands   HelpCategory = "Commands"
	CategorySources    HelpCategory = "Sources"
)

// HelpItem is a single help entry with key, description, and the
// contexts where the binding is active.
type HelpItem struct {
	Key      string
	Desc     string
	Contexts []HelpContext
	Category HelpCategory
}

// GetHelpItems returns all help items for the help overlay.
func GetHelpItems() []HelpItem {
	all := []HelpContext{ContextInput, ContextStreaming, ContextSources, ContextError}
	navContexts := []HelpContext{ContextInput, ContextStreaming, ContextSources}
	inputOnly := []HelpContext{ContextInput}
	streamingOnly := []HelpContext{ContextStreaming}
	sourcesOnly := []HelpContext{ContextSources}
	errorOnly := []HelpContext{ContextError}

	return []HelpItem{
		{"up/down", "Scroll", navContexts, CategoryNavigation},
		{"PgUp/C-u", "Page up", navContexts, CategoryNavigation},
		{"PgDn/C-d", "Page down", navContexts, CategoryNavigation},
		{"Home/End", "Go to top / bottom", navContexts, CategoryNavigation},

		{"Enter", "Send question", inputOnly, CategoryActions},
		{"Esc/C-c", "Cancel streaming", streamingOnly, CategoryActions},
		{"C-l", "Clear conversation", inputOnly, CategoryActions},
		{"C-q", "Quit", all, CategoryActions},

		{"/command", "Run slash command (/help lists them)", inputOnly, CategoryCommands},

		{"1-9", "Open source detail by rank", []HelpContext{ContextInput, ContextSources}, CategorySources},
		{"Tab", "Next source", sourcesOnly, CategorySources},
		{"Esc/0", "Close source panel", sourcesOnly, CategorySources},

		{"Esc/Enter", "Dismiss error", errorOnly, CategoryActions},
	}
}

// GetHelpItemsForContext returns help items filtered for the given
// context, following lazygit's pattern where only currently-active
// keybindings are shown.
func GetHelpItemsForContext(ctx HelpContext) []HelpItem {
	all := GetHelpItems()
	var filtered []HelpItem

	for _, item := range all {
		for _, itemCtx := range item.Contexts {
			if itemCtx == ctx {
				filtered = append(filtered, item)
				break
			}
		}
	}

	return filtered
}

// GetHelpItemsByCategory returns help items grouped by category for the
// given context.
func GetHelpItemsByCategory(ctx HelpContext) map[HelpCategory][]HelpItem {
	items := GetHelpItemsForContext(ctx)
	grouped := make(map[HelpCategory][]HelpItem)

	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}

	return grouped
}

// GetCategoryOrder returns the preferred display order for categories.
func GetCategoryOrder() []HelpCategory {
	return []HelpCategory{
		CategoryNavigation,
		CategoryActions,
		CategorySources,
		CategoryCommands,
	}
}

// GetContextDisplayName returns a human-readable name for a context.
func GetContextDisplayName(ctx HelpContext) string {
	switch ctx {
	case ContextInput:
		return "Input"
	case ContextStreaming:
		return "Streaming"
	case ContextSources:
		return "Sources"
	case ContextError:
		return "Error"
	default:
		return string(ctx)
	}
}
