// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the ragchat TUI.

This package contains a collection of styled, interactive components built on
top of the Bubble Tea and Lip Gloss libraries. Each component accepts a
*styles.Theme so the whole application renders with one consistent palette.

# Core Components

## Input Components

InputArea (input.go) - Styled single-line question input with character counter.

## Display Components

MessageBubble (message.go) - Styled chat bubbles for user, assistant, and
system messages, including citation marker highlighting and streaming state.
CitationPanel / SourceList (citations.go) - Detail panel for a selected
citation and the compact per-message source listing.
StatusBar (statusbar.go) - Bottom status bar with connection state, backend
host, document count, and contextual hints.
Welcome (welcome.go) - First-run welcome screen with the ASCII logo.

## Progress and Feedback

Spinner (spinner.go) - Animated spinner with retrieval and upload presets.
ErrorBox (errorbox.go) - Bordered error display with recovery suggestions.

# Theme Integration

All components take a theme at construction:

	theme := styles.NewThemeForMode(cfg.UI.Theme)
	bar := components.NewStatusBar(theme)
	bar.SetWidth(80)
	view := bar.View()

# Bubble Tea Integration

Stateful components implement the usual trio:

	type Component interface {
		Init() tea.Cmd
		Update(tea.Msg) (Component, tea.Cmd)
		View() string
	}

# Helper Functions

Shared helpers live in helpers.go, currently just fmtCount for
thousands-separated counts.
*/
package components
