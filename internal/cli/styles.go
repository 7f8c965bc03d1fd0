// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for ragchat.
package cli

import "github.com/charmbracelet/lipgloss"

func init() {
	// Honors NO_COLOR, FORCE_COLOR, and piped output before any
	// command renders a styled string.
	lipgloss.SetColorProfile(GetColorProfile())
}

// Shared styles so ask, docs, and config output stays consistent.
var (
	// TitleStyle heads a command's output block.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	// LabelStyle is the left column of label/value pairs (config show).
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(20)

	// ValueStyle is the right column of label/value pairs.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// SuccessStyle marks completed uploads and deletions.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	// ErrorStyle marks failures.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// WarningStyle marks degraded results, like an answer with no sources.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	// DimStyle carries secondary detail: sizes, timings, hints.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	// SeparatorStyle draws the rule between answer and sources.
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// InfoStyle carries neutral progress messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))
)
