// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the ragchat TUI.
//
// This file implements conversation export: the whole conversation as
// Markdown, with each reply's citation markers kept inline and its
// sources listed underneath.
package chat

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// ExportMarkdown renders the conversation as a Markdown document.
// Assistant replies keep their plain-text [n] markers; the sources
// backing each reply follow it as a list.
func ExportMarkdown(conv *model.Conversation) string {
	var b strings.Builder

	b.WriteString("# " + conv.GetTitle() + "\n\n")
	b.WriteString("Exported " + time.Now().Format("2006-01-02 15:04") + "\n")

	for _, msg := range conv.GetHistory() {
		b.WriteString("\n---\n\n")

		switch msg.Role {
		case model.RoleUser:
			b.WriteString("## You\n\n")
			b.WriteString(msg.GetDisplayContent() + "\n")
			if len(msg.AttachedFiles) > 0 {
				b.WriteString("\nAttached: " + strings.Join(msg.AttachedFiles, ", ") + "\n")
			}

		case model.RoleAssistant:
			b.WriteString("## Assistant\n\n")
			b.WriteString(msg.GetDisplayContent() + "\n")
			if msg.HasCitations {
				b.WriteString("\nSources:\n")
				for _, c := range msg.Citations.ByRank() {
					b.WriteString("- [" + strconv.Itoa(c.Rank) + "] " +
						c.DisplayFilename() + " (" + c.DisplaySimilarity() + ")\n")
				}
			}

		case model.RoleSystem:
			b.WriteString("> " + strings.ReplaceAll(msg.GetDisplayContent(), "\n", "\n> ") + "\n")
		}
	}

	return b.String()
}

// exportCmd writes the conversation to path, defaulting to a timestamped
// file in the working directory.
func exportCmd(conv *model.Conversation, path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			path = "ragchat-export-" + time.Now().Format("20060102-150405") + ".md"
		}

		if err := util.AtomicWriteFile(path, []byte(ExportMarkdown(conv)), 0o644); err != nil {
			return ExportDoneMsg{Path: path, Err: err}
		}
		return ExportDoneMsg{Path: path}
	}
}

// autosaveCmd writes the conversation to the config directory so an
// idle-timeout exit does not lose the transcript.
func autosaveCmd(conv *model.Conversation) tea.Cmd {
	return func() tea.Msg {
		dir, err := config.ConfigDir()
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return ExportDoneMsg{Err: err}
		}

		path := filepath.Join(dir, "autosave.md")
		if err := util.AtomicWriteFile(path, []byte(ExportMarkdown(conv)), 0o600); err != nil {
			return ExportDoneMsg{Path: path, Err: err}
		}
		return ExportDoneMsg{Path: path}
	}
}
