// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the ragchat TUI.
//
// This file implements the slash commands typed into the input field.
package chat

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// handleCommand dispatches a slash command. The input has already been
// cleared; unknown commands surface as a system message, not an error.
func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "/help":
		m.showHelp = !m.showHelp
		return m, nil

	case "/clear", "/new":
		m.conversation.ClearHistory()
		m.closeDetail()
		m.updateViewport()
		m.statusHint = "conversation cleared"
		return m, statusExpireCmd()

	case "/sources":
		return m.commandSources()

	case "/attach":
		return m.commandAttach(args)

	case "/export":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return m, exportCmd(m.conversation, path)

	case "/upload":
		if len(args) == 0 {
			m.conversation.AddSystemMessage("Usage: /upload <file>")
			m.updateViewport()
			return m, nil
		}
		if err := m.docsMgr.CheckFile(args[0]); err != nil {
			m.conversation.AddSystemMessage("Cannot upload " + args[0] + ": " + err.Error())
			m.updateViewport()
			return m, nil
		}
		m.statusHint = "uploading " + args[0]
		return m, uploadDocCmd(m, args[0])

	case "/docs":
		return m, docCountCmd(m.docsMgr)

	case "/quit", "/exit":
		return m, tea.Quit

	default:
		m.conversation.AddSystemMessage(
			"Unknown command " + name + ". Commands: /help /clear /sources /attach /upload /export /docs /quit")
		m.updateViewport()
		return m, nil
	}
}

// commandSources lists the latest reply's sources as a system message.
func (m Model) commandSources() (tea.Model, tea.Cmd) {
	last := m.lastAssistantMessage()
	if last == nil || !last.HasCitations {
		m.conversation.AddSystemMessage("The latest reply has no sources.")
		m.updateViewport()
		return m, nil
	}

	var b strings.Builder
	b.WriteString("Sources for the latest reply:")
	for _, c := range last.Citations.ByRank() {
		b.WriteString("\n[" + strconv.Itoa(c.Rank) + "] " +
			c.DisplayFilename() + " (" + c.DisplaySimilarity() + ")")
	}

	m.conversation.AddSystemMessage(b.String())
	m.updateViewport()
	return m, nil
}

// commandAttach queues files for the next question, checking them
// against the upload limits first so failures show up before sending.
func (m Model) commandAttach(paths []string) (tea.Model, tea.Cmd) {
	if len(paths) == 0 {
		m.conversation.AddSystemMessage("Usage: /attach <file> [file...]")
		m.updateViewport()
		return m, nil
	}

	var rejected []string
	for _, p := range paths {
		if err := m.docsMgr.CheckFile(p); err != nil {
			rejected = append(rejected, p+": "+err.Error())
			continue
		}
		m.pendingFiles = append(m.pendingFiles, p)
	}

	if len(rejected) > 0 {
		m.conversation.AddSystemMessage("Rejected:\n" + strings.Join(rejected, "\n"))
		m.updateViewport()
	}
	if n := len(m.pendingFiles); n > 0 {
		m.statusHint = strconv.Itoa(n) + " file(s) queued for next question"
		return m, statusExpireCmd()
	}
	return m, nil
}

// uploadDocCmd uploads one file into the backend's document index.
func uploadDocCmd(m Model, path string) tea.Cmd {
	mgr := m.docsMgr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := mgr.UploadFile(ctx, path); err != nil {
			return InboxUploadedMsg{Path: path, Err: err}
		}
		return InboxUploadedMsg{Path: path}
	}
}
