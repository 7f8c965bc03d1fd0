// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the ragchat TUI.
//
// This file contains the Update function and all message handlers.
package chat

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/docs"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/ui/components"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TurnOpenedMsg:
		return m.handleTurnOpened(msg)

	case TurnRawMsg:
		return m.handleTurnRaw(msg)

	case StreamTickMsg:
		return m.handleStreamTick()

	case TurnFinalMsg:
		return m.handleTurnFinal(msg)

	case TurnFailedMsg:
		return m.handleTurnFailed(msg)

	case TurnCanceledMsg:
		return m.handleTurnCanceled()

	case CitationDetailMsg:
		return m.handleCitationDetail(msg)

	case DocCountMsg:
		if msg.Err == nil {
			m.docCount = msg.Count
			m.statusBar.DocCount = msg.Count
			m.welcome.SetDocCount(msg.Count)
		}
		return m, nil

	case AttachResultMsg:
		return m.handleAttachResults(msg)

	case InboxUploadedMsg:
		if msg.Err != nil {
			m.statusHint = "inbox upload failed: " + msg.Err.Error()
		} else {
			m.statusHint = "uploaded " + msg.Path
		}
		return m, tea.Batch(statusExpireCmd(), docCountCmd(m.docsMgr))

	case StatusExpireMsg:
		m.statusHint = ""
		return m, nil

	case ClearConversationMsg:
		m.conversation.ClearHistory()
		m.closeDetail()
		m.updateViewport()
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.statusHint = "export failed: " + msg.Err.Error()
		} else {
			m.statusHint = "exported to " + msg.Path
			m.sessionMgr.MarkSaved()
		}
		return m, statusExpireCmd()

	case ErrorMsg:
		m.lastError = &msg
		m.state = StateError
		return m, nil

	case ErrorDismissMsg:
		m.lastError = nil
		m.state = StateReady
		return m, m.input.Focus()

	case session.TickMsg:
		return m, m.sessionMgr.OnTick()

	case session.IdleWarningMsg:
		m.statusHint = "session idle, closing in " + session.FormatDuration(msg.Left)
		return m, nil

	case session.IdleQuitMsg:
		return m, tea.Quit

	case session.AutosaveMsg:
		if m.sessionMgr.HasUnsaved() && !m.conversation.IsEmpty() {
			return m, autosaveCmd(m.conversation)
		}
		return m, nil
	}

	// Everything else feeds the animated components.
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.spinner, cmd = m.spinner.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.theme.SetSize(msg.Width, msg.Height)

	// Reserve rows for the input area and the status bar.
	viewportHeight := msg.Height - inputAreaHeight - statusBarHeight
	if viewportHeight < 4 {
		viewportHeight = 4
	}

	m.viewport.Width = msg.Width
	m.viewport.Height = viewportHeight
	m.ready = true

	m.input.SetWidth(msg.Width)
	m.statusBar.SetWidth(msg.Width)
	m.welcome.SetSize(msg.Width, viewportHeight)
	if m.detail != nil {
		m.detail.SetWidth(msg.Width)
	}

	m.updateViewport()
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.sessionMgr.Touch()

	// Error state captures everything until dismissed.
	if m.state == StateError {
		switch msg.String() {
		case "esc", "enter":
			m.lastError = nil
			m.state = StateReady
			return m, m.input.Focus()
		case "ctrl+q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+q":
		return m, tea.Quit

	case "ctrl+c", "esc":
		if m.state == StateStreaming {
			m.abort.stop()
			return m, nil
		}
		if m.detail != nil {
			m.closeDetail()
			m.updateViewport()
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case "ctrl+l":
		m.conversation.ClearHistory()
		m.closeDetail()
		m.updateViewport()
		return m, nil

	case "ctrl+h":
		m.showHelp = !m.showHelp
		return m, nil

	case "enter":
		if m.state == StateStreaming {
			return m, nil
		}
		return m.handleSubmit()

	case "up":
		m.viewport.LineUp(1)
		return m, nil
	case "down":
		m.viewport.LineDown(1)
		return m, nil
	case "pgup", "ctrl+u":
		m.viewport.HalfViewUp()
		return m, nil
	case "pgdown", "ctrl+d":
		m.viewport.HalfViewDown()
		return m, nil
	case "home":
		m.viewport.GotoTop()
		return m, nil
	case "end":
		m.viewport.GotoBottom()
		return m, nil

	case "tab":
		if m.detail != nil {
			return m.selectNextRank()
		}
	}

	// Digit keys select a source by rank while the latest reply has
	// resolved citations and nothing is being typed. Otherwise digits
	// are ordinary input.
	if m.state == StateReady && m.input.Value() == "" {
		if last := m.lastAssistantMessage(); last != nil && last.HasCitations {
			if r := digitRank(msg.String()); r >= 0 {
				if r == 0 {
					m.closeDetail()
					m.updateViewport()
					return m, nil
				}
				return m.selectRank(r)
			}
		}
	}

	// Everything else goes to the input field.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// digitRank maps a single digit key to a rank; -1 for any other key.
func digitRank(key string) int {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return -1
	}
	return int(key[0] - '0')
}

// =============================================================================
// SUBMIT
// =============================================================================

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	if strings.HasPrefix(content, "/") {
		m.input.Reset()
		return m.handleCommand(content)
	}

	m.input.Reset()
	m.closeDetail()

	files := m.pendingFiles
	m.pendingFiles = nil
	if len(files) > 0 {
		m.conversation.AddUserMessageWithFiles(content, files)
	} else {
		m.conversation.AddUserMessage(content)
	}
	m.sessionMgr.MarkUnsaved()

	m.state = StateStreaming
	m.turnStart = time.Now()
	m.streamBuf.Reset()
	m.updateViewport()
	m.viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.abort.arm(cancel)

	cmds := []tea.Cmd{m.spinner.Start(), streamTickCmd()}

	if len(files) > 0 {
		cmds = append(cmds, m.attachThenStartCmd(ctx, content, files))
	} else {
		m.turn.Start(ctx, backend.NewChatRequest(m.chatID, content, nil))
	}

	return m, tea.Batch(cmds...)
}

// attachThenStartCmd uploads the queued files, then starts the turn
// with the resulting refs attached. Runs off the event loop; attach
// outcomes come back as AttachResultMsg.
func (m *Model) attachThenStartCmd(ctx context.Context, content string, paths []string) tea.Cmd {
	turn := m.turn
	mgr := m.docsMgr
	chatID := m.chatID

	return func() tea.Msg {
		results := mgr.AttachFiles(ctx, paths)
		turn.Start(ctx, backend.NewChatRequest(chatID, content, docs.Refs(results)))
		return AttachResultMsg{Results: results}
	}
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

func (m Model) handleTurnOpened(TurnOpenedMsg) (tea.Model, tea.Cmd) {
	m.conversation.AddAssistantMessage()
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleTurnRaw(msg TurnRawMsg) (tea.Model, tea.Cmd) {
	m.streamBuf.Write(msg.Text)
	if msg.IsFirst {
		m.spinner.Stop()
	}
	return m, nil
}

func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}

	if snapshot, ok := m.streamBuf.Flush(); ok {
		m.conversation.SetRawOnLast(snapshot)
		m.updateViewport()
		m.viewport.GotoBottom()
	}
	return m, streamTickCmd()
}

func (m Model) handleTurnFinal(msg TurnFinalMsg) (tea.Model, tea.Cmd) {
	m.conversation.FinalizeLast(msg.Result)
	if last := m.lastAssistantMessage(); last != nil && msg.Stats != nil {
		msg.Stats.Apply(last)
	}

	m.finishTurn()
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, m.input.Focus()
}

func (m Model) handleTurnFailed(msg TurnFailedMsg) (tea.Model, tea.Cmd) {
	m.flushPartial()
	m.conversation.FailLast()
	m.finishTurn()

	err := NewErrorMsg("Request failed", msg.Err.Error())
	m.lastError = &err
	m.state = StateError

	m.updateViewport()
	return m, nil
}

func (m Model) handleTurnCanceled() (tea.Model, tea.Cmd) {
	m.flushPartial()
	m.conversation.FailLast()
	m.finishTurn()
	m.statusHint = "canceled"

	m.updateViewport()
	return m, tea.Batch(statusExpireCmd(), m.input.Focus())
}

// flushPartial renders whatever raw text arrived before the turn ended.
func (m *Model) flushPartial() {
	if snapshot, ok := m.streamBuf.ForceFlush(); ok {
		m.conversation.SetRawOnLast(snapshot)
	}
}

// finishTurn resets per-turn state back to ready.
func (m *Model) finishTurn() {
	m.state = StateReady
	m.spinner.Stop()
	m.abort.stop()
	m.streamBuf.Reset()
}

// =============================================================================
// CITATION SELECTION
// =============================================================================

// selectRank opens the detail panel for the given display rank of the
// latest reply. Records whose excerpt was not carried inline resolve
// through the turn session, fetching on demand when needed.
func (m Model) selectRank(rank int) (tea.Model, tea.Cmd) {
	last := m.lastAssistantMessage()
	if last == nil || !last.HasCitations {
		return m, nil
	}

	c, ok := last.Citations.FindRank(rank)
	if !ok {
		return m, nil
	}

	m.selectedRank = rank

	if c.Content != "" {
		m.detail = components.NewCitationPanel(c, m.theme)
		m.detail.SetWidth(m.width)
		m.updateViewport()
		return m, nil
	}

	// Reference-only record: show the panel once the detail arrives.
	m.lookupPending = c.ID
	m.updateViewport()
	return m, lookupDetailCmd(m.turn.Session(), c.ID)
}

// selectNextRank cycles the selection through the latest reply's ranks.
func (m Model) selectNextRank() (tea.Model, tea.Cmd) {
	last := m.lastAssistantMessage()
	if last == nil {
		return m, nil
	}

	ranked := last.Citations.ByRank()
	if len(ranked) == 0 {
		return m, nil
	}

	next := ranked[0].Rank
	for i, c := range ranked {
		if c.Rank == m.selectedRank && i+1 < len(ranked) {
			next = ranked[i+1].Rank
			break
		}
	}
	return m.selectRank(next)
}

func (m Model) handleCitationDetail(msg CitationDetailMsg) (tea.Model, tea.Cmd) {
	if msg.ID != m.lookupPending {
		return m, nil // stale lookup, selection moved on
	}
	m.lookupPending = ""

	if msg.OK {
		m.detail = components.NewCitationPanel(msg.Citation, m.theme)
	} else {
		m.detail = components.NewDegradedPanel(msg.ID, m.theme)
	}
	m.detail.SetWidth(m.width)
	m.updateViewport()
	return m, nil
}

// closeDetail dismisses the source panel and clears the selection.
func (m *Model) closeDetail() {
	m.detail = nil
	m.selectedRank = 0
	m.lookupPending = ""
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

func (m Model) handleAttachResults(msg AttachResultMsg) (tea.Model, tea.Cmd) {
	var failed []string
	for _, r := range msg.Results {
		if r.Err != nil {
			failed = append(failed, r.Path+": "+r.Err.Error())
		}
	}

	if len(failed) > 0 {
		m.conversation.AddSystemMessage(
			"Some attachments were not sent:\n" + strings.Join(failed, "\n"))
		m.updateViewport()
	}
	return m, nil
}

// =============================================================================
// VIEWPORT
// =============================================================================

// updateViewport re-renders the conversation into the viewport.
func (m *Model) updateViewport() {
	list := components.NewMessageList(m.theme)
	list.SetWidth(m.viewport.Width)
	list.ShowStats = m.cfg.UI.ShowStats
	list.SelectedRank = m.selectedRank
	list.SetMessages(m.conversation.GetHistory())

	content := list.View()

	if last := m.lastAssistantMessage(); last != nil && last.HasCitations &&
		m.cfg.UI.ShowSources && m.state == StateReady {
		sl := components.NewSourceList(last.Citations, m.theme)
		sl.SelectedRank = m.selectedRank
		sl.SetWidth(m.viewport.Width)
		if v := sl.View(); v != "" {
			content += "\n\n" + v
		}
	}

	m.viewport.SetContent(content)
}

// =============================================================================
// COMMANDS (tea.Cmd constructors)
// =============================================================================

// docCountCmd fetches the backend document count.
func docCountCmd(mgr *docs.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		list, err := mgr.List(ctx)
		if err != nil {
			return DocCountMsg{Err: err}
		}
		return DocCountMsg{Count: len(list)}
	}
}

// statusExpireCmd clears the status hint after a few seconds.
func statusExpireCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return StatusExpireMsg{}
	})
}

// layout constants: rows reserved around the viewport.
const (
	inputAreaHeight = 4
	statusBarHeight = 1
)

// currentConnState maps the chat state onto the status bar indicator.
func (m Model) currentConnState() components.ConnState {
	switch m.state {
	case StateStreaming:
		return components.ConnStreaming
	case StateError:
		return components.ConnError
	default:
		return components.ConnReady
	}
}
