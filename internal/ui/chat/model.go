// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the ragchat TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/docs"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/ui/components"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a response
	StateError                  // Showing an error
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool // viewport sized at least once

	// Conversation
	conversation *model.Conversation
	chatID       string // backend chat session id, one per TUI run

	// Turn execution
	turn      *TurnRunner
	abort     *turnAbort // pointer so Bubble Tea model copies share one mutex
	streamBuf *StreamingBuffer
	turnStart time.Time

	// Services
	cfg     *config.Config
	docsMgr *docs.Manager

	// Session housekeeping (idle timeout, autosave)
	sessionMgr *session.Housekeeper

	// Files queued by /attach for the next question
	pendingFiles []string

	// UI components
	viewport  viewport.Model
	input     *components.InputArea
	statusBar *components.StatusBar
	welcome   components.Welcome
	spinner   components.Spinner

	// Key bindings
	keyMap KeyMap

	// Citation selection
	selectedRank  int                       // 0 = no selection
	detail        *components.CitationPanel // open detail panel, nil when closed
	lookupPending string                    // citation id awaiting CitationDetailMsg

	// Error state
	lastError *ErrorMsg

	// Status
	docCount   int
	statusHint string
	version    string

	// Help overlay
	showHelp bool
}

// New creates a new chat model. The turn runner must have its program
// attached (TurnRunner.SetProgram) before the first question is sent.
func New(theme *styles.Theme, cfg *config.Config, docsMgr *docs.Manager, turn *TurnRunner, version string) Model {
	vp := viewport.New(80, 20)
	vp.SetContent("")

	input := components.NewInputArea(theme)
	input.Focus()

	statusBar := components.NewStatusBar(theme)
	statusBar.ServerURL = cfg.Server.BaseURL

	welcome := components.NewWelcome(theme)
	welcome.SetVersion(version)
	welcome.SetServerURL(cfg.Server.BaseURL)

	sessionMgr := session.NewHousekeeper(session.Housekeeping{
		IdleAfter:  time.Duration(cfg.Session.IdleTimeoutMins) * time.Minute,
		WarnBefore: time.Duration(cfg.Session.IdleWarningMins) * time.Minute,
		FlushEvery: time.Duration(cfg.Session.AutosaveSecs) * time.Second,
	})

	return Model{
		state:        StateReady,
		theme:        theme,
		conversation: model.NewConversation(),
		chatID:       uuid.NewString(),
		turn:         turn,
		abort:        &turnAbort{},
		streamBuf:    NewStreamingBuffer(),
		cfg:          cfg,
		docsMgr:      docsMgr,
		sessionMgr:   sessionMgr,
		viewport:     vp,
		input:        input,
		statusBar:    statusBar,
		welcome:      welcome,
		spinner:      components.NewRetrievingSpinner(),
		keyMap:       DefaultKeyMap(),
		version:      version,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Focus(),
		docCountCmd(m.docsMgr),
		m.sessionMgr.Tick(),
	)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Conversation exposes the conversation for export surfaces.
func (m Model) Conversation() *model.Conversation {
	return m.conversation
}

// State returns the current chat state.
func (m Model) State() State {
	return m.state
}

// helpContext derives the help-filter context from the current state.
func (m Model) helpContext() HelpContext {
	switch {
	case m.state == StateError:
		return ContextError
	case m.state == StateStreaming:
		return ContextStreaming
	case m.detail != nil:
		return ContextSources
	default:
		return ContextInput
	}
}

// lastAssistantMessage returns the newest assistant message, nil when
// there is none yet.
func (m Model) lastAssistantMessage() *model.Message {
	return m.conversation.GetLastAssistantMessage()
}
