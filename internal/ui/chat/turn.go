// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view of the ragchat TUI.
//
// This file bridges the blocking turn runner onto the Bubble Tea event
// loop. A turn runs on its own goroutine; stream callbacks forward
// progress into the loop with program.Send, so the Update function
// stays single-threaded.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/citation"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/session"
)

// TurnRunner executes chat turns on background goroutines and forwards
// their progress to the Bubble Tea program. The program reference is
// set after tea.NewProgram, so access is mutex-protected.
type TurnRunner struct {
	mu      sync.Mutex
	program *tea.Program
	runner  *session.Runner
	sess    *session.Session
}

// NewTurnRunner creates a turn runner over the given session runner.
func NewTurnRunner(runner *session.Runner) *TurnRunner {
	return &TurnRunner{runner: runner}
}

// SetProgram attaches the Bubble Tea program. Must be called before the
// first Start; the program only exists after the model does, so this
// cannot happen at construction.
func (t *TurnRunner) SetProgram(p *tea.Program) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.program = p
}

// Session returns the most recent turn's session, or nil before the
// first turn. Detail views resolve citations against it.
func (t *TurnRunner) Session() *session.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sess
}

// send forwards a message to the event loop. Safe to call from any
// goroutine; a nil program drops the message.
func (t *TurnRunner) send(msg tea.Msg) {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Start runs one turn on its own goroutine. Progress arrives in the
// event loop as TurnOpenedMsg, TurnRawMsg snapshots, and finally one of
// TurnFinalMsg, TurnFailedMsg, or TurnCanceledMsg.
func (t *TurnRunner) Start(ctx context.Context, req backend.ChatRequest) {
	go func() {
		stats := model.NewStatistics()
		first := true

		cb := session.Callbacks{
			OnOpen: func() {
				t.send(TurnOpenedMsg{StartTime: time.Now()})
			},
			OnRaw: func(text string) {
				if first {
					stats.RecordFirstToken()
				}
				t.send(TurnRawMsg{Text: text, IsFirst: first})
				first = false
			},
			OnFinal: func(res citation.Result) {
				stats.Finalize()
				t.send(TurnFinalMsg{Result: res, Stats: stats})
			},
			OnFailure: func(err error) {
				t.send(TurnFailedMsg{Err: err})
			},
		}

		sess, err := t.runner.RunTurn(ctx, req, cb)

		t.mu.Lock()
		t.sess = sess
		t.mu.Unlock()

		// The failure callback already reported real errors;
		// cancellation is reported here because the runner
		// deliberately keeps it out of the failure path.
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			t.send(TurnCanceledMsg{})
		}
	}()
}

// =============================================================================
// CITATION DETAIL LOOKUP
// =============================================================================

// CitationDetailMsg delivers an on-demand citation detail fetch.
type CitationDetailMsg struct {
	ID       string
	Citation citation.Citation
	OK       bool
}

// lookupDetailCmd resolves a citation's full record, fetching on demand
// when the turn's set only carried the reference. A nil session or a
// total miss degrades rather than erroring.
func lookupDetailCmd(sess *session.Session, id string) tea.Cmd {
	return func() tea.Msg {
		if sess == nil {
			return CitationDetailMsg{ID: id}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, ok := sess.Lookup(ctx, id)
		return CitationDetailMsg{ID: id, Citation: c, OK: ok}
	}
}
