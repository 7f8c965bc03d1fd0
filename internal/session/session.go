// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives one chat turn against the backend: the
// streaming session state machine, the buffered fallback, and citation
// detail resolution for the turn's reply.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/citation"
)

// =============================================================================
// SESSION STATE
// =============================================================================

// State is the streaming session lifecycle state.
type State int

const (
	StateIdle       State = iota // Session created, not started
	StateConnecting              // Transport opening
	StateStreaming               // Events arriving
	StateCompleted               // Final pass done, message immutable
	StateFailed                  // Transport or server failure
)

// String returns a short name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session errors.
var (
	// ErrSessionUsed indicates Run was called twice; a session drives
	// exactly one turn.
	ErrSessionUsed = errors.New("session already started")

	// ErrTruncated indicates the stream ended without a complete event.
	ErrTruncated = errors.New("stream ended before completion")
)

// Callbacks are the session's notifications to its owner. All callbacks
// fire on the goroutine running the stream, in event order; nil
// callbacks are skipped. OnRaw republishes the unprocessed accumulated
// buffer for low-latency display; OnFinal delivers the one processed
// result at completion, after which the message is immutable.
type Callbacks struct {
	OnOpen    func()
	OnRaw     func(text string)
	OnFinal   func(res citation.Result)
	OnFailure func(err error)
}

// =============================================================================
// STREAMING SESSION
// =============================================================================

// Session owns one streaming chat turn: the accumulating raw-text
// buffer, the turn's citation store, and the processor that annotates
// the final text. The buffer and citation set are mutated only from the
// session's own event handling; external readers go through the locked
// accessors.
type Session struct {
	client *backend.Client
	proc   *citation.Processor

	mu     sync.Mutex
	state  State
	buf    strings.Builder
	store  *citation.Store
	cancel context.CancelFunc
	closed bool
	cb     Callbacks
}

// New creates an idle session for one turn.
func New(client *backend.Client) *Session {
	return &Session{
		client: client,
		proc:   citation.NewProcessor(),
		store:  citation.NewStore(),
	}
}

// WithLogger routes processor diagnostics to the given logger.
func (s *Session) WithLogger(l citation.Logger) *Session {
	s.proc.WithLogger(l)
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Store exposes the turn's citation store for detail views. The store
// outlives the stream: hover lookups resolve against it after
// completion without network calls.
func (s *Session) Store() *citation.Store {
	return s.store
}

// Text returns the accumulated raw text received so far.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Run performs the streaming turn, blocking until the stream completes,
// fails, or ctx is canceled. Events are handled synchronously in
// arrival order, so the final pass is guaranteed to observe every
// preceding delta and the latest citation set. Callers typically run it
// on its own goroutine and receive progress through the callbacks.
func (s *Session) Run(ctx context.Context, req backend.ChatRequest, cb Callbacks) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionUsed
	}
	s.state = StateConnecting
	s.cb = cb
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	defer s.cancel()

	err := s.client.ChatStream(ctx, req, s.handleEvent)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return nil
	}
	if err == nil {
		err = ErrTruncated
	}
	s.state = StateFailed
	if s.closed {
		// Cancellation is cooperative, not a failure to report: the
		// transport is released and delivered content stays visible.
		return err
	}
	if cb.OnFailure != nil {
		cb.OnFailure(err)
	}
	return err
}

// Close releases the transport at any non-terminal state and stops
// further buffer mutation. Already-delivered placeholder content is
// left in place. Safe to call at any time, from any goroutine.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// handleEvent processes one stream event. Events arrive sequentially
// from the transport goroutine; the lock protects against concurrent
// reads from the owner, not against other writers.
func (s *Session) handleEvent(e backend.StreamEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	switch e.Type {
	case backend.EventOpen:
		s.state = StateStreaming
		cb := s.cb.OnOpen
		s.mu.Unlock()
		if cb != nil {
			cb()
		}

	case backend.EventCitationData:
		// Last write wins, no merge.
		s.store.Replace(e.Citations)
		s.mu.Unlock()

	case backend.EventTextChunk:
		s.buf.WriteString(e.Chunk)
		raw := s.buf.String()
		cb := s.cb.OnRaw
		s.mu.Unlock()
		if cb != nil {
			cb(raw)
		}

	case backend.EventComplete:
		res := citation.Result{
			Markup:    s.proc.ProcessDelta(s.buf.String(), s.store.Set()),
			Citations: s.store.Set(),
		}
		res.HasCitations = len(citation.SpanPattern.FindAllString(res.Markup, -1)) > 0
		s.state = StateCompleted
		cb := s.cb.OnFinal
		s.mu.Unlock()
		if cb != nil {
			cb(res)
		}

	default:
		// error events surface through ChatStream's return value.
		s.mu.Unlock()
	}
}

// =============================================================================
// CITATION DETAIL RESOLUTION
// =============================================================================

// Lookup resolves a citation record for a detail view. Records from the
// turn's citation set (or previously fetched ones) resolve without a
// network call; otherwise the on-demand endpoint is queried once and
// the result cached. The ok result is false only when every path
// failed; the caller degrades to citation.DegradedDetail.
func (s *Session) Lookup(ctx context.Context, id string) (citation.Citation, bool) {
	s.mu.Lock()
	c, ok := s.store.Get(id)
	s.mu.Unlock()
	if ok {
		return c, true
	}

	fetched, err := s.client.FetchCitation(ctx, id)
	if err != nil {
		return citation.Citation{}, false
	}

	s.mu.Lock()
	s.store.CacheFetched(id, fetched)
	s.mu.Unlock()
	return fetched, true
}

// LookupRank resolves a citation by display rank from the turn's set.
func (s *Session) LookupRank(rank int) (citation.Citation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.GetRank(rank)
}
