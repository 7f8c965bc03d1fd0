// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives one chat turn against the backend.
//
// This file implements the turn runner: streaming first, with a
// buffered-POST fallback when the stream cannot be established, the way
// the browser clients fall back from EventSource to a plain POST.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/citation"
)

// Runner executes chat turns sequentially against one backend client.
// Each turn gets a fresh Session, so citation state never leaks across
// turns.
type Runner struct {
	client    *backend.Client
	logger    citation.Logger
	streaming bool
}

// NewRunner creates a turn runner. streaming selects the SSE path with
// buffered fallback; when false every turn uses the buffered endpoint.
func NewRunner(client *backend.Client, streaming bool) *Runner {
	return &Runner{client: client, streaming: streaming}
}

// WithLogger routes citation diagnostics to the given logger.
func (r *Runner) WithLogger(l citation.Logger) *Runner {
	r.logger = l
	return r
}

// RunTurn executes one turn. The returned session carries the turn's
// citation store for detail views. On stream failure the buffered path
// is tried before the failure is reported; context cancellation is
// never retried.
func (r *Runner) RunTurn(ctx context.Context, req backend.ChatRequest, cb Callbacks) (*Session, error) {
	sess := New(r.client)
	if r.logger != nil {
		sess.WithLogger(r.logger)
	}

	if !r.streaming {
		return sess, r.runBuffered(ctx, sess, req, cb)
	}

	// Suppress the session's own failure callback: a stream failure is
	// only reported to the owner after the fallback also failed. Track
	// whether the placeholder was already announced so the fallback
	// does not announce it twice.
	opened := false
	streamCb := cb
	streamCb.OnFailure = nil
	streamCb.OnOpen = func() {
		opened = true
		if cb.OnOpen != nil {
			cb.OnOpen()
		}
	}

	err := sess.Run(ctx, req, streamCb)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return sess, err
	}

	fallbackCb := cb
	if opened {
		fallbackCb.OnOpen = nil
	}
	fallbackErr := r.runBuffered(ctx, sess, req, fallbackCb)
	if fallbackErr == nil {
		return sess, nil
	}
	return sess, fmt.Errorf("streaming failed (%v); buffered fallback failed: %w", err, fallbackErr)
}

// runBuffered performs the buffered POST path and routes the processed
// result through the same callbacks the streaming path uses.
func (r *Runner) runBuffered(ctx context.Context, sess *Session, req backend.ChatRequest, cb Callbacks) error {
	if cb.OnOpen != nil {
		cb.OnOpen()
	}

	body, err := r.client.Chat(ctx, req)
	if err != nil {
		if cb.OnFailure != nil && !errors.Is(err, context.Canceled) {
			cb.OnFailure(err)
		}
		return err
	}

	res := sess.proc.Process(body)

	sess.mu.Lock()
	sess.store.Replace(res.Citations)
	sess.buf.Reset()
	sess.buf.WriteString(body)
	sess.state = StateCompleted
	sess.mu.Unlock()

	if cb.OnFinal != nil {
		cb.OnFinal(res)
	}
	return nil
}
