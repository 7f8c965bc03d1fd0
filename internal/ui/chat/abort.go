// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// turnAbort holds the context cancel of the in-flight turn. Update runs
// on the Bubble Tea goroutine while turn completion lands from the
// runner goroutine, so the cancel func sits behind a mutex. The chat
// model keeps a pointer: Bubble Tea copies the model on every update,
// and a copied mutex would tear.
type turnAbort struct {
	mu sync.Mutex
	fn context.CancelFunc
}

// arm stores the cancel for the turn that just started, cancelling any
// leftover from a previous turn first.
func (a *turnAbort) arm(fn context.CancelFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fn != nil {
		a.fn()
	}
	a.fn = fn
}

// stop cancels the in-flight turn, if any. Idempotent; also used at
// turn teardown so contexts never leak.
func (a *turnAbort) stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fn != nil {
		a.fn()
		a.fn = nil
	}
}
