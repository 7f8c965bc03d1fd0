// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs manages the server-side document collection.
//
// This file implements the inbox watcher: a directory watched for new
// files, which are uploaded into the retrieval index after a debounce
// window, rate-limited so a bulk drop does not hammer the backend.
package docs

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// =============================================================================
// INBOX WATCHER
// =============================================================================

// InboxWatcher uploads files dropped into a directory. Writes are
// debounced so a file still being copied is not uploaded half-finished.
type InboxWatcher struct {
	mgr      *Manager
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	limiter  *rate.Limiter
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]time.Time // File path -> last change time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewInboxWatcher creates a watcher over dir. ratePerMinute caps uploads
// (0 means unlimited).
func NewInboxWatcher(mgr *Manager, dir string, debounce time.Duration, ratePerMinute int) (*InboxWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if ratePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(ratePerMinute))
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &InboxWatcher{
		mgr:      mgr,
		dir:      dir,
		watcher:  watcher,
		debounce: debounce,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   log.Default(),
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// WithLogger routes watcher diagnostics to the given logger.
func (w *InboxWatcher) WithLogger(l *log.Logger) *InboxWatcher {
	w.logger = l
	return w
}

// Watch starts watching the inbox directory.
func (w *InboxWatcher) Watch() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// processEvents processes file system events.
func (w *InboxWatcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				w.handleFileChange(event.Name)
			}

			// Removed or renamed-away files are no longer uploadable.
			if event.Op&fsnotify.Remove == fsnotify.Remove ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				w.mu.Lock()
				delete(w.pending, event.Name)
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("inbox watcher error: %v", err)
		}
	}
}

// handleFileChange queues a changed file for debounced upload.
func (w *InboxWatcher) handleFileChange(path string) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}
	// Files failing the upload policy never enter the queue.
	if err := w.mgr.CheckFile(path); err != nil {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// processPending uploads pending files once their debounce window passes.
func (w *InboxWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var toProcess []string
			for path, changeTime := range w.pending {
				if now.Sub(changeTime) >= w.debounce {
					toProcess = append(toProcess, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range toProcess {
				w.upload(path)
			}
		}
	}
}

// upload ingests one settled file, honoring the rate limit.
func (w *InboxWatcher) upload(path string) {
	if err := w.limiter.Wait(w.ctx); err != nil {
		return
	}

	if err := w.mgr.UploadFile(w.ctx, path); err != nil {
		w.logger.Printf("inbox upload of %s failed: %v", filepath.Base(path), err)
		return
	}
	w.logger.Printf("inbox uploaded %s", filepath.Base(path))
}

// Close stops watching and releases resources.
func (w *InboxWatcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
