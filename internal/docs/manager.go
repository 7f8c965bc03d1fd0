// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs manages the server-side document collection: listing,
// deletion, and ingestion of new files into the retrieval index.
package docs

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/config"
)

// Manager errors.
var (
	// ErrFileTooLarge indicates the file exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrExtensionNotAllowed indicates the file type is not accepted.
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
)

// Manager wraps the backend's document endpoints with local upload
// policy: extension allow-list and size limits come from configuration.
type Manager struct {
	client      *backend.Client
	maxBytes    int64
	allowedExts map[string]bool
}

// NewManager creates a document manager with the given upload policy.
func NewManager(client *backend.Client, cfg config.UploadConfig) *Manager {
	exts := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Manager{
		client:      client,
		maxBytes:    int64(cfg.MaxFileMB) * 1024 * 1024,
		allowedExts: exts,
	}
}

// List returns the server's document collection.
func (m *Manager) List(ctx context.Context) ([]backend.Document, error) {
	return m.client.ListDocuments(ctx)
}

// Delete removes one document from the server.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.client.DeleteDocument(ctx, id)
}

// CheckFile validates a path against the upload policy without reading it.
func (m *Manager) CheckFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !m.allowedExts[ext] {
		return fmt.Errorf("%w: %s", ErrExtensionNotAllowed, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > m.maxBytes {
		return fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, filepath.Base(path), info.Size(), m.maxBytes)
	}
	return nil
}

// UploadFile ingests one local file into the retrieval index.
func (m *Manager) UploadFile(ctx context.Context, path string) error {
	if err := m.CheckFile(path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := m.client.UploadDocument(ctx, filepath.Base(path), data); err != nil {
		return fmt.Errorf("upload of %s failed: %w", filepath.Base(path), err)
	}
	return nil
}

// AttachResult reports one file's outcome from a batch attachment.
type AttachResult struct {
	Path string
	Ref  backend.FileRef
	Err  error
}

// AttachFiles uploads files for use as chat attachments, best effort:
// one file failing does not stop the rest. Results come back in input
// order; callers send the successful refs with the chat request.
func (m *Manager) AttachFiles(ctx context.Context, paths []string) []AttachResult {
	results := make([]AttachResult, 0, len(paths))

	for _, path := range paths {
		res := AttachResult{Path: path}

		if err := m.CheckFile(path); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		ref, err := m.client.UploadChatFile(ctx, filepath.Base(path), data, contentType(path))
		if err != nil {
			res.Err = err
		} else {
			res.Ref = ref
		}
		results = append(results, res)
	}

	return results
}

// Refs extracts the successful file references from a batch result.
func Refs(results []AttachResult) []backend.FileRef {
	var refs []backend.FileRef
	for _, r := range results {
		if r.Err == nil {
			refs = append(refs, r.Ref)
		}
	}
	return refs
}

// contentType guesses a MIME type from the file extension.
func contentType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
