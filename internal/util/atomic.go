// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds the small shared helpers of the ragchat TUI:
// crash-safe file writes for exports and config, and display-width
// string truncation for the status bar.
package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile writes data so the target is never seen half-written:
// a temp file in the target's directory is written, fsynced, chmodded,
// then renamed over the target. Transcript exports and config saves go
// through here; after a crash either the old or the new file exists in
// full. Parent directories are created as needed.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	// The temp file must live on the same filesystem as the target or
	// the rename is not atomic.
	tmp, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if err := writeAndSync(tmp, data); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", abs, err)
	}
	return nil
}

// writeAndSync writes data, forces it to disk, and closes the file.
func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}
