// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for ragchat.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ConfirmationOptions says how a destructive command may be confirmed.
// Only `docs delete` is destructive today.
type ConfirmationOptions struct {
	// ConfirmFlag skips the prompt (--confirm was passed).
	ConfirmFlag bool
	// JSONMode forbids interactive prompts; --confirm becomes mandatory.
	JSONMode bool
}

// RequireConfirmationWithOpts resolves whether a destructive action may
// proceed. With --confirm it proceeds straight away. In JSON mode or
// with stdin not a terminal there is nobody to ask, so the flag is
// required and its absence is an error. Otherwise the user gets a
// [y/N] prompt naming the action.
func RequireConfirmationWithOpts(action string, opts ConfirmationOptions) (bool, error) {
	if opts.ConfirmFlag {
		return true, nil
	}
	if opts.JSONMode {
		return false, fmt.Errorf("confirmation required: use --confirm flag for destructive actions in JSON mode")
	}
	if !IsTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --confirm flag")
	}

	fmt.Println()
	fmt.Printf("Are you sure you want to %s? [y/N]: ", action)

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(input))
	return answer == "y" || answer == "yes", nil
}
