// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for ragchat.
//
// This package implements the non-TUI commands of the ragchat client:
// one-shot questions, document management for the retrieval index, and
// configuration. The default invocation (no subcommand) starts the TUI.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - ArgParser: Unified flag/positional parsing for subcommands
//   - JSONResponse: Standardized JSON output envelope
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    cli.HandleAsk(args)
//	case cli.CmdDocs:
//	    cli.HandleDocsExit(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - ask: Single question with cited answer
//   - docs: List, upload, delete, and auto-upload documents
//   - config: Configuration management
//   - version: Version information
//
// Most commands support a --json flag for scripted use.
package cli
