// ragchat - a terminal client for a RAG chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/cli"
	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/docs"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/ui/chat"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdDocs:
		cli.HandleDocsExit(args)
	case cli.CmdConfig:
		if err := cli.HandleConfig(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(cli.GetExitCode(err))
		}
	case cli.CmdVersion:
		cli.HandleVersionWithJSON(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// runTUI starts the interactive chat interface.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.Default()
	}

	// CLI flags override file and environment configuration.
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}
	if args.NoStream {
		cfg.Server.Streaming = false
	}

	client := backend.NewClient(cfg.Server.BaseURL).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.Server.MaxRetries)

	docsMgr := docs.NewManager(client, cfg.Upload)
	runner := chat.NewTurnRunner(session.NewRunner(client, cfg.Server.Streaming))

	theme := styles.NewThemeForMode(cfg.UI.Theme)
	m := chat.New(theme, cfg, docsMgr, runner, Version)

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Turn results arrive from a goroutine, so the runner needs the
	// program handle before the first question is sent.
	runner.SetProgram(p)

	// Files dropped into the inbox directory upload in the background
	// while the TUI runs.
	if cfg.Upload.InboxDir != "" {
		watcher, werr := docs.NewInboxWatcher(docsMgr, cfg.Upload.InboxDir, 2*time.Second, cfg.Upload.RatePerMinute)
		if werr != nil {
			fmt.Fprintf(os.Stderr, "Warning: inbox watch disabled: %v\n", werr)
		} else {
			defer watcher.Close()
			go func() {
				if werr := watcher.Watch(); werr != nil {
					p.Send(chat.InboxUploadedMsg{Path: cfg.Upload.InboxDir, Err: werr})
				}
			}()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running ragchat: %v\n", err)
		os.Exit(1)
	}
}
