// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs.go - Document management command handlers for the ragchat CLI.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: docs [subcommand]
// Short:   Manage documents in the retrieval index
// Aliases: documents
//
// Subcommands:
//   list (default)      List documents in the retrieval index
//   upload FILE...      Upload documents for indexing
//   delete ID           Delete a document from the index
//   watch [DIR]         Watch a directory and upload new files
//
// Examples:
//   ragchat docs                      List documents (default)
//   ragchat docs list --json          Listing in JSON format
//   ragchat docs upload notes.md faq.txt
//   ragchat docs delete 42            Delete with interactive prompt
//   ragchat docs delete 42 --confirm  Delete without prompting
//   ragchat docs watch ~/inbox        Auto-upload new files
//
// Flags:
//   --confirm           Skip the interactive prompt (delete)
//   --json              Output in JSON format (list)
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/docs"
)

// watchDebounce is how long a watched file must sit unchanged before
// it is uploaded. Editors and downloads write in bursts.
const watchDebounce = 2 * time.Second

// HandleDocs handles the "docs" command and its subcommands.
func HandleDocs(args Args) error {
	parser := NewArgParser(args.Raw)
	cfg := config.Global()
	mgr := docs.NewManager(newBackendClient(cfg, args), cfg.Upload)

	jsonMode := args.JSON || parser.BoolFlag("json")

	switch parser.Subcommand() {
	case "", "list", "ls":
		return handleDocsList(mgr, jsonMode)

	case "upload", "add":
		paths := parser.PositionalFrom(1)
		if len(paths) == 0 {
			return NewValidationError("file", "", "at least one file path is required")
		}
		return handleDocsUpload(mgr, paths, args.Quiet)

	case "delete", "rm":
		id := parser.Positional(1)
		if id == "" {
			return NewValidationError("document id", "", "a document id is required")
		}
		return handleDocsDelete(mgr, id, ConfirmationOptions{
			ConfirmFlag: parser.BoolFlag("confirm"),
			JSONMode:    jsonMode,
		})

	case "watch":
		dir := parser.Positional(1)
		if dir == "" {
			dir = cfg.Upload.InboxDir
		}
		return handleDocsWatch(mgr, dir, cfg)

	default:
		return NewValidationError("subcommand", parser.Subcommand(),
			"expected list, upload, delete, or watch")
	}
}

// handleDocsList prints the retrieval index contents.
func handleDocsList(mgr *docs.Manager, jsonMode bool) error {
	ctx := context.Background()
	documents, err := mgr.List(ctx)
	if err != nil {
		return NewCommandError("docs", "list", "backend request failed", err)
	}

	if jsonMode {
		data := make([]DocumentData, 0, len(documents))
		for _, d := range documents {
			data = append(data, DocumentData{
				ID:       d.ID,
				Name:     d.Name,
				Size:     d.Size,
				Type:     d.Type,
				Uploaded: d.Uploaded,
			})
		}
		resp := NewJSONResponse("docs list", data)
		return resp.Print()
	}

	if len(documents) == 0 {
		fmt.Println(DimStyle.Render("No documents in the index."))
		return nil
	}

	fmt.Println(TitleStyle.Render("Indexed Documents"))
	for _, d := range documents {
		detail := ""
		if d.Size > 0 {
			detail = DimStyle.Render(fmt.Sprintf("  %s", formatBytes(d.Size)))
		}
		fmt.Printf("  %s  %s%s\n",
			LabelStyle.Render(d.ID),
			ValueStyle.Render(d.Name),
			detail)
	}
	fmt.Println()
	fmt.Println(DimStyle.Render(fmt.Sprintf("%d document(s)", len(documents))))
	return nil
}

// handleDocsUpload uploads files for indexing, stopping at the first failure.
func handleDocsUpload(mgr *docs.Manager, paths []string, quiet bool) error {
	ctx := context.Background()
	for _, path := range paths {
		if err := mgr.UploadFile(ctx, path); err != nil {
			return NewCommandError("docs", "upload", path, err)
		}
		if !quiet {
			fmt.Printf("%s Uploaded %s\n", SuccessStyle.Render("[OK]"), path)
		}
	}
	return nil
}

// handleDocsDelete removes a document from the index after confirmation.
func handleDocsDelete(mgr *docs.Manager, id string, opts ConfirmationOptions) error {
	confirmed, err := RequireConfirmationWithOpts(
		fmt.Sprintf("delete document %s from the index", id), opts)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println(DimStyle.Render("Cancelled."))
		return nil
	}

	if err := mgr.Delete(context.Background(), id); err != nil {
		return NewCommandError("docs", "delete", id, err)
	}
	fmt.Printf("%s Deleted document %s\n", SuccessStyle.Render("[OK]"), id)
	return nil
}

// handleDocsWatch runs the inbox watcher until interrupted.
func handleDocsWatch(mgr *docs.Manager, dir string, cfg *config.Config) error {
	if dir == "" {
		return NewValidationError("directory", "",
			"no directory given and upload.inbox_dir is not configured")
	}
	if _, err := os.Stat(dir); err != nil {
		return &NotFoundError{Resource: "directory", ID: dir}
	}

	watcher, err := docs.NewInboxWatcher(mgr, dir, watchDebounce, cfg.Upload.RatePerMinute)
	if err != nil {
		return NewCommandError("docs", "watch", "watcher setup failed", err)
	}
	watcher.WithLogger(log.New(os.Stderr, "", log.LstdFlags))
	defer watcher.Close()

	if err := watcher.Watch(); err != nil {
		return NewCommandError("docs", "watch", dir, err)
	}

	fmt.Printf("%s Watching %s (Ctrl-C to stop)\n", InfoStyle.Render("[*]"), dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()

	fmt.Println()
	fmt.Println(DimStyle.Render("Stopped."))
	return nil
}
