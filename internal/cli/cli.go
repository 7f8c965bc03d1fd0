// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for ragchat.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdDocs
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet    bool
	Verbose  bool
	JSON     bool // Output in JSON format
	NoStream bool // Force a single buffered request instead of SSE
	Server   string

	// Command-specific
	Query      string
	Files      []string
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string

	// Options holds command-specific named options (e.g., --format)
	Options map[string]string
}

const usageText = `ragchat - terminal client for a RAG chat backend

Ragchat talks to a retrieval-augmented chat server and renders its
answers with inline source citations.

It provides:
  - A TUI chat interface with streaming responses
  - Inline citation markers resolved against retrieved sources
  - One-shot questions from the command line
  - Document management for the retrieval index

Usage:
  ragchat                     Start TUI (default)
  ragchat ask "question"      Ask a single question
  ragchat docs [subcommand]   Manage indexed documents
  ragchat config [show|set]   Configuration
  ragchat version             Show version information

Ask Command:
  ragchat ask "question"            Ask and print the annotated answer
    -f, --file FILE                 Attach a file to the question (repeatable)
    --no-stream                     Use one buffered request instead of SSE
    --json                          Output answer and citations as JSON

Docs Commands:
  ragchat docs list                 List documents in the retrieval index
  ragchat docs upload FILE...       Upload documents for indexing
  ragchat docs delete ID            Delete a document from the index
    --confirm                       Skip the interactive prompt
  ragchat docs watch [DIR]          Watch a directory and upload new files
    --json                          Output in JSON format (list only)

Config Commands:
  ragchat config                    Show current configuration (default)
  ragchat config show               Show current configuration
  ragchat config set KEY VALUE      Set a configuration value
  ragchat config reset              Reset to default configuration
  ragchat config path               Show configuration file path

  Configuration Keys:
    server_url        Backend base URL
    timeout_secs      Request timeout in seconds
    streaming         Use SSE streaming (true/false)
    inbox_dir         Watched upload directory
    idle_timeout_mins Idle minutes before the chat quits
    theme             UI theme (dark/light/auto)

Global Flags:
  --server URL    Override the backend base URL
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format

Environment:
  RAGCHAT_SERVER_URL, RAGCHAT_TIMEOUT_SECS, RAGCHAT_STREAMING,
  RAGCHAT_INBOX_DIR, RAGCHAT_THEME override file configuration.

Examples:
  # Basic usage
  ragchat                             Start TUI interface
  ragchat ask "What is pgvector?"     Ask a single question
  cat error.log | ragchat ask         Read the question from stdin

  # Ask command with options
  ragchat ask "Summarize this:" --file report.txt
  ragchat ask "List the findings" --json
  ragchat ask --no-stream "Quick check"

  # Document management
  ragchat docs list                   Show indexed documents
  ragchat docs upload notes.md        Upload one file
  ragchat docs delete 42 --confirm    Delete without prompting
  ragchat docs watch ~/inbox          Auto-upload new files

  # Configuration
  ragchat config show                 Show current configuration
  ragchat config set server_url http://rag.local:8000
  ragchat config set streaming false

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("ragchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

// parseArgs is the testable core of Parse.
func parseArgs(args []string) (Command, Args) {
	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	// Check first argument for command
	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "docs", "documents":
		// Detailed argument parsing is done in docs.go HandleDocs
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdDocs, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command - could be a direct prompt, default to TUI
		// Restore the command as it might be part of args
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdTUI, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	parsedArgs := Args{
		Options: make(map[string]string),
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--no-stream":
			parsedArgs.NoStream = true
		case "--server":
			if i+1 < len(args) {
				i++
				parsedArgs.Server = args[i]
			}
		default:
			// Check for --server=value format
			if strings.HasPrefix(arg, "--server=") {
				parsedArgs.Server = strings.TrimPrefix(arg, "--server=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.Files = append(args.Files, remaining[i])
			}
		default:
			if strings.HasPrefix(arg, "--file=") {
				args.Files = append(args.Files, strings.TrimPrefix(arg, "--file="))
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// ERROR HANDLING: Errors must not be silently ignored

// HandleAsk handles the "ask" command.
// This delegates to the full implementation in ask.go.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleDocsExit handles the "docs" command and exits on failure.
// This delegates to the full implementation in docs.go.
func HandleDocsExit(args Args) {
	if err := HandleDocs(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// NOTE: HandleConfig is implemented in config.go
// NOTE: HandleDocs is implemented in docs.go

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleVersionWithJSON handles the "version" command with JSON output support.
func HandleVersionWithJSON(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
