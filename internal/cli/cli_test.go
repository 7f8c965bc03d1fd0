// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution.
//
// This test file covers argument parsing and the config key handling
// behind the user-facing commands.
package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/jeranaias/ragchat-tui/internal/config"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"list"},
			wantSub: "list",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"list", "--format", "table"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("format") != "table" {
					t.Errorf("Flag(format) = %q, want %q", p.Flag("format"), "table")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"delete", "--id=42"},
			wantSub: "delete",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("id") != "42" {
					t.Errorf("Flag(id) = %q, want %q", p.Flag("id"), "42")
				}
			},
		},
		{
			name:    "boolean flag",
			args:    []string{"delete", "42", "--confirm"},
			wantSub: "delete",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("confirm") {
					t.Error("BoolFlag(confirm) should be true")
				}
				if p.Positional(1) != "42" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "42")
				}
			},
		},
		{
			name:    "multiple positional args",
			args:    []string{"upload", "a.txt", "b.txt", "c.md"},
			wantSub: "upload",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 4 {
					t.Errorf("PositionalCount() = %d, want 4", p.PositionalCount())
				}
				joined := strings.Join(p.PositionalFrom(1), " ")
				if joined != "a.txt b.txt c.md" {
					t.Errorf("PositionalFrom(1) joined = %q, want %q", joined, "a.txt b.txt c.md")
				}
			},
		},
		{
			name:    "mixed flags and positional",
			args:    []string{"watch", "--json", "inbox"},
			wantSub: "watch",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
				if p.Positional(1) != "inbox" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "inbox")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		flagName   string
		defaultVal int
		want       int
	}{
		{
			name:       "flag present",
			args:       []string{"watch", "--debounce", "10"},
			flagName:   "debounce",
			defaultVal: 5,
			want:       10,
		},
		{
			name:       "flag absent",
			args:       []string{"watch"},
			flagName:   "debounce",
			defaultVal: 5,
			want:       5,
		},
		{
			name:       "flag not an integer",
			args:       []string{"watch", "--debounce", "soon"},
			flagName:   "debounce",
			defaultVal: 5,
			want:       5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			got := parser.FlagIntOrDefault(tt.flagName, tt.defaultVal)
			if got != tt.want {
				t.Errorf("FlagIntOrDefault(%s, %d) = %d, want %d",
					tt.flagName, tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestParseBoolString(t *testing.T) {
	truthy := []string{"true", "yes", "y", "1", "on", "TRUE", "Yes"}
	for _, s := range truthy {
		got, err := ParseBoolString(s)
		if err != nil || !got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want true, nil", s, got, err)
		}
	}

	falsy := []string{"false", "no", "n", "0", "off"}
	for _, s := range falsy {
		got, err := ParseBoolString(s)
		if err != nil || got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want false, nil", s, got, err)
		}
	}

	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should return an error")
	}
}

// =============================================================================
// COMMAND DISPATCH TESTS (cli.go)
// =============================================================================

func TestParseArgs_CommandDispatch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"no args defaults to TUI", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"docs", []string{"docs", "list"}, CmdDocs},
		{"documents alias", []string{"documents"}, CmdDocs},
		{"config", []string{"config", "show"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"unknown falls back to TUI", []string{"whatever"}, CmdTUI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := parseArgs(tt.args)
			if cmd != tt.want {
				t.Errorf("parseArgs(%v) = %v, want %v", tt.args, cmd, tt.want)
			}
		})
	}
}

func TestParseArgs_GlobalFlags(t *testing.T) {
	cmd, args := parseArgs([]string{"--json", "-q", "--server", "http://rag:8000", "docs", "list"})
	if cmd != CmdDocs {
		t.Fatalf("cmd = %v, want CmdDocs", cmd)
	}
	if !args.JSON {
		t.Error("JSON flag not parsed")
	}
	if !args.Quiet {
		t.Error("Quiet flag not parsed")
	}
	if args.Server != "http://rag:8000" {
		t.Errorf("Server = %q, want %q", args.Server, "http://rag:8000")
	}
	if args.Subcommand != "list" {
		t.Errorf("Subcommand = %q, want %q", args.Subcommand, "list")
	}
}

func TestParseArgs_AskQueryAndFiles(t *testing.T) {
	cmd, args := parseArgs([]string{"ask", "what", "is", "pgvector", "--file", "a.txt", "--file=b.md", "--no-stream"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "what is pgvector" {
		t.Errorf("Query = %q, want %q", args.Query, "what is pgvector")
	}
	if len(args.Files) != 2 || args.Files[0] != "a.txt" || args.Files[1] != "b.md" {
		t.Errorf("Files = %v, want [a.txt b.md]", args.Files)
	}
	if !args.NoStream {
		t.Error("NoStream flag not parsed")
	}
}

func TestParseArgs_ConfigSet(t *testing.T) {
	cmd, args := parseArgs([]string{"config", "set", "server_url", "http://rag:8000"})
	if cmd != CmdConfig {
		t.Fatalf("cmd = %v, want CmdConfig", cmd)
	}
	if args.Subcommand != "set" {
		t.Errorf("Subcommand = %q, want %q", args.Subcommand, "set")
	}
	if args.ConfigKey != "server_url" {
		t.Errorf("ConfigKey = %q, want %q", args.ConfigKey, "server_url")
	}
	if args.ConfigVal != "http://rag:8000" {
		t.Errorf("ConfigVal = %q, want %q", args.ConfigVal, "http://rag:8000")
	}
}

// =============================================================================
// CONFIG KEY TESTS (config.go)
// =============================================================================

func TestApplyConfigKey(t *testing.T) {
	cfg := config.Default()

	if err := applyConfigKey(cfg, "server_url", "http://rag:9000"); err != nil {
		t.Fatalf("applyConfigKey(server_url) error: %v", err)
	}
	if cfg.Server.BaseURL != "http://rag:9000" {
		t.Errorf("BaseURL = %q, want %q", cfg.Server.BaseURL, "http://rag:9000")
	}

	if err := applyConfigKey(cfg, "timeout_secs", "120"); err != nil {
		t.Fatalf("applyConfigKey(timeout_secs) error: %v", err)
	}
	if cfg.Server.TimeoutSecs != 120 {
		t.Errorf("TimeoutSecs = %d, want 120", cfg.Server.TimeoutSecs)
	}

	if err := applyConfigKey(cfg, "streaming", "false"); err != nil {
		t.Fatalf("applyConfigKey(streaming) error: %v", err)
	}
	if cfg.Server.Streaming {
		t.Error("Streaming should be false")
	}

	if err := applyConfigKey(cfg, "theme", "Light"); err != nil {
		t.Fatalf("applyConfigKey(theme) error: %v", err)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want %q", cfg.UI.Theme, "light")
	}

	if err := applyConfigKey(cfg, "idle_timeout_mins", "30"); err != nil {
		t.Fatalf("applyConfigKey(idle_timeout_mins) error: %v", err)
	}
	if cfg.Session.IdleTimeoutMins != 30 {
		t.Errorf("IdleTimeoutMins = %d, want 30", cfg.Session.IdleTimeoutMins)
	}

	// Negative autosave disables it and must be accepted.
	if err := applyConfigKey(cfg, "autosave_secs", "-1"); err != nil {
		t.Fatalf("applyConfigKey(autosave_secs) error: %v", err)
	}
	if cfg.Session.AutosaveSecs != -1 {
		t.Errorf("AutosaveSecs = %d, want -1", cfg.Session.AutosaveSecs)
	}
}

func TestApplyConfigKey_Invalid(t *testing.T) {
	cfg := config.Default()

	if err := applyConfigKey(cfg, "no_such_key", "x"); err == nil {
		t.Error("unknown key should return an error")
	}

	if err := applyConfigKey(cfg, "timeout_secs", "soon"); err == nil {
		t.Error("non-integer timeout should return an error")
	}

	if err := applyConfigKey(cfg, "streaming", "maybe"); err == nil {
		t.Error("non-boolean streaming should return an error")
	}
}

// =============================================================================
// EXIT CODE TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation error", NewValidationError("file", "", "required"), ExitUsageError},
		{"not found error", &NotFoundError{Resource: "document", ID: "42"}, ExitNotFoundError},
		{"wrapped not found", NewCommandError("docs", "delete", "42", &NotFoundError{Resource: "document", ID: "42"}), ExitNotFoundError},
		{"config error", errors.New("failed to parse config file"), ExitConfigError},
		{"network error", errors.New("dial tcp: connection refused"), ExitNetworkError},
		{"timeout error", errors.New("context deadline exceeded"), ExitTimeoutError},
		{"generic error", errors.New("something else"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
