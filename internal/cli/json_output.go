// json_output.go - JSON output support for scripted use of ragchat.
//
// Provides a standardized JSON output format for all CLI commands so
// answers and citation metadata can be piped into other tools.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// PrintCompact outputs the JSON response without indentation.
// Useful for piping to other tools or log aggregation.
func (r *JSONResponse) PrintCompact() error {
	return json.NewEncoder(os.Stdout).Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// StderrPrint prints a message to stderr (for human-readable output in JSON mode).
func StderrPrint(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// StderrPrintln prints a line to stderr (for human-readable output in JSON mode).
func StderrPrintln(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// AskData represents the data returned by the ask command.
type AskData struct {
	Answer     string         `json:"answer"`
	Markup     string         `json:"markup,omitempty"`
	Citations  []CitationData `json:"citations,omitempty"`
	Streamed   bool           `json:"streamed"`
	DurationMs int64          `json:"duration_ms"`
}

// CitationData is one retrieved source in ask command output.
type CitationData struct {
	ID         string `json:"id"`
	Rank       int    `json:"rank"`
	Filename   string `json:"filename"`
	Similarity string `json:"similarity"`
	Excerpt    string `json:"excerpt,omitempty"`
}

// DocumentData is one indexed document in docs list output.
type DocumentData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size,omitempty"`
	Type     string `json:"type,omitempty"`
	Uploaded string `json:"uploaded_at,omitempty"`
}

// ConfigData represents the data returned by the config show command.
type ConfigData struct {
	Server ConfigServerInfo `json:"server"`
	Upload ConfigUploadInfo `json:"upload"`
	UI     ConfigUIInfo     `json:"ui"`
	Path   string           `json:"config_path"`
}

// ConfigServerInfo contains backend connection configuration.
type ConfigServerInfo struct {
	BaseURL     string `json:"base_url"`
	TimeoutSecs int    `json:"timeout_secs"`
	MaxRetries  int    `json:"max_retries"`
	Streaming   bool   `json:"streaming"`
}

// ConfigUploadInfo contains document upload configuration.
type ConfigUploadInfo struct {
	InboxDir          string   `json:"inbox_dir"`
	MaxFileMB         int      `json:"max_file_mb"`
	AllowedExtensions []string `json:"allowed_extensions"`
	RatePerMinute     int      `json:"rate_per_minute"`
}

// ConfigUIInfo contains UI configuration.
type ConfigUIInfo struct {
	Theme       string `json:"theme"`
	ShowSources bool   `json:"show_sources"`
	ShowStats   bool   `json:"show_stats"`
	CompactMode bool   `json:"compact_mode"`
}
