// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the ragchat CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering for better CLI experience
//
// Handles the "ragchat ask" command which sends a single question to the
// RAG backend and prints the answer with its source citations.
//
// Command: ask [question]
// Short:   Ask a single question
// Aliases: (none)
//
// Examples:
//   ragchat ask "What is the refund policy?"
//   ragchat ask --json "List the open findings"
//   ragchat ask "Summarize this:" --file report.txt
//   cat error.log | ragchat ask
//
// Flags:
//   -f, --file FILE     Attach a file to the question (repeatable)
//   --no-stream         Use one buffered request instead of SSE
//   --json              Output answer and citations as JSON
//   -v, --verbose       Verbose output
//   -q, --quiet         Minimal output
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/citation"
	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/docs"
	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
// USABILITY: Renders markdown responses with syntax highlighting and formatting.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse displays a response with markdown rendering when appropriate.
// Only renders markdown when stdout is a TTY to avoid corrupting piped output.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Print(response)
	}
}

// =============================================================================
// STYLES
// =============================================================================

var (
	// Progress/info prefix style
	infoPrefixStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)

	// Separator style
	separatorStyle = lipgloss.NewStyle().
			Foreground(styles.Overlay)

	// Summary label style
	summaryLabelStyle = lipgloss.NewStyle().
				Foreground(styles.TextSecondary)

	// Summary value style
	summaryValueStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald)

	// Source rank style
	sourceRankStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// Source detail style
	sourceDetailStyle = lipgloss.NewStyle().
				Foreground(styles.TextMuted)

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command: one question, one annotated
// answer, then exit. Supports JSON output for scripting.
func HandleAskCommand(args Args) error {
	cfg := config.Global()

	question := args.Query

	// If no question from args, try reading from stdin (for piped input)
	if question == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			// Stdin is a pipe, read from it
			reader := bufio.NewReader(os.Stdin)
			stdinData, err := io.ReadAll(reader)
			if err == nil && len(stdinData) > 0 {
				question = strings.TrimSpace(string(stdinData))
				if !args.Quiet {
					fmt.Fprintf(os.Stderr, "%s Read question from stdin (%d bytes)\n",
						infoPrefixStyle.Render("[+]"),
						len(stdinData))
				}
			}
		}
	}

	if question == "" {
		err := fmt.Errorf("no question provided. Usage: ragchat ask \"your question\"")
		if args.JSON {
			resp := NewJSONErrorResponse("ask", err)
			resp.Print()
		}
		return err
	}

	client := newBackendClient(cfg, args)
	ctx := context.Background()

	// Upload any attached files before sending the question. Explicit
	// attachments fail the command; a half-attached question is worse
	// than no answer.
	var refs []backend.FileRef
	if len(args.Files) > 0 {
		mgr := docs.NewManager(client, cfg.Upload)
		results := mgr.AttachFiles(ctx, args.Files)
		for _, res := range results {
			if res.Err != nil {
				err := fmt.Errorf("attach %s: %w", res.Path, res.Err)
				if args.JSON {
					resp := NewJSONErrorResponse("ask", err)
					resp.Print()
				}
				return err
			}
			if !args.Quiet {
				fmt.Fprintf(os.Stderr, "%s Attached file: %s\n",
					infoPrefixStyle.Render("[+]"),
					res.Path)
			}
		}
		refs = docs.Refs(results)
	}

	streaming := cfg.Server.Streaming && !args.NoStream
	runner := session.NewRunner(client, streaming)

	// USABILITY: Render markdown on TTY for better formatting, stream plain
	// for pipes. When rendering markdown the answer is collected and printed
	// once at the end.
	useMarkdown := IsStdoutTTY() && !args.JSON

	if !args.Quiet && !args.JSON {
		fmt.Println() // Space before response
	}

	var (
		finalRes citation.Result
		gotFinal bool
		printed  int
	)
	cb := session.Callbacks{
		OnRaw: func(text string) {
			// Incremental output only when streaming plain text; the raw
			// buffer is cumulative, so print the unseen suffix.
			if args.JSON || useMarkdown {
				return
			}
			if len(text) > printed {
				fmt.Print(text[printed:])
				printed = len(text)
			}
		},
		OnFinal: func(res citation.Result) {
			finalRes = res
			gotFinal = true
		},
	}

	conv := model.NewConversation()
	req := backend.NewChatRequest(conv.ID, question, refs)

	startTime := time.Now()
	_, err := runner.RunTurn(ctx, req, cb)
	duration := time.Since(startTime)

	if err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("ask", err)
			resp.Print()
		} else {
			fmt.Fprintf(os.Stderr, "\n%s %v\n", errorStyle.Render("[Error]"), err)
		}
		return err
	}
	if !gotFinal {
		err := fmt.Errorf("backend returned no answer")
		if args.JSON {
			resp := NewJSONErrorResponse("ask", err)
			resp.Print()
		}
		return err
	}

	answer := citation.StripMarkup(finalRes.Markup)

	// JSON output mode
	if args.JSON {
		data := AskData{
			Answer:     answer,
			Markup:     finalRes.Markup,
			Citations:  citationJSON(finalRes.Citations),
			Streamed:   streaming,
			DurationMs: duration.Milliseconds(),
		}
		resp := NewJSONResponse("ask", data)
		return resp.Print()
	}

	if useMarkdown {
		displayResponse(answer)
	} else if printed == 0 {
		// Buffered turn on a pipe: nothing streamed, print the answer now.
		fmt.Print(answer)
	}

	// Ensure newline after response
	fmt.Println()

	// Show sources and timing (unless --quiet)
	if !args.Quiet {
		displaySources(finalRes.Citations)
		displayTurnSummary(finalRes, duration)
	}

	return nil
}

// newBackendClient builds the backend client from config plus CLI overrides.
func newBackendClient(cfg *config.Config, args Args) *backend.Client {
	baseURL := cfg.Server.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}
	return backend.NewClient(baseURL).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.Server.MaxRetries)
}

// citationJSON converts a citation set to the ask command's JSON shape.
func citationJSON(set citation.Set) []CitationData {
	ranked := set.ByRank()
	out := make([]CitationData, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, CitationData{
			ID:         c.ID,
			Rank:       c.Rank,
			Filename:   c.DisplayFilename(),
			Similarity: c.DisplaySimilarity(),
			Excerpt:    c.DisplayContent(),
		})
	}
	return out
}

// displaySources prints the footnote list of retrieved sources to stderr.
func displaySources(set citation.Set) {
	ranked := set.ByRank()
	if len(ranked) == 0 {
		return
	}

	fmt.Fprintln(os.Stderr, summaryLabelStyle.Render("Sources:"))
	for _, c := range ranked {
		fmt.Fprintf(os.Stderr, "  %s %s %s\n",
			sourceRankStyle.Render(fmt.Sprintf("[%d]", c.Rank)),
			c.DisplayFilename(),
			sourceDetailStyle.Render(fmt.Sprintf("(%s match)", c.DisplaySimilarity())))
	}
}

// displayTurnSummary shows the final turn summary after the response.
func displayTurnSummary(res citation.Result, duration time.Duration) {
	separator := strings.Repeat("─", 45)
	fmt.Fprintln(os.Stderr, separatorStyle.Render(separator))

	fmt.Fprintf(os.Stderr, "%s %s | %s %s\n",
		summaryLabelStyle.Render("Sources:"),
		summaryValueStyle.Render(fmt.Sprintf("%d", len(res.Citations))),
		summaryLabelStyle.Render("Time:"),
		summaryValueStyle.Render(formatDurationShort(duration)))
}
