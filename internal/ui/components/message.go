// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ragchat TUI.
package components

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/model"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one conversation message as a styled bubble.
// Assistant bubbles highlight resolved citation markers and carry a
// sources badge; the SelectedRank marker is inverted while its source
// panel is open.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	IsLatest      bool
	ShowTimestamp bool
	ShowStats     bool
	Streaming     bool
	SelectedRank  int
	theme         *styles.Theme
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	if msg == nil {
		return &MessageBubble{
			Message: model.NewSystemMessage(""),
			Width:   80,
			theme:   theme,
		}
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		ShowStats:     true,
		Streaming:     msg.IsStreaming,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// SetIsLatest marks this as the latest message.
func (b *MessageBubble) SetIsLatest(latest bool) {
	b.IsLatest = latest
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	case model.RoleAssistant:
		return b.renderAssistantBubble()
	case model.RoleSystem:
		return b.renderSystemBubble()
	default:
		return b.renderGenericBubble()
	}
}

// ==========================================================================
// USER BUBBLE - Blue tones, right-aligned feel
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12 // Account for margins and padding
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.UserBubbleFg).
		Background(styles.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.UserBubbleBorder).
		Padding(0, 2).
		Width(contentWidth)

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	roleIndicator := roleStyle.Render("you")

	headerParts := []string{roleIndicator}
	if len(b.Message.AttachedFiles) > 0 {
		attachStyle := lipgloss.NewStyle().Foreground(styles.Cyan)
		headerParts = append(headerParts,
			attachStyle.Render("+"+strconv.Itoa(len(b.Message.AttachedFiles))+" file(s)"))
	}
	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			headerParts = append(headerParts, ts)
		}
	}
	header := strings.Join(headerParts, " ")

	// Right-align the bubble with left margin
	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	marginStyle := lipgloss.NewStyle().MarginLeft(leftMargin)

	headerLine := marginStyle.Render(header)
	bubbleLine := marginStyle.Render(bubble)

	return lipgloss.JoinVertical(lipgloss.Right, headerLine, bubbleLine)
}

// ==========================================================================
// ASSISTANT BUBBLE - Purple/violet tones, citation markers highlighted
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.Message.GetDisplayContent()

	if b.Streaming {
		content = content + b.renderStreamingCursor()
	}

	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	// Style citation markers after wrapping so escape sequences do not
	// throw the width math off. Only ranks that actually resolved get
	// highlighted.
	if !b.Streaming && b.Message.HasCitations {
		wrappedContent = b.styleMarkers(wrappedContent)
	}

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.AssistantBubbleFg).
		Background(styles.AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.AssistantBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		MarginRight(4)

	if b.Message.Failed {
		bubbleStyle = bubbleStyle.BorderForeground(styles.Rose)
	}

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	roleIndicator := roleStyle.Render("assistant")

	headerParts := []string{roleIndicator}
	if b.Message.Failed {
		headerParts = append(headerParts, b.theme.ErrorStyle.Render(styles.StatusIndicators.Error+" failed"))
	} else if n := b.Message.SourceCount(); n > 0 && !b.Streaming {
		badge := lipgloss.NewStyle().Foreground(styles.CitationFilename)
		label := strconv.Itoa(n) + " source"
		if n != 1 {
			label += "s"
		}
		headerParts = append(headerParts, badge.Render(label))
	}
	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			headerParts = append(headerParts, ts)
		}
	}
	header := strings.Join(headerParts, " ")

	statsLine := ""
	if b.ShowStats && !b.Streaming && b.Message.TotalDuration > 0 {
		statsLine = b.renderStats()
	}

	result := lipgloss.JoinVertical(lipgloss.Left, header, bubble)
	if statsLine != "" {
		result = lipgloss.JoinVertical(lipgloss.Left, result, statsLine)
	}

	return result
}

// markerPattern matches the plain-text [n] labels left by markup stripping.
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// styleMarkers colors the [n] citation labels in already-wrapped text.
// Labels whose rank is not in the message's citation set are left alone;
// they are ordinary bracketed text, not references.
func (b *MessageBubble) styleMarkers(text string) string {
	return markerPattern.ReplaceAllStringFunc(text, func(label string) string {
		rank, err := strconv.Atoi(label[1 : len(label)-1])
		if err != nil {
			return label
		}
		if _, ok := b.Message.Citations.FindRank(rank); !ok {
			return label
		}
		if rank == b.SelectedRank {
			return b.theme.CitationMarkerSelected.Render(label)
		}
		return b.theme.CitationMarker.Render(label)
	})
}

// ==========================================================================
// SYSTEM BUBBLE - Amber/yellow tones, centered
// ==========================================================================

func (b *MessageBubble) renderSystemBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "System message"
	}

	maxContentWidth := b.Width - 20
	if maxContentWidth < 30 {
		maxContentWidth = 30
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-16)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.SystemBubbleFg).
		Background(styles.SystemBubbleBg).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.SystemBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		Align(lipgloss.Center)

	bubble := bubbleStyle.Render(wrappedContent)

	centerStyle := lipgloss.NewStyle().
		Width(b.Width).
		Align(lipgloss.Center)

	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := labelStyle.Render("system")
	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			header = header + " " + ts
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Center,
		centerStyle.Render(header),
		centerStyle.Render(bubble),
	)
}

// ==========================================================================
// GENERIC BUBBLE - Fallback for unknown roles
// ==========================================================================

func (b *MessageBubble) renderGenericBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 10
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	if maxContentWidth > b.Width-2 {
		maxContentWidth = b.Width - 2
	}
	wrappedContent := wordWrap(content, maxContentWidth)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 2)

	return bubbleStyle.Render(wrappedContent)
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

// renderTimestamp renders a dimmed timestamp
func (b *MessageBubble) renderTimestamp() string {
	timestampStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	ts := b.Message.Timestamp
	if ts.IsZero() {
		return ""
	}

	// Format: "12:34 PM" or "Jan 5, 12:34 PM"
	now := time.Now()
	var formatted string

	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		formatted = formatTime(ts)
	} else {
		formatted = formatDate(ts) + ", " + formatTime(ts)
	}

	return timestampStyle.Render(formatted)
}

// renderStats renders message statistics
func (b *MessageBubble) renderStats() string {
	statsStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		PaddingLeft(2)

	stats := b.Message.FormatStats()
	if stats == "" {
		return ""
	}

	return statsStyle.Render(stats)
}

// renderStreamingCursor renders the streaming cursor animation
func (b *MessageBubble) renderStreamingCursor() string {
	cursorStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Blink(true)

	return cursorStyle.Render("_")
}

// ==========================================================================
// UTILITY FUNCTIONS
// ==========================================================================

// wordWrap wraps text to fit within the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for lineIdx, line := range lines {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]

		for _, word := range words[1:] {
			if runeLen(currentLine)+1+runeLen(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}

		result.WriteString(currentLine)
	}

	return result.String()
}

// maxLineWidth returns the width of the longest line in runes (characters).
// This correctly handles Unicode text where len() would return byte count.
func maxLineWidth(text string) int {
	maxWidth := 0
	for _, line := range strings.Split(text, "\n") {
		lineWidth := runeLen(line)
		if lineWidth > maxWidth {
			maxWidth = lineWidth
		}
	}
	return maxWidth
}

// minInt returns the minimum of two integers
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// runeLen returns the number of runes (characters) in a string.
// This correctly handles Unicode text where len() would return byte count.
func runeLen(s string) int {
	return len([]rune(s))
}

// formatTime formats a time as "3:04 PM"
func formatTime(t time.Time) string {
	hour := t.Hour()
	minute := t.Minute()
	ampm := "AM"

	if hour >= 12 {
		ampm = "PM"
		if hour > 12 {
			hour -= 12
		}
	}
	if hour == 0 {
		hour = 12
	}

	minuteStr := strconv.Itoa(minute)
	if minute < 10 {
		minuteStr = "0" + minuteStr
	}

	return strconv.Itoa(hour) + ":" + minuteStr + " " + ampm
}

// formatDate formats a date as "Jan 5"
func formatDate(t time.Time) string {
	months := []string{
		"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	}

	month := months[t.Month()-1]
	day := t.Day()

	return month + " " + strconv.Itoa(day)
}

// =============================================================================
// MESSAGE LIST COMPONENT - For rendering multiple messages
// =============================================================================

// MessageList renders a conversation's messages in order.
type MessageList struct {
	Messages       []*model.Message
	Width          int
	ShowTimestamps bool
	ShowStats      bool
	SelectedRank   int
	theme          *styles.Theme
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Messages:       []*model.Message{},
		Width:          80,
		ShowTimestamps: true,
		ShowStats:      true,
		theme:          theme,
	}
}

// SetMessages sets the messages to display.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.Messages = messages
}

// SetWidth sets the list width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(ml.Width).
			Align(lipgloss.Center).
			Padding(2, 0)

		return emptyStyle.Render("No messages yet. Ask a question about your documents!")
	}

	var bubbles []string

	for i, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimestamp = ml.ShowTimestamps
		bubble.ShowStats = ml.ShowStats
		bubble.SetIsLatest(i == len(ml.Messages)-1)
		if i == len(ml.Messages)-1 {
			bubble.SelectedRank = ml.SelectedRank
		}

		bubbles = append(bubbles, bubble.View())
	}

	return strings.Join(bubbles, "\n")
}
