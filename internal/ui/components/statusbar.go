// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ragchat TUI.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// ConnState is the backend connection state shown in the left segment.
type ConnState int

const (
	ConnReady ConnState = iota
	ConnStreaming
	ConnError
	ConnOffline
)

// StatusBar renders the single-line footer: connection state, backend
// address, indexed document count, and the key hints for the current
// context. Segments drop from the right as the terminal narrows.
type StatusBar struct {
	Width     int
	State     ConnState
	ServerURL string
	DocCount  int
	MsgCount  int
	Hint      string
	theme     *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		State: ConnReady,
		theme: theme,
	}
}

// SetWidth sets the bar width.
func (sb *StatusBar) SetWidth(width int) {
	sb.Width = width
}

// View renders the status bar.
func (sb *StatusBar) View() string {
	state := sb.renderState()
	segments := []string{state}

	mode := sb.layoutMode()

	if mode != styles.LayoutNarrow && sb.ServerURL != "" {
		server := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(util.TruncateWidth(trimScheme(sb.ServerURL), 28))
		segments = append(segments, server)
	}

	docs := strconv.Itoa(sb.DocCount) + " docs"
	if sb.DocCount == 1 {
		docs = "1 doc"
	}
	segments = append(segments, lipgloss.NewStyle().
		Foreground(styles.TextSecondary).Render(docs))

	if mode == styles.LayoutWide {
		msgs := strconv.Itoa(sb.MsgCount) + " messages"
		segments = append(segments, lipgloss.NewStyle().
			Foreground(styles.TextMuted).Render(msgs))
	}

	left := strings.Join(segments, sb.separator())

	right := ""
	if sb.Hint != "" && mode != styles.LayoutNarrow {
		right = sb.theme.ShortcutDesc.Render(sb.Hint)
	}

	gap := sb.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return sb.theme.StatusBar.Width(sb.Width).Render(
		left + strings.Repeat(" ", gap) + right)
}

// renderState renders the connection state segment with a shape
// indicator so the state reads without color.
func (sb *StatusBar) renderState() string {
	switch sb.State {
	case ConnStreaming:
		return sb.theme.StateStreaming.Render(styles.StatusIndicators.Active + " STREAMING")
	case ConnError:
		return sb.theme.StateError.Render(styles.StatusIndicators.Error + " ERROR")
	case ConnOffline:
		return sb.theme.StateError.Render(styles.StatusIndicators.Warning + " OFFLINE")
	default:
		return sb.theme.StateReady.Render(styles.StatusIndicators.Success + " READY")
	}
}

func (sb *StatusBar) separator() string {
	return lipgloss.NewStyle().Foreground(styles.OverlayDim).Render(" | ")
}

func (sb *StatusBar) layoutMode() styles.LayoutMode {
	if sb.Width < 60 {
		return styles.LayoutNarrow
	}
	if sb.Width < 100 {
		return styles.LayoutMedium
	}
	return styles.LayoutWide
}

// trimScheme drops the http(s) scheme prefix for compact display.
func trimScheme(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	return strings.TrimSuffix(url, "/")
}
