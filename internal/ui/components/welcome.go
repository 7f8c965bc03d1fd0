// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ragchat TUI.
package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN MODEL
// =============================================================================

// Welcome is the screen shown before the first question is asked.
type Welcome struct {
	// Display info
	version   string
	serverURL string
	docCount  int

	// Dimensions
	width  int
	height int

	// Theme
	theme *styles.Theme
}

// NewWelcome creates a new welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		version: "dev",
		theme:   theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetServerURL sets the backend address shown in the info block.
func (w *Welcome) SetServerURL(url string) {
	w.serverURL = url
}

// SetDocCount sets the indexed document count shown in the info block.
func (w *Welcome) SetDocCount(n int) {
	w.docCount = n
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the welcome screen.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}
	return w, nil
}

// logo is plain ASCII so it survives every terminal font.
const logo = `                      _           _
 _ __ __ _  __ _  ___| |__   __ _| |_
| '__/ _' |/ _' |/ __| '_ \ / _' | __|
| | | (_| | (_| | (__| | | | (_| | |_
|_|  \__,_|\__, |\___|_| |_|\__,_|\__|
           |___/`

// View renders the welcome screen.
// Responsive: adapts to terminal size, minimum 80x24 supported.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	boxWidth := 62
	if width < 70 {
		boxWidth = width - 8
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	logoView := w.theme.WelcomeLogo.Render(logo)
	versionView := w.theme.WelcomeVersion.Render("v" + w.version)

	info := ""
	if w.serverURL != "" {
		info = w.theme.WelcomeInfo.Render("Backend: " + trimScheme(w.serverURL))
	}
	docs := ""
	if w.docCount > 0 {
		docs = w.theme.WelcomeInfo.Render(fmtCount(w.docCount) + " documents indexed")
	}

	hints := lipgloss.JoinVertical(lipgloss.Left,
		w.theme.WelcomeKey.Render("Enter")+w.theme.WelcomeInfo.Render("  send question"),
		w.theme.WelcomeKey.Render("/help")+w.theme.WelcomeInfo.Render("  list commands"),
		w.theme.WelcomeKey.Render("?    ")+w.theme.WelcomeInfo.Render("  keyboard shortcuts"),
	)

	pressKey := w.theme.WelcomePressKey.Render("Ask anything about your documents")

	parts := []string{logoView, versionView, ""}
	if info != "" {
		parts = append(parts, info)
	}
	if docs != "" {
		parts = append(parts, docs)
	}
	parts = append(parts, "", hints, "", pressKey)

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)

	box := w.theme.WelcomeBox.Width(boxWidth).Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
