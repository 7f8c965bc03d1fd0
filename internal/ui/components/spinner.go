// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ragchat TUI.
package components

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is a customizable loading spinner component.
type Spinner struct {
	// Core spinner from bubbles
	spinner spinner.Model

	// Configuration
	style     SpinnerStyle
	message   string
	detail    string
	startTime time.Time

	// State
	isActive  bool
	showTimer bool
}

// SpinnerStyle defines the visual style for the spinner.
type SpinnerStyle int

const (
	SpinnerLine  SpinnerStyle = iota // Line rotation (default)
	SpinnerDots                      // Classic dots
	SpinnerPulse                     // Pulsing circle
	SpinnerBlock                     // Block animation
)

// NewSpinner creates a new spinner with default ASCII-compatible settings.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Spinner{
		spinner:   s,
		style:     SpinnerLine,
		message:   "Loading",
		showTimer: true,
	}
}

// NewRetrievingSpinner creates the spinner shown while the backend
// searches the index before the first token arrives.
func NewRetrievingSpinner() Spinner {
	s := NewSpinner()
	s.message = "Searching documents"
	s.showTimer = true
	return s
}

// NewUploadSpinner creates the spinner shown during document uploads.
func NewUploadSpinner(filename string) Spinner {
	s := NewSpinner()
	s.message = "Uploading " + filename
	s.showTimer = false
	return s
}

// =============================================================================
// STYLE CONFIGURATION
// =============================================================================

// SetStyle changes the spinner animation style (ASCII-compatible styles).
func (s *Spinner) SetStyle(style SpinnerStyle) {
	s.style = style

	switch style {
	case SpinnerLine:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{"|", "/", "-", "\\"},
			FPS:    time.Second / 10,
		}
	case SpinnerDots:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
			FPS:    time.Second / 6,
		}
	case SpinnerPulse:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{"( )", "(o)", "(O)", "(o)"},
			FPS:    time.Second / 8,
		}
	case SpinnerBlock:
		s.spinner.Spinner = spinner.Spinner{
			Frames: []string{"[    ]", "[=   ]", "[==  ]", "[=== ]", "[====]", "[ ===]", "[  ==]", "[   =]"},
			FPS:    time.Second / 15,
		}
	}
}

// SetMessage sets the text displayed next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// SetDetail sets additional detail text below the spinner.
func (s *Spinner) SetDetail(detail string) {
	s.detail = detail
}

// SetShowTimer enables or disables the elapsed time display.
func (s *Spinner) SetShowTimer(show bool) {
	s.showTimer = show
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner and records the start time.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// IsActive returns whether the spinner is currently running.
func (s *Spinner) IsActive() bool {
	return s.isActive
}

// GetElapsed returns the duration since the spinner started.
func (s *Spinner) GetElapsed() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the spinner.
func (s Spinner) Init() tea.Cmd {
	return nil
}

// Update handles messages for the spinner.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}

	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}

	spinnerView := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render(s.spinner.View())

	messageView := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(s.message)

	dotsView := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render("...")

	result := spinnerView + " " + messageView + dotsView

	if s.showTimer && !s.startTime.IsZero() {
		elapsed := time.Since(s.startTime)
		timerView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + formatElapsed(elapsed) + ")")
		result += timerView
	}

	if s.detail != "" {
		detailView := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			PaddingLeft(2).
			Render(s.detail)
		result += "\n" + detailView
	}

	return result
}

// =============================================================================
// INLINE SPINNER
// =============================================================================

// InlineSpinner is a minimal spinner for inline use in the status bar.
type InlineSpinner struct {
	spinner spinner.Model
	active  bool
}

// NewInlineSpinner creates a minimal inline ASCII-compatible spinner.
func NewInlineSpinner() InlineSpinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return InlineSpinner{spinner: s}
}

// Start begins the spinner.
func (i *InlineSpinner) Start() tea.Cmd {
	i.active = true
	return i.spinner.Tick
}

// Stop ends the spinner.
func (i *InlineSpinner) Stop() {
	i.active = false
}

// Update handles messages.
func (i InlineSpinner) Update(msg tea.Msg) (InlineSpinner, tea.Cmd) {
	if !i.active {
		return i, nil
	}
	var cmd tea.Cmd
	i.spinner, cmd = i.spinner.Update(msg)
	return i, cmd
}

// View renders just the spinner character.
func (i InlineSpinner) View() string {
	if !i.active {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render(i.spinner.View())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatElapsed formats a duration for display.
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return strconv.Itoa(seconds) + "s"
	}
	minutes := seconds / 60
	secs := seconds % 60
	return strconv.Itoa(minutes) + "m " + strconv.Itoa(secs) + "s"
}
