// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ragchat TUI.
//
// This file implements the source detail panel and the source list
// footer. The panel shows one retrieved chunk (filename, relevance,
// excerpt) when the user selects an inline citation marker; the footer
// lists every source backing the latest reply.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/citation"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// CITATION PANEL
// =============================================================================

// CitationPanel renders the detail view for one selected source.
type CitationPanel struct {
	Citation citation.Citation
	Degraded bool
	Width    int
	theme    *styles.Theme
}

// NewCitationPanel creates a panel for a resolved citation.
func NewCitationPanel(c citation.Citation, theme *styles.Theme) *CitationPanel {
	return &CitationPanel{
		Citation: c,
		Width:    80,
		theme:    theme,
	}
}

// NewDegradedPanel creates a panel for a reference that could not be
// resolved from the turn's set or fetched on demand.
func NewDegradedPanel(id string, theme *styles.Theme) *CitationPanel {
	return &CitationPanel{
		Citation: citation.Citation{ID: id},
		Degraded: true,
		Width:    80,
		theme:    theme,
	}
}

// SetWidth sets the panel width.
func (p *CitationPanel) SetWidth(width int) {
	p.Width = width
}

// View renders the panel.
func (p *CitationPanel) View() string {
	innerWidth := p.Width - 8
	if innerWidth < 24 {
		innerWidth = 24
	}

	if p.Degraded {
		body := p.theme.CitationDegraded.Render(
			wordWrap(citation.DegradedDetail(p.Citation.ID), innerWidth))
		return p.theme.CitationPanel.Width(minInt(innerWidth+4, p.Width-2)).Render(body)
	}

	rank := p.theme.CitationMarker.Render("[" + strconv.Itoa(p.Citation.Rank) + "]")
	name := p.theme.CitationFilename.Render(p.Citation.DisplayFilename())
	score := p.theme.CitationSimilarity.Render(p.Citation.DisplaySimilarity() + " match")
	header := rank + " " + name + "  " + score

	bar := p.renderSimilarityBar(innerWidth)

	excerpt := p.Citation.DisplayContent()
	if excerpt == "" {
		excerpt = "(no excerpt available)"
	}
	body := p.theme.CitationExcerpt.Render(wordWrap(excerpt, innerWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, header, bar, "", body)
	return p.theme.CitationPanel.Width(minInt(innerWidth+4, p.Width-2)).Render(content)
}

// renderSimilarityBar draws a proportional relevance bar under the header.
func (p *CitationPanel) renderSimilarityBar(width int) string {
	barWidth := width
	if barWidth > 30 {
		barWidth = 30
	}
	score := p.Citation.SimilarityScore
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	filled := int(score*float64(barWidth) + 0.5)

	filledStyle := lipgloss.NewStyle().Foreground(styles.CitationSimilarity)
	emptyStyle := lipgloss.NewStyle().Foreground(styles.OverlayDim)

	return filledStyle.Render(strings.Repeat("=", filled)) +
		emptyStyle.Render(strings.Repeat("-", barWidth-filled))
}

// =============================================================================
// SOURCE LIST
// =============================================================================

// SourceList renders the footer listing every source behind a reply.
type SourceList struct {
	Citations    citation.Set
	SelectedRank int
	Width        int
	theme        *styles.Theme
}

// NewSourceList creates a source list for one turn's citation set.
func NewSourceList(set citation.Set, theme *styles.Theme) *SourceList {
	return &SourceList{
		Citations: set,
		Width:     80,
		theme:     theme,
	}
}

// SetWidth sets the list width.
func (sl *SourceList) SetWidth(width int) {
	sl.Width = width
}

// View renders the source list, one line per source in rank order.
func (sl *SourceList) View() string {
	ranked := sl.Citations.ByRank()
	if len(ranked) == 0 {
		return ""
	}

	label := sl.theme.SourceListLabel.Render("Sources")
	lines := []string{label}

	for _, c := range ranked {
		marker := "[" + strconv.Itoa(c.Rank) + "]"
		if c.Rank == sl.SelectedRank {
			marker = sl.theme.CitationMarkerSelected.Render(marker)
		} else {
			marker = sl.theme.CitationMarker.Render(marker)
		}

		// Truncate before styling; escape sequences have no display width.
		display := util.TruncateWidth(c.DisplayFilename(), sl.Width-16)
		name := sl.theme.CitationFilename.Render(display)
		score := sl.theme.CitationSimilarity.Render(c.DisplaySimilarity())

		lines = append(lines, "  "+marker+" "+name+" ("+score+")")
	}

	return strings.Join(lines, "\n")
}
