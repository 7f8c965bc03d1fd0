// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ragchat TUI.

This package defines the complete color palette and the composed Theme
used throughout the application. All colors use Lip Gloss AdaptiveColor
for automatic light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Purple - Primary accent for assistant messages and selections
  - Cyan - Brand color for info, commands, and citation markers
  - Emerald - Success states and the connected indicator
  - Amber - Warnings and degraded retrieval states
  - Rose - Errors and critical alerts

## Citation Colors

Inline citation markers and the source detail panel use their own
tokens so the annotation layer stays visually consistent:

	CitationMarker     - Inline [n] reference numbers
	CitationFilename   - Source filename in panels and footers
	CitationSimilarity - Relevance percentage next to a source
	CitationExcerpt    - Retrieved chunk text inside the panel
	CitationDegraded   - Placeholder tone for unresolvable sources

## Surface and Text Colors

Layered surfaces for depth (Surface, SurfaceDim, Overlay) and a
three-level text hierarchy (TextPrimary, TextSecondary, TextMuted).

# Theme (theme.go)

Theme composes the palette into ready-to-use lipgloss styles for every
component: header, message bubbles, citation panel, input area, status
bar, spinner, error boxes, and the welcome screen.

	theme := styles.NewThemeForMode(cfg.UI.Theme) // "dark", "light", or "auto"
	fmt.Println(theme.CitationMarker.Render("[1]"))

The theme also tracks terminal dimensions and exposes GetLayoutMode for
responsive layouts (narrow, medium, wide).

# Accessibility

StatusIndicators provide ASCII shape indicators ([OK], [X], [!], [i])
alongside high-contrast color pairs so state is never communicated by
color alone.
*/
package styles
