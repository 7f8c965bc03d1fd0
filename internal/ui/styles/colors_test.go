// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the ragchat TUI.
package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// COLOR DEFINITION TESTS
// =============================================================================

func TestAdaptiveColorsDefined(t *testing.T) {
	colors := []struct {
		name  string
		color lipgloss.AdaptiveColor
	}{
		{"Purple", Purple},
		{"Cyan", Cyan},
		{"Emerald", Emerald},
		{"Rose", Rose},
		{"Amber", Amber},
		{"Surface", Surface},
		{"SurfaceDim", SurfaceDim},
		{"Overlay", Overlay},
		{"TextPrimary", TextPrimary},
		{"TextSecondary", TextSecondary},
		{"TextMuted", TextMuted},
		{"CitationMarker", CitationMarker},
		{"CitationFilename", CitationFilename},
		{"CitationSimilarity", CitationSimilarity},
		{"CitationDegraded", CitationDegraded},
	}

	for _, c := range colors {
		if c.color.Light == "" || c.color.Dark == "" {
			t.Errorf("%s should define both light and dark variants", c.name)
		}
		if !strings.HasPrefix(c.color.Light, "#") {
			t.Errorf("%s light variant should be a hex color, got %q", c.name, c.color.Light)
		}
		if !strings.HasPrefix(c.color.Dark, "#") {
			t.Errorf("%s dark variant should be a hex color, got %q", c.name, c.color.Dark)
		}
	}
}

func TestBubbleColorsDefined(t *testing.T) {
	colors := []struct {
		name  string
		color lipgloss.AdaptiveColor
	}{
		{"UserBubbleBg", UserBubbleBg},
		{"UserBubbleFg", UserBubbleFg},
		{"AssistantBubbleBg", AssistantBubbleBg},
		{"AssistantBubbleFg", AssistantBubbleFg},
		{"SystemBubbleBg", SystemBubbleBg},
		{"SystemBubbleFg", SystemBubbleFg},
	}

	for _, c := range colors {
		if c.color.Light == "" || c.color.Dark == "" {
			t.Errorf("%s should define both light and dark variants", c.name)
		}
	}
}

// =============================================================================
// ACCESSIBILITY TESTS
// =============================================================================

func TestStatusIndicatorsAreASCII(t *testing.T) {
	indicators := []struct {
		name  string
		value string
	}{
		{"Success", StatusIndicators.Success},
		{"Error", StatusIndicators.Error},
		{"Warning", StatusIndicators.Warning},
		{"Info", StatusIndicators.Info},
		{"Pending", StatusIndicators.Pending},
		{"Active", StatusIndicators.Active},
	}

	for _, ind := range indicators {
		if ind.value == "" {
			t.Errorf("StatusIndicators.%s should not be empty", ind.name)
		}
		for _, r := range ind.value {
			if r > 127 {
				t.Errorf("StatusIndicators.%s contains non-ASCII rune %q", ind.name, r)
			}
		}
	}
}

func TestRenderHelpers(t *testing.T) {
	tests := []struct {
		name     string
		rendered string
		want     string
	}{
		{"success", RenderSuccess("indexed"), StatusIndicators.Success},
		{"error", RenderError("failed"), StatusIndicators.Error},
		{"warning", RenderWarning("degraded"), StatusIndicators.Warning},
		{"info", RenderInfo("connected"), StatusIndicators.Info},
	}

	for _, tt := range tests {
		if !strings.Contains(tt.rendered, tt.want) {
			t.Errorf("%s: expected indicator %q in output %q", tt.name, tt.want, tt.rendered)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	ok := RenderStatus(true, "upload complete")
	if !strings.Contains(ok, StatusIndicators.Success) {
		t.Errorf("success status should carry the success indicator, got %q", ok)
	}

	fail := RenderStatus(false, "upload failed")
	if !strings.Contains(fail, StatusIndicators.Error) {
		t.Errorf("failure status should carry the error indicator, got %q", fail)
	}
}
