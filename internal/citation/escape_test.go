// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation implements the citation-annotation pipeline.
package citation

import (
	"strings"
	"testing"
)

// =============================================================================
// HTML-SAFETY GUARD TESTS
// =============================================================================

func TestEscapeEncodesSpecials(t *testing.T) {
	got := Escape(`<b>"fish" & 'chips'</b>`)
	want := "&lt;b&gt;&quot;fish&quot; &amp; &#39;chips&#39;&lt;/b&gt;"
	if got != want {
		t.Errorf("Escape mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestEscapeExceptMarkupEqualsEscapeWithoutSpans(t *testing.T) {
	inputs := []string{
		"plain text",
		"<script>alert(1)</script>",
		`quotes " and ' and & entities`,
		"",
	}
	for _, in := range inputs {
		if got, want := EscapeExceptMarkup(in), Escape(in); got != want {
			t.Errorf("EscapeExceptMarkup(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeExceptMarkupPreservesSpans(t *testing.T) {
	span := Render(Citation{ID: "a", Rank: 1, Filename: "doc.txt", SimilarityScore: 0.87, Content: "excerpt"})
	text := "<b>see</b> " + span + " & done"

	got := EscapeExceptMarkup(text)

	if !strings.Contains(got, span) {
		t.Error("Rendered span must round-trip byte-for-byte")
	}
	if !strings.Contains(got, "&lt;b&gt;see&lt;/b&gt;") {
		t.Errorf("Free text before span must be escaped, got %q", got)
	}
	if !strings.Contains(got, "&amp; done") {
		t.Errorf("Free text after span must be escaped, got %q", got)
	}
}

func TestEscapeExceptMarkupMultipleAndDuplicateSpans(t *testing.T) {
	s1 := Render(Citation{ID: "a", Rank: 1, Filename: "a.txt", Content: "x"})
	s2 := Render(Citation{ID: "b", Rank: 2, Filename: "b.txt", Content: "y"})
	text := s1 + " <x> " + s2 + " <y> " + s1

	got := EscapeExceptMarkup(text)

	if strings.Count(got, s1) != 2 || strings.Count(got, s2) != 1 {
		t.Errorf("All span occurrences must survive, got %q", got)
	}
	if !strings.Contains(got, "&lt;x&gt;") || !strings.Contains(got, "&lt;y&gt;") {
		t.Errorf("Text between spans must be escaped, got %q", got)
	}
}

func TestEscapeExceptMarkupPlaceholderCollision(t *testing.T) {
	// Document content that looks like a placeholder token must survive
	// unchanged alongside a real span.
	span := Render(Citation{ID: "a", Rank: 1, Filename: "a.txt", Content: "x"})
	text := "literal __CITATION_0__ token " + span

	got := EscapeExceptMarkup(text)

	if !strings.Contains(got, "literal __CITATION_0__ token") {
		t.Errorf("Placeholder-shaped content must not be clobbered, got %q", got)
	}
	if !strings.Contains(got, span) {
		t.Errorf("Span must still round-trip, got %q", got)
	}
}
