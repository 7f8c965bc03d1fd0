// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation implements the citation-annotation pipeline.
package citation

import (
	"testing"
)

// =============================================================================
// MARKER SCANNER TESTS
// =============================================================================

func TestScanFindsAllDialects(t *testing.T) {
	text := "Per Source 1: and later [2], see [citation:node-7] too"
	markers := Scan(text)

	if len(markers) != 3 {
		t.Fatalf("Expected 3 markers, got %d: %+v", len(markers), markers)
	}

	if markers[0].Dialect != DialectSource || markers[0].Rank != 1 {
		t.Errorf("Expected Source dialect rank 1 first, got %+v", markers[0])
	}
	if markers[0].Raw != "Source 1:" {
		t.Errorf("Expected raw 'Source 1:', got %q", markers[0].Raw)
	}
	if markers[1].Dialect != DialectBracket || markers[1].Rank != 2 {
		t.Errorf("Expected bracket dialect rank 2 second, got %+v", markers[1])
	}
	if markers[2].Dialect != DialectExplicitID || markers[2].ID != "node-7" {
		t.Errorf("Expected explicit-id 'node-7' third, got %+v", markers[2])
	}
}

func TestScanOrderedLeftToRight(t *testing.T) {
	markers := Scan("[3] then Source 1: then [2]")

	prev := -1
	for _, m := range markers {
		if m.Pos <= prev {
			t.Errorf("Markers not ordered by position: %+v", markers)
		}
		prev = m.Pos
	}
	if len(markers) != 3 {
		t.Fatalf("Expected 3 markers, got %d", len(markers))
	}
	if markers[0].Rank != 3 || markers[1].Rank != 1 || markers[2].Rank != 2 {
		t.Errorf("Wrong marker order: %+v", markers)
	}
}

func TestScanRecordsDuplicates(t *testing.T) {
	markers := Scan("[1] and again [1] and Source 1: once more")

	if len(markers) != 3 {
		t.Fatalf("Expected duplicates recorded, got %d markers", len(markers))
	}
	for _, m := range markers {
		if m.Rank != 1 {
			t.Errorf("Expected every marker to reference rank 1, got %+v", m)
		}
	}
}

func TestScanNoMarkers(t *testing.T) {
	if markers := Scan("plain text with no references"); len(markers) != 0 {
		t.Errorf("Expected no markers, got %+v", markers)
	}
}

func TestScanZeroRankIsRecordedLiterally(t *testing.T) {
	// "[0]" scans as a numeric marker; resolution later fails because
	// ranks are 1-based, leaving the literal text in place.
	markers := Scan("[0]")
	if len(markers) != 1 || markers[0].Rank != 0 {
		t.Fatalf("Expected rank-0 marker recorded, got %+v", markers)
	}
	// Negative numbers never match the numeric patterns.
	if markers := Scan("[-1]"); len(markers) != 0 {
		t.Errorf("Expected no marker for [-1], got %+v", markers)
	}
}

func TestScanExplicitIDDoesNotSpanBrackets(t *testing.T) {
	// An unterminated tag must not swallow following bracket markers.
	markers := Scan("[citation:broken [1]")
	if len(markers) != 1 || markers[0].Dialect != DialectBracket || markers[0].Rank != 1 {
		t.Errorf("Expected only the [1] marker, got %+v", markers)
	}
}

// =============================================================================
// SUBSTITUTION PATTERN TESTS
// =============================================================================

func TestRankPatternsMatchBothForms(t *testing.T) {
	pats := RankPatterns(12)
	if len(pats) != 2 {
		t.Fatalf("Expected 2 patterns, got %d", len(pats))
	}
	if !pats[0].MatchString("Source 12:") {
		t.Error("Source pattern should match 'Source 12:'")
	}
	if !pats[1].MatchString("[12]") {
		t.Error("Bracket pattern should match '[12]'")
	}
	if pats[1].MatchString("[1]") {
		t.Error("Bracket pattern for 12 must not match '[1]'")
	}
}

func TestIDPatternQuotesRegexMetacharacters(t *testing.T) {
	// Ids are user-controlled; special characters must match literally.
	pat := IDPattern("a.b*c+")
	if !pat.MatchString("[citation:a.b*c+]") {
		t.Error("Pattern should match the literal id")
	}
	if pat.MatchString("[citation:aXbbbc+]") {
		t.Error("Metacharacters must not be interpreted")
	}
}
