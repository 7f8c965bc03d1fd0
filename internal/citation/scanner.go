// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation implements the citation-annotation pipeline.
//
// This file implements the marker scanner: locating textual citation
// markers in raw model output. Two numeric dialects ("Source N:" and
// "[N]") and one explicit-id dialect ("[citation:ID]") are recognized.
package citation

import (
	"regexp"
	"sort"
	"strconv"
)

// =============================================================================
// MARKER DIALECTS
// =============================================================================

// Dialect identifies the textual convention a marker was written in.
type Dialect int

const (
	// DialectSource is the "Source N:" convention.
	DialectSource Dialect = iota
	// DialectBracket is the "[N]" convention.
	DialectBracket
	// DialectExplicitID is the "[citation:ID]" tag convention.
	DialectExplicitID
)

// String returns a short name for the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectSource:
		return "numeric-source"
	case DialectBracket:
		return "numeric-bracket"
	case DialectExplicitID:
		return "explicit-id"
	default:
		return "unknown"
	}
}

// Marker is one occurrence of a citation marker in raw text.
type Marker struct {
	Pos     int     // Byte offset of the match start
	Dialect Dialect // Which convention matched
	Rank    int     // Numeric reference (numeric dialects only)
	ID      string  // Id reference (explicit-id dialect only)
	Raw     string  // The exact matched text
}

// Marker patterns. The explicit-id body excludes brackets so a missing
// closing tag cannot swallow the rest of the line.
var (
	sourceMarkerPattern   = regexp.MustCompile(`Source (\d+):`)
	bracketMarkerPattern  = regexp.MustCompile(`\[(\d+)\]`)
	explicitMarkerPattern = regexp.MustCompile(`\[citation:([^\[\]]+)\]`)
)

// =============================================================================
// SCANNER
// =============================================================================

// Scan finds every non-overlapping citation marker in text, left to right.
// Duplicate references are each recorded; deduplication happens at
// substitution time. Scan must only ever be run over raw, not-yet-annotated
// text: the processor masks renderer output before scanning.
func Scan(text string) []Marker {
	var markers []Marker

	for _, m := range sourceMarkerPattern.FindAllStringSubmatchIndex(text, -1) {
		rank, _ := strconv.Atoi(text[m[2]:m[3]])
		markers = append(markers, Marker{
			Pos:     m[0],
			Dialect: DialectSource,
			Rank:    rank,
			Raw:     text[m[0]:m[1]],
		})
	}
	for _, m := range bracketMarkerPattern.FindAllStringSubmatchIndex(text, -1) {
		rank, _ := strconv.Atoi(text[m[2]:m[3]])
		markers = append(markers, Marker{
			Pos:     m[0],
			Dialect: DialectBracket,
			Rank:    rank,
			Raw:     text[m[0]:m[1]],
		})
	}
	for _, m := range explicitMarkerPattern.FindAllStringSubmatchIndex(text, -1) {
		markers = append(markers, Marker{
			Pos:     m[0],
			Dialect: DialectExplicitID,
			ID:      text[m[2]:m[3]],
			Raw:     text[m[0]:m[1]],
		})
	}

	sort.SliceStable(markers, func(i, j int) bool { return markers[i].Pos < markers[j].Pos })
	return markers
}

// =============================================================================
// SUBSTITUTION PATTERNS
// =============================================================================

// RankPatterns compiles the match patterns for every textual form of a
// numeric reference: "Source N:" and "[N]". Substitution replaces all
// occurrences of both forms with the same replacement.
func RankPatterns(rank int) []*regexp.Regexp {
	n := strconv.Itoa(rank)
	return []*regexp.Regexp{
		regexp.MustCompile(`Source ` + n + `:`),
		regexp.MustCompile(`\[` + n + `\]`),
	}
}

// IDPattern compiles the match pattern for an explicit-id reference.
// The id is user-controlled data and is quoted before compilation;
// building a pattern from a raw id is never acceptable.
func IDPattern(id string) *regexp.Regexp {
	return regexp.MustCompile(`\[citation:` + regexp.QuoteMeta(id) + `\]`)
}
