// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation implements the citation-annotation pipeline.
//
// This file implements the renderer: converting a resolved citation
// reference into an inert inline span. The span carries the full record
// in a data attribute plus stable hook attributes (data-rank,
// data-citation-id, data-citation-number) that presentation layers bind
// hover/click handlers to. The renderer itself performs no side effects.
package citation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// SpanClass is the CSS class carried by every rendered citation span.
// Presentation layers locate spans structurally via SpanPattern.
const SpanClass = "citation-number"

// SpanPattern structurally matches any span produced by the renderer.
// The safety guard uses it to shield rendered markup from entity
// encoding, and terminal frontends use it to translate spans into
// styled inline labels.
var SpanPattern = regexp.MustCompile(`(?s)<span class="` + SpanClass + `"[^>]*>.*?</span>`)

// spanHookPattern extracts the hook attributes back out of a rendered span.
var spanHookPattern = regexp.MustCompile(
	`<span class="` + SpanClass + `" data-rank="(\d+)" data-citation-id="([^"]*)"`)

// Render produces the inline markup for one resolved citation. The
// visible label is the rank in brackets. The serialized record sits in
// the data-citation attribute with quotes entity-escaped so it is inert
// inside the attribute value.
func Render(c Citation) string {
	payload, err := json.Marshal(c)
	if err != nil {
		// A Citation is plain strings and numbers; Marshal cannot
		// realistically fail. Keep the span well-formed regardless.
		payload = []byte("{}")
	}
	attr := strings.ReplaceAll(string(payload), `"`, "&quot;")

	return fmt.Sprintf(
		`<span class="%s" data-rank="%d" data-citation-id="%s" data-citation-number="%d" data-citation="%s">[%d]</span>`,
		SpanClass, c.Rank, attributeEscape(c.ID), c.Rank, attr, c.Rank)
}

// SpanRef is a reference recovered from a rendered span's hook attributes.
type SpanRef struct {
	Rank int
	ID   string
}

// ParseSpan recovers the hook reference from a rendered span. Presentation
// adapters use this to bind detail-view handlers without re-deriving the
// citation set.
func ParseSpan(span string) (SpanRef, bool) {
	m := spanHookPattern.FindStringSubmatch(span)
	if m == nil {
		return SpanRef{}, false
	}
	ref := SpanRef{ID: attributeUnescape(m[2])}
	fmt.Sscanf(m[1], "%d", &ref.Rank)
	return ref, true
}

// StripMarkup converts annotated markup back to plain text: every
// citation span collapses to its visible [n] label and the guard's
// entity encoding is decoded. Copy and export surfaces use this to get
// the reply as readable text.
func StripMarkup(markup string) string {
	plain := SpanPattern.ReplaceAllStringFunc(markup, func(span string) string {
		if ref, ok := ParseSpan(span); ok {
			return fmt.Sprintf("[%d]", ref.Rank)
		}
		return span
	})
	return Unescape(plain)
}

// DegradedDetail is the detail-view text shown when a reference cannot be
// resolved from the store or fetched on demand. Lookups degrade to this
// message; they never fail silently.
func DegradedDetail(id string) string {
	return fmt.Sprintf("reference %s: unable to load source", id)
}

// attributeEscape makes a string inert inside a double-quoted attribute.
func attributeEscape(s string) string {
	return attributeEscaper.Replace(s)
}

// attributeUnescape reverses attributeEscape.
func attributeUnescape(s string) string {
	return attributeUnescaper.Replace(s)
}

var (
	attributeEscaper   = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")
	attributeUnescaper = strings.NewReplacer("&quot;", `"`, "&lt;", `<`, "&gt;", `>`, "&amp;", `&`)
)
