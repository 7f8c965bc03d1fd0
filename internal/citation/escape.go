// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation implements the citation-annotation pipeline.
//
// This file implements the HTML-safety guard: entity-encoding free text
// while round-tripping already-rendered citation spans untouched.
package citation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// htmlEscaper entity-encodes the five characters that can change meaning
// when the text is later interpreted as HTML.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// htmlUnescaper reverses htmlEscaper. Single pass, so double-encoded
// sequences decode one level only.
var htmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&amp;", "&",
)

// Escape entity-encodes arbitrary free text.
func Escape(text string) string {
	return htmlEscaper.Replace(text)
}

// Unescape decodes the entities Escape produces.
func Unescape(text string) string {
	return htmlUnescaper.Replace(text)
}

// EscapeExceptMarkup entity-encodes text while leaving renderer-produced
// citation spans byte-for-byte intact. Spans are located structurally,
// swapped for placeholder tokens that cannot collide with document
// content, the remainder is escaped, and the spans are restored verbatim.
//
// For text containing no spans this is identical to Escape.
func EscapeExceptMarkup(text string) string {
	spans := SpanPattern.FindAllString(text, -1)
	if len(spans) == 0 {
		return Escape(text)
	}

	prefix := placeholderPrefix(text)
	masked := text
	for i, span := range spans {
		masked = strings.Replace(masked, span, placeholder(prefix, i), 1)
	}

	escaped := Escape(masked)

	for i, span := range spans {
		escaped = strings.Replace(escaped, placeholder(prefix, i), span, 1)
	}
	return escaped
}

// placeholder builds the i-th placeholder token. Tokens are plain
// word characters, so they pass through the entity encoder unchanged.
func placeholder(prefix string, i int) string {
	return fmt.Sprintf("%s%d__", prefix, i)
}

// placeholderPrefix picks a token prefix that does not occur in the
// document. The plain form almost always suffices; on collision a random
// suffix is appended until the prefix is unique.
func placeholderPrefix(text string) string {
	prefix := "__CITATION_"
	for strings.Contains(text, prefix) {
		nonce := make([]byte, 4)
		rand.Read(nonce)
		prefix = "__CITATION_" + hex.EncodeToString(nonce) + "_"
	}
	return prefix
}
