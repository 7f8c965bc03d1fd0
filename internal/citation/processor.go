// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation implements the citation-annotation pipeline.
//
// This file implements the response processor, the orchestrator of the
// pipeline: it extracts the out-of-band citation metadata block from a
// response, strips it from the visible text, substitutes markers with
// rendered spans, and escapes the remaining free text.
//
// A Processor instance is owned by one chat session. Constructing it per
// session keeps citation state scoped to the turn being processed; there
// is no process-wide shared processor.
package citation

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"
)

// =============================================================================
// PROCESSOR
// =============================================================================

// Logger is the diagnostic collaborator the processor reports parse
// problems to. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Processor orchestrates metadata extraction, marker substitution, and
// escaping for one chat session. Not safe for concurrent use; each
// session owns its own instance.
type Processor struct {
	logger Logger
}

// NewProcessor creates a processor logging diagnostics to the standard
// logger.
func NewProcessor() *Processor {
	return &Processor{logger: log.Default()}
}

// WithLogger sets the diagnostic logger.
func (p *Processor) WithLogger(l Logger) *Processor {
	if l != nil {
		p.logger = l
	}
	return p
}

// Result is the outcome of processing one response.
type Result struct {
	// Markup is the HTML-safe annotated text.
	Markup string
	// Citations is the citation set extracted from the response
	// metadata block. Empty when the block was absent or unparseable.
	Citations Set
	// HasCitations reports whether at least one marker was resolved
	// and substituted.
	HasCitations bool
}

// sentinelPattern matches the out-of-band citation metadata block
// embedded in buffered chat responses.
var sentinelPattern = regexp.MustCompile(`(?s)<!-- CITATION_DATA: (.*?) -->`)

// metadataRepairer undoes the known upstream double-escaping defect:
// literal backslash-n becomes a space, literal backslash-r is dropped,
// and escaped quotes become plain quotes.
var metadataRepairer = strings.NewReplacer(`\n`, " ", `\r`, "", `\"`, `"`)

// Process runs the full pipeline over a buffered response: extract and
// strip the metadata block, substitute resolvable markers, escape the
// rest. Processing never fails; malformed metadata degrades to an empty
// citation set with unresolved markers left as literal text.
func (p *Processor) Process(raw string) Result {
	set := p.parseMetadata(raw)
	clean := strings.TrimSpace(sentinelPattern.ReplaceAllString(raw, ""))

	markup, resolved := p.annotate(clean, set)
	return Result{Markup: markup, Citations: set, HasCitations: resolved}
}

// ProcessDelta applies the same substitution and escaping to a
// complete-so-far streamed buffer, with the citation set delivered out of
// band by the stream. Every call re-renders the full buffer; callers show
// raw deltas in between and invoke this once at stream completion.
func (p *Processor) ProcessDelta(text string, set Set) string {
	markup, _ := p.annotate(text, set)
	return markup
}

// =============================================================================
// METADATA EXTRACTION
// =============================================================================

// parseMetadata extracts and parses the sentinel block. A direct parse is
// attempted first; on failure a repair pass unescapes the known corruption
// and retries. Both failing yields an empty set and a diagnostic, not an
// error: the chat text must always render.
func (p *Processor) parseMetadata(raw string) Set {
	m := sentinelPattern.FindStringSubmatch(raw)
	if m == nil {
		return Set{}
	}

	var set Set
	if err := json.Unmarshal([]byte(m[1]), &set); err == nil {
		return set
	} else if repairErr := json.Unmarshal([]byte(metadataRepairer.Replace(m[1])), &set); repairErr == nil {
		return set
	} else {
		p.logger.Printf("citation: metadata parse failed (direct: %v; repaired: %v)", err, repairErr)
		return Set{}
	}
}

// =============================================================================
// MARKER SUBSTITUTION
// =============================================================================

// annotate substitutes every resolvable marker reference in text with
// rendered span markup and escapes the remaining free text. Returns the
// final markup and whether any reference was resolved.
//
// Substitution is two-phase: markers are first replaced with placeholder
// tokens, the remaining free text is escaped, and only then are the
// placeholders expanded into rendered spans. A marker pattern can
// therefore never match inside rendered markup (the "[N]" pattern would
// otherwise match a freshly inserted span's own "[N]" label).
// Already-rendered spans in the input are masked the same way, so
// re-annotating previously processed output leaves its spans untouched.
func (p *Processor) annotate(text string, set Set) (string, bool) {
	prefix := placeholderPrefix(text)
	restore := make(map[string]string) // placeholder -> final markup
	next := 0
	mask := func(markup string) string {
		tok := placeholder(prefix, next)
		next++
		restore[tok] = markup
		return tok
	}

	for _, span := range SpanPattern.FindAllString(text, -1) {
		text = strings.Replace(text, span, mask(span), 1)
	}

	resolved := false
	ranks := set.rankIndex()
	doneRank := make(map[int]bool)
	doneID := make(map[string]bool)

	for _, mk := range Scan(text) {
		switch mk.Dialect {
		case DialectSource, DialectBracket:
			if doneRank[mk.Rank] {
				continue
			}
			c, ok := ranks[mk.Rank]
			if !ok {
				continue // unresolvable: leave the literal text
			}
			doneRank[mk.Rank] = true
			tok := mask(Render(c))
			for _, pat := range RankPatterns(mk.Rank) {
				text = pat.ReplaceAllString(text, tok)
			}
			resolved = true
		case DialectExplicitID:
			if doneID[mk.ID] {
				continue
			}
			c, ok := set.Get(mk.ID)
			if !ok {
				continue
			}
			doneID[mk.ID] = true
			text = IDPattern(mk.ID).ReplaceAllString(text, mask(Render(c)))
			resolved = true
		}
	}

	escaped := EscapeExceptMarkup(text)

	for tok, markup := range restore {
		escaped = strings.ReplaceAll(escaped, tok, markup)
	}
	return escaped, resolved
}
