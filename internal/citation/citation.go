// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation implements the citation-annotation pipeline for RAG
// assistant replies: extracting citation metadata from a response, mapping
// textual markers ("Source N:", "[N]", "[citation:ID]") to citation records,
// and producing HTML-safe annotated markup that a presentation layer can
// bind interaction handlers to.
//
// The pipeline is presentation-agnostic: it is a pure transformation from
// text to text. Nothing here touches the network or a host DOM.
package citation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// CITATION RECORD
// =============================================================================

// Citation is one retrieved source chunk attributed to an assistant reply.
type Citation struct {
	// ID is the opaque node/document-chunk identifier. Unique within a
	// turn's citation set and stable across re-renders of the same turn.
	ID string `json:"id,omitempty"`

	// Rank is the 1-based display order. It is also the number that
	// numeric markers in the reply text refer to.
	Rank int `json:"rank"`

	// Filename is the source document name as stored server-side. It may
	// carry a category-code prefix and a fixed extension; those are
	// stripped for display only, never here.
	Filename string `json:"filename"`

	// SimilarityScore is the retrieval score, conventionally in [0,1].
	// Display-only; no invariant is enforced.
	SimilarityScore float64 `json:"similarity_score"`

	// Content is the excerpt from the source chunk. May carry a
	// "Source N: " prefix that display strips.
	Content string `json:"content"`
}

// filenamePrefixPattern matches the structured category-code prefix the
// ingestion side prepends to FAQ documents (e.g. "常见问题类-03_").
var filenamePrefixPattern = regexp.MustCompile(`^常见问题类-\d+_`)

// contentPrefixPattern matches a leading "Source N: " marker in an excerpt.
var contentPrefixPattern = regexp.MustCompile(`^Source \d+:\s*`)

// DisplayFilename returns the filename with the category-code prefix and
// the ".txt" extension stripped. The stored Filename is not mutated.
func (c Citation) DisplayFilename() string {
	name := filenamePrefixPattern.ReplaceAllString(c.Filename, "")
	return strings.TrimSuffix(name, ".txt")
}

// DisplaySimilarity returns the similarity score as a rounded percentage,
// e.g. 0.874 -> "87%".
func (c Citation) DisplaySimilarity() string {
	return fmt.Sprintf("%d%%", int(c.SimilarityScore*100+0.5))
}

// DisplayContent returns the excerpt with any leading "Source N: " prefix
// stripped for display.
func (c Citation) DisplayContent() string {
	return contentPrefixPattern.ReplaceAllString(c.Content, "")
}

// =============================================================================
// CITATION SET
// =============================================================================

// Set maps citation id to citation record, scoped to exactly one assistant
// turn. A set is replaced wholesale when a new turn's metadata arrives;
// sets are never merged across turns.
type Set map[string]Citation

// ByRank returns the citations sorted by rank. The id is copied into each
// returned record so callers see the key even when the serialized record
// omitted it. Ranks are unique within a set but need not be contiguous.
func (s Set) ByRank() []Citation {
	out := make([]Citation, 0, len(s))
	for id, c := range s {
		c.ID = id
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// FindRank returns the citation with the given rank.
func (s Set) FindRank(rank int) (Citation, bool) {
	for id, c := range s {
		if c.Rank == rank {
			c.ID = id
			return c, true
		}
	}
	return Citation{}, false
}

// Get returns the citation for an id.
func (s Set) Get(id string) (Citation, bool) {
	c, ok := s[id]
	if ok {
		c.ID = id
	}
	return c, ok
}

// rankIndex builds a rank -> citation map, resolving duplicate ranks in
// rank-sorted id order so the mapping is deterministic.
func (s Set) rankIndex() map[int]Citation {
	idx := make(map[int]Citation, len(s))
	for _, c := range s.ByRank() {
		if _, taken := idx[c.Rank]; !taken {
			idx[c.Rank] = c
		}
	}
	return idx
}

// =============================================================================
// CITATION STORE
// =============================================================================

// Store holds the citation set for the current turn plus a cache of
// records fetched on demand by id (hover lookups for the explicit-id
// dialect). It is owned by a single session and is not safe for
// concurrent use.
type Store struct {
	set     Set
	fetched map[string]Citation
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{set: Set{}, fetched: make(map[string]Citation)}
}

// Replace installs a new turn's citation set wholesale. The previous set
// and any fetched records from the previous turn are discarded.
func (st *Store) Replace(set Set) {
	if set == nil {
		set = Set{}
	}
	st.set = set
	st.fetched = make(map[string]Citation)
}

// Set returns the current citation set.
func (st *Store) Set() Set {
	return st.set
}

// Get resolves a citation by id, checking the turn's set first and then
// the fetched-record cache.
func (st *Store) Get(id string) (Citation, bool) {
	if c, ok := st.set.Get(id); ok {
		return c, true
	}
	c, ok := st.fetched[id]
	return c, ok
}

// GetRank resolves a citation by rank from the turn's set.
func (st *Store) GetRank(rank int) (Citation, bool) {
	return st.set.FindRank(rank)
}

// CacheFetched stores a record retrieved via the on-demand citation
// endpoint so later lookups for the same id need no network call.
func (st *Store) CacheFetched(id string, c Citation) {
	c.ID = id
	st.fetched[id] = c
}

// Len returns the number of citations in the current set.
func (st *Store) Len() int {
	return len(st.set)
}
