// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP/SSE client for the RAG assistant
// backend.
package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SSE READER TESTS
// =============================================================================

func TestSSEReaderNamedEvents(t *testing.T) {
	raw := "event: text_chunk\ndata: {\"chunk\":\"hi\"}\n\n" +
		"event: complete\ndata: {}\n\n"
	r := NewSSEReader(strings.NewReader(raw))

	name, data, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "text_chunk", name)
	assert.JSONEq(t, `{"chunk":"hi"}`, string(data))

	name, _, err = r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "complete", name)

	_, _, err = r.ReadEvent()
	assert.Equal(t, io.EOF, err)
}

func TestSSEReaderMultilineDataAndCRLF(t *testing.T) {
	raw := "event: text_chunk\r\ndata: line one\r\ndata: line two\r\n\r\n"
	r := NewSSEReader(strings.NewReader(raw))

	name, data, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "text_chunk", name)
	assert.Equal(t, "line one\nline two", string(data))
}

func TestSSEReaderIgnoresCommentsAndIDs(t *testing.T) {
	raw := ": keepalive\nid: 42\nretry: 1000\nevent: complete\ndata: {}\n\n"
	r := NewSSEReader(strings.NewReader(raw))

	name, _, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "complete", name)
}

func TestSSEReaderFlushesDataAtEOF(t *testing.T) {
	r := NewSSEReader(strings.NewReader("data: tail\n"))

	_, data, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "tail", string(data))
}

// =============================================================================
// CHAT STREAM TESTS
// =============================================================================

// sseHandler writes a scripted event sequence in SSE wire format.
func sseHandler(t *testing.T, events []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/stream", r.URL.Path)

		// The chat payload travels URL-encoded in the data parameter.
		var req ChatRequest
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("data")), &req))
		assert.NotEmpty(t, req.ID)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, e := range events {
			_, _ = io.WriteString(w, e)
		}
	}
}

func TestChatStreamDeliversEventsInOrder(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		"event: citation_data\ndata: {\"citations\":{\"a\":{\"rank\":1,\"filename\":\"doc.txt\",\"similarity_score\":0.9,\"content\":\"x\"}}}\n\n",
		"event: text_chunk\ndata: {\"chunk\":\"Result \"}\n\n",
		"event: text_chunk\ndata: {\"chunk\":\"[1]\"}\n\n",
		"event: complete\ndata: {}\n\n",
	}))
	defer srv.Close()

	var types []EventType
	var text strings.Builder
	var citations int

	err := NewClient(srv.URL).ChatStream(context.Background(),
		NewChatRequest("chat-1", "question", nil),
		func(e StreamEvent) {
			types = append(types, e.Type)
			switch e.Type {
			case EventTextChunk:
				text.WriteString(e.Chunk)
			case EventCitationData:
				citations = len(e.Citations)
			}
		})

	require.NoError(t, err)
	assert.Equal(t, []EventType{EventOpen, EventCitationData, EventTextChunk, EventTextChunk, EventComplete}, types)
	assert.Equal(t, "Result [1]", text.String())
	assert.Equal(t, 1, citations)
}

func TestChatStreamErrorEvent(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		"event: text_chunk\ndata: {\"chunk\":\"partial\"}\n\n",
		"event: error\ndata: {\"error\":\"index unavailable\"}\n\n",
	}))
	defer srv.Close()

	var sawError bool
	err := NewClient(srv.URL).ChatStream(context.Background(),
		NewChatRequest("chat-1", "q", nil),
		func(e StreamEvent) {
			if e.Type == EventError {
				sawError = true
				assert.Equal(t, "index unavailable", e.Message)
			}
		})

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, "index unavailable", streamErr.Message)
	assert.True(t, sawError, "error event must also reach the callback")
}

func TestChatStreamSkipsMalformedEvents(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{
		"event: text_chunk\ndata: not json\n\n",
		"event: text_chunk\ndata: {\"chunk\":\"good\"}\n\n",
		"event: complete\ndata: {}\n\n",
	}))
	defer srv.Close()

	var chunks []string
	err := NewClient(srv.URL).ChatStream(context.Background(),
		NewChatRequest("c", "q", nil),
		func(e StreamEvent) {
			if e.Type == EventTextChunk {
				chunks = append(chunks, e.Chunk)
			}
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, chunks)
}

func TestChatStreamHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).ChatStream(context.Background(),
		NewChatRequest("c", "q", nil), func(StreamEvent) {})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}
