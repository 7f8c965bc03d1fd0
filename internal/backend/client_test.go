// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP/SSE client for the RAG assistant
// backend.
package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChatPostsRequestAndReturnsBody(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`<!-- CITATION_DATA: {"a":{"rank":1}} -->the reply`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	req := NewChatRequest("chat-1", "hello", nil)

	body, err := client.Chat(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, body, "the reply")
	assert.Contains(t, body, "CITATION_DATA")

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
	assert.NotNil(t, got.Messages[0].Annotations, "annotations must serialize as [], not null")
}

func TestChatRetriesTransientFailures(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL).Chat(context.Background(), NewChatRequest("c", "q", nil))
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, 3, attempts)
}

func TestChatDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Chat(context.Background(), NewChatRequest("c", "q", nil))
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

// =============================================================================
// UPLOAD TESTS
// =============================================================================

func TestUploadChatFileEncodesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat/file", r.URL.Path)

		var req struct {
			Name   string `json:"name"`
			Base64 string `json:"base64"`
			Params string `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "notes.txt", req.Name)

		raw, err := base64.StdEncoding.DecodeString(req.Base64)
		require.NoError(t, err)
		assert.Equal(t, "file body", string(raw))

		// Params is a JSON string, not a nested object.
		var params struct {
			Size int64  `json:"size"`
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal([]byte(req.Params), &params))
		assert.Equal(t, int64(9), params.Size)
		assert.Equal(t, "text/plain", params.Type)

		json.NewEncoder(w).Encode(map[string]string{"id": "file-7"})
	}))
	defer srv.Close()

	ref, err := NewClient(srv.URL).UploadChatFile(context.Background(), "notes.txt", []byte("file body"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "file-7", ref.ID)
	assert.Equal(t, "notes.txt", ref.Name)
}

// =============================================================================
// CITATION LOOKUP TESTS
// =============================================================================

func TestFetchCitationPrefersTextField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/citation/node-1", r.URL.Path)
		w.Write([]byte(`{"id":"node-1","text":"excerpt","metadata":{"file_name":"doc.txt"}}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL).FetchCitation(context.Background(), "node-1")
	require.NoError(t, err)
	assert.Equal(t, "node-1", rec.ID)
	assert.Equal(t, "excerpt", rec.Content)
	assert.Equal(t, "doc.txt", rec.Filename)
}

func TestFetchCitationFallsBackToContentField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":"older shape","metadata":{}}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL).FetchCitation(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "older shape", rec.Content)
	assert.Equal(t, "x", rec.ID, "id falls back to the requested id")
}

func TestFetchCitationNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchCitation(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestListDocumentsBothShapes(t *testing.T) {
	bare, err := UnmarshalDocuments([]byte(`[{"id":"1","name":"a.txt"}]`))
	require.NoError(t, err)
	require.Len(t, bare, 1)

	wrapped, err := UnmarshalDocuments([]byte(`{"documents":[{"id":"2","name":"b.txt"}]}`))
	require.NoError(t, err)
	require.Len(t, wrapped, 1)
	assert.Equal(t, "b.txt", wrapped[0].Name)
}

func TestDeleteDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/documents/doc-3", r.URL.Path)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL).DeleteDocument(context.Background(), "doc-3"))
}

func TestUploadDocumentMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/documents/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "guide.pdf", hdr.Filename)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).UploadDocument(context.Background(), "guide.pdf", []byte("%PDF-"))
	require.NoError(t, err)
}
