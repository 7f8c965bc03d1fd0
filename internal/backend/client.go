// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP/SSE client for the RAG assistant
// backend.
//
// This file implements the buffered endpoints: chat POST, chat-file
// upload, citation lookup, and document management. Transient failures
// are retried with exponential backoff; response bodies are size-capped.
package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/citation"
)

// Configuration constants for the backend client.
const (
	// DefaultBaseURL is the default backend address.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for buffered requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize caps response bodies to keep a misbehaving server
	// from exhausting memory.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Shared HTTP clients with connection pooling. The streaming client has
// no client-level timeout; stream lifetime is controlled via context.
var (
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: DefaultTimeout,
	}

	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
)

// Error variables for common backend failures.
var (
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrResponseTooLarge indicates the response exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Body)
}

// Client is a client for the RAG assistant backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	streaming  *http.Client
	maxRetries int
	timeout    time.Duration
}

// NewClient creates a client for the given backend base URL. An empty
// URL falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		streaming:  sharedStreamingClient,
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
	}
}

// WithTimeout sets the buffered-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	c.httpClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
		Timeout:   timeout,
	}
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// CHAT (BUFFERED)
// =============================================================================

// Chat performs a buffered chat turn via POST /api/chat. The response is
// the assistant reply as plain text, possibly carrying the embedded
// citation-metadata sentinel block; callers hand it to the citation
// processor.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	data, err := c.postWithRetry(ctx, c.baseURL+"/api/chat", "application/json", body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// CHAT FILE UPLOAD
// =============================================================================

// UploadChatFile uploads one file through POST /api/chat/file for use in
// chat annotations. The content travels base64-encoded with a JSON-string
// params field, per the backend convention.
func (c *Client) UploadChatFile(ctx context.Context, name string, data []byte, mimeType string) (FileRef, error) {
	params, err := json.Marshal(chatFileParams{Size: int64(len(data)), Type: mimeType})
	if err != nil {
		return FileRef{}, fmt.Errorf("failed to marshal upload params: %w", err)
	}

	body, err := json.Marshal(chatFileRequest{
		Name:   name,
		Base64: base64.StdEncoding.EncodeToString(data),
		Params: string(params),
	})
	if err != nil {
		return FileRef{}, fmt.Errorf("failed to marshal upload request: %w", err)
	}

	respBody, err := c.postWithRetry(ctx, c.baseURL+"/api/chat/file", "application/json", body)
	if err != nil {
		return FileRef{}, fmt.Errorf("upload of %q failed: %w", name, err)
	}

	var ref FileRef
	if err := json.Unmarshal(respBody, &ref); err != nil {
		return FileRef{}, fmt.Errorf("failed to decode upload response for %q: %w", name, err)
	}
	if ref.Name == "" {
		ref.Name = name
	}
	return ref, nil
}

// =============================================================================
// CITATION LOOKUP
// =============================================================================

// FetchCitation retrieves one citation record on demand via
// GET /api/citation/{id}. Used by detail views when only an id, not a
// pre-loaded record, is available.
func (c *Client) FetchCitation(ctx context.Context, id string) (citation.Citation, error) {
	u := c.baseURL + "/api/citation/" + url.PathEscape(id)
	body, err := c.get(ctx, u)
	if err != nil {
		return citation.Citation{}, fmt.Errorf("citation lookup for %q failed: %w", id, err)
	}

	var resp citationLookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return citation.Citation{}, fmt.Errorf("failed to decode citation %q: %w", id, err)
	}

	content := resp.Text
	if content == "" {
		content = resp.Content
	}
	rec := citation.Citation{
		ID:       id,
		Filename: resp.Metadata.FileName,
		Content:  content,
	}
	if resp.ID != "" {
		rec.ID = resp.ID
	}
	return rec, nil
}

// =============================================================================
// DOCUMENT MANAGEMENT
// =============================================================================

// ListDocuments retrieves the server-side document inventory.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	body, err := c.get(ctx, c.baseURL+"/api/documents")
	if err != nil {
		return nil, err
	}
	docs, err := UnmarshalDocuments(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document listing: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes one document from the server.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/api/documents/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// UploadDocument sends one file to the multipart document-upload
// endpoint, for server-side ingestion into the retrieval index.
func (c *Client) UploadDocument(ctx context.Context, name string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/documents/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, err = c.do(req)
	if err != nil {
		return fmt.Errorf("document upload of %q failed: %w", name, err)
	}
	return nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// postWithRetry posts a body, retrying transient failures with
// exponential backoff. Client errors (4xx) are never retried.
func (c *Client) postWithRetry(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)

		data, err := c.do(req)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return nil, err // not transient
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// get performs a GET and returns the size-capped body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// do executes a request and maps non-2xx statuses to errors.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, &APIError{Status: resp.StatusCode, Body: msg}
	}
	return body, nil
}

// calculateBackoff returns the delay before the given retry attempt.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
