// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP/SSE client for the RAG assistant
// backend.
//
// This file implements the streaming chat path: a Server-Sent-Events
// reader and the consumption of the backend's named event protocol
// (citation_data, text_chunk, complete, error).
package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jeranaias/ragchat-tui/internal/citation"
)

// MaxChunkSize is the maximum allowed size for a single SSE event (64KB).
const MaxChunkSize = 64 * 1024

// =============================================================================
// STREAM EVENT TYPES
// =============================================================================

// EventType names the SSE events the chat stream emits.
type EventType string

const (
	// EventOpen is synthesized locally once the transport acknowledges
	// the stream (HTTP 200), before any server event arrives. It mirrors
	// the EventSource onopen notification the browser clients key
	// placeholder-message creation on.
	EventOpen EventType = "open"
	// EventCitationData delivers the turn's citation set, wholesale.
	EventCitationData EventType = "citation_data"
	// EventTextChunk delivers one text delta.
	EventTextChunk EventType = "text_chunk"
	// EventComplete signals normal end of stream.
	EventComplete EventType = "complete"
	// EventError signals an explicit server-side failure.
	EventError EventType = "error"
)

// StreamEvent is one decoded event from the chat stream.
type StreamEvent struct {
	Type      EventType
	Chunk     string       // text_chunk payload
	Citations citation.Set // citation_data payload
	Message   string       // error payload
}

// StreamCallback is invoked for each decoded event, in arrival order.
type StreamCallback func(event StreamEvent)

// StreamError is a server-reported stream failure (an "error" event).
type StreamError struct {
	Message string
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Message == "" {
		return "stream error"
	}
	return "stream error: " + e.Message
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{reader: bufio.NewReader(r)}
}

// ReadEvent reads the next SSE event, returning its event name and
// joined data payload. Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte
	var size int

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event.
		if len(line) == 0 {
			if len(dataLines) > 0 || eventType != "" {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[6:]))
		case bytes.HasPrefix(line, []byte("data:")):
			data := bytes.TrimSpace(line[5:])
			size += len(data)
			if size > MaxChunkSize {
				return "", nil, fmt.Errorf("SSE event exceeds %d bytes", MaxChunkSize)
			}
			dataLines = append(dataLines, data)
		}
		// Ignore id:, retry:, and comment lines.
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream performs a streaming chat turn via GET /api/chat/stream.
// The request payload travels URL-encoded in the "data" query parameter.
// Decoded events are delivered to the callback in arrival order; the
// call returns after a complete event, stream end, context cancellation,
// or an error event (which is also returned as a *StreamError).
func (c *Client) ChatStream(ctx context.Context, chatReq ChatRequest, callback StreamCallback) error {
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return fmt.Errorf("failed to marshal stream request: %w", err)
	}

	q := url.Values{}
	q.Set("data", string(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/chat/stream?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streaming.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	return c.processStream(ctx, resp.Body, callback)
}

// processStream decodes named events until completion.
func (c *Client) processStream(ctx context.Context, body io.Reader, callback StreamCallback) error {
	reader := NewSSEReader(body)
	callback(StreamEvent{Type: EventOpen})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		event, decodeErr := decodeStreamEvent(name, data)
		if decodeErr != nil {
			// Skip malformed events; the stream itself is still good.
			continue
		}

		callback(event)

		switch event.Type {
		case EventComplete:
			return nil
		case EventError:
			return &StreamError{Message: event.Message}
		}
	}
}

// decodeStreamEvent maps one named SSE event to a StreamEvent.
func decodeStreamEvent(name string, data []byte) (StreamEvent, error) {
	switch EventType(name) {
	case EventCitationData:
		var payload struct {
			Citations citation.Set `json:"citations"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return StreamEvent{}, err
		}
		return StreamEvent{Type: EventCitationData, Citations: payload.Citations}, nil

	case EventTextChunk:
		var payload struct {
			Chunk string `json:"chunk"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return StreamEvent{}, err
		}
		return StreamEvent{Type: EventTextChunk, Chunk: payload.Chunk}, nil

	case EventComplete:
		return StreamEvent{Type: EventComplete}, nil

	case EventError:
		var payload struct {
			Error string `json:"error"`
		}
		// Error events without a decodable payload still abort.
		_ = json.Unmarshal(data, &payload)
		return StreamEvent{Type: EventError, Message: payload.Error}, nil

	default:
		return StreamEvent{}, fmt.Errorf("unknown event %q", name)
	}
}
