// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP/SSE client for the RAG assistant
// backend: chat (buffered and streaming), chat-file upload, on-demand
// citation lookup, and document management.
package backend

import "encoding/json"

// =============================================================================
// CHAT REQUEST TYPES
// =============================================================================

// ChatMessage is one message in a chat request payload.
type ChatMessage struct {
	Role        string       `json:"role"`    // "user" or "assistant"
	Content     string       `json:"content"` // The message text
	Annotations []Annotation `json:"annotations"`
}

// Annotation attaches out-of-band data to a chat message. The only type
// the backend currently understands is "document_file", carrying the file
// references returned by the chat-file upload endpoint.
type Annotation struct {
	Type string         `json:"type"`
	Data AnnotationData `json:"data"`
}

// AnnotationData is the payload of an annotation.
type AnnotationData struct {
	Files []FileRef `json:"files"`
}

// NewDocumentFileAnnotation wraps uploaded file references in the
// annotation form the chat endpoint expects.
func NewDocumentFileAnnotation(files []FileRef) Annotation {
	return Annotation{Type: "document_file", Data: AnnotationData{Files: files}}
}

// ChatRequest is the body of a chat turn, shared by the buffered POST
// endpoint and (URL-encoded) the streaming endpoint.
type ChatRequest struct {
	ID       string                 `json:"id"`
	Messages []ChatMessage          `json:"messages"`
	Data     map[string]interface{} `json:"data"`
}

// NewChatRequest builds a single-turn request carrying one user message
// and any uploaded-file annotations.
func NewChatRequest(chatID, content string, files []FileRef) ChatRequest {
	msg := ChatMessage{Role: "user", Content: content, Annotations: []Annotation{}}
	if len(files) > 0 {
		msg.Annotations = append(msg.Annotations, NewDocumentFileAnnotation(files))
	}
	return ChatRequest{
		ID:       chatID,
		Messages: []ChatMessage{msg},
		Data:     map[string]interface{}{},
	}
}

// =============================================================================
// UPLOAD TYPES
// =============================================================================

// FileRef identifies an artifact uploaded through the chat-file endpoint,
// for inclusion in subsequent message annotations.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// chatFileRequest is the body of the chat-file upload endpoint. Params is
// a JSON string (not an object) by backend convention.
type chatFileRequest struct {
	Name   string `json:"name"`
	Base64 string `json:"base64"`
	Params string `json:"params"`
}

// chatFileParams is the structure serialized into chatFileRequest.Params.
type chatFileParams struct {
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// Document is one entry from the document-management listing.
type Document struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size,omitempty"`
	Type     string `json:"type,omitempty"`
	Uploaded string `json:"uploaded_at,omitempty"`
}

// documentsResponse tolerates both a bare array and a wrapped object,
// which different backend revisions have served.
type documentsResponse struct {
	Documents []Document `json:"documents"`
}

// UnmarshalDocuments decodes a document listing in either shape.
func UnmarshalDocuments(body []byte) ([]Document, error) {
	var list []Document
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var wrapped documentsResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Documents, nil
}

// =============================================================================
// CITATION LOOKUP TYPES
// =============================================================================

// citationLookupResponse is the on-demand single-citation payload. The
// excerpt arrives as "text" or "content" depending on backend revision.
type citationLookupResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Content  string `json:"content"`
	Metadata struct {
		FileName string `json:"file_name"`
	} `json:"metadata"`
}
