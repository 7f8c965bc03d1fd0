// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the
// application for representing a chat session against the retrieval
// backend.
//
// # Key Types
//
//   - Conversation: Container for a chat session; its ID doubles as the
//     backend chat identifier
//   - Message: Single message with role, content, and for assistant
//     replies the citation-annotated markup and backing citation set
//   - Role: Message role enumeration (user, assistant, system)
//
// # Usage
//
// Create a new conversation:
//
//	conv := model.NewConversation()
//	conv.AddUserMessage("What does the manual say about resets?")
//	reply := conv.AddAssistantMessage()
package model
