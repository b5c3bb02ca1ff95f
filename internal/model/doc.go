// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: one chat thread with ordered messages and metadata
//   - Message: a single turn with role, content, status, and cited sources
//   - Source: one web search result an assistant answer cites by rank
//
// Message ordering within a conversation is chat-turn order (user, assistant,
// user, assistant, ...). The types do not enforce strict alternation; the chat
// engine only ever appends in that pattern.
package model
