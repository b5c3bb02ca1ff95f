// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the persisted conversation state for seekr.
//
// The store owns all conversation and message data. It is created once at
// process start, rehydrated from a single JSON snapshot file if present, and
// flushed synchronously after every mutation. A missing or corrupt snapshot
// falls back to empty state so startup never blocks on bad data.
//
// # Key Types
//
//   - Store: the state container, safe for concurrent use
//   - MessageUpdate: partial fields merged into a conversation's last message
//
// # Usage
//
// Open a store and work with conversations:
//
//	st := store.Open(filepath.Join(dataDir, "chats.json"))
//	id := st.CreateConversation()
//	st.AddMessage(id, model.NewUserMessage("hello"))
//	conv, ok := st.ActiveConversation()
//
// Accessors return deep copies; all mutation goes through the named
// operations, which persist before returning.
package store
