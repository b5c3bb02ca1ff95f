// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea terminal interface for seekr.
//
// # Key Types
//
//   - Model: the Bubble Tea model wiring the chat engine, conversation
//     store, viewport, text input, and spinner together
//   - KeyMap: keyboard bindings with help text
//
// # Layout
//
// The view stacks a one-line header, the transcript viewport (with an
// optional conversation sidebar), a bordered input line, and a status bar.
// Answers render through glamour with a numbered source list whose indices
// match the bracketed citations in the answer text.
//
// A turn runs as a single tea.Cmd; the engine owns search degradation and
// failure bookkeeping, and the view re-reads the store when the turn lands.
package ui
