// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface of seekr: a
// readline-style REPL for dumb terminals and the one-shot "ask" command.
//
// # Key Types
//
//   - Session: the interactive REPL loop with slash commands
//   - LineReader: liner-backed input with persistent history
//
// Answers render through glamour when stdout is a TTY and as plain text
// when piped, so shell pipelines see clean output.
package cli
