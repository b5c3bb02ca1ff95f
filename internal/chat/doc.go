// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates the answer pipeline.
//
// One SendMessage call is one conversation turn:
//
//	guard -> append user message -> title (first turn only) -> search
//	      -> append placeholder -> completion -> finalize placeholder
//
// Search is best-effort and completion is fatal: a failed search produces an
// uncited answer, a failed completion marks the placeholder failed and
// surfaces the error through LastError.
//
// # Key Types
//
//   - Engine: the turn state machine; single-flight per instance
//   - Searcher, Completer: the two external call sites, satisfied by
//     search.Client and cloud.Client and stubbed in tests
//
// The Engine exposes the full presentation contract: Messages, IsLoading,
// LastError, SendMessage. UI adapters call nothing else.
package chat
