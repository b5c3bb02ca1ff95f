// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search wraps the web search provider behind a never-fails client.
//
// Search is strictly best-effort in the answer pipeline: a turn that cannot
// search still completes without citations. SearchWeb therefore returns a
// Response value whose Err field carries every failure mode, and never a Go
// error.
//
// # Key Types
//
//   - Client: the provider client with rate limiting and optional caching
//   - Result: one normalized organic result (closed shape, no provider leaks)
//   - Cache: TTL-bounded SQLite cache keyed by normalized query
//
// # Usage
//
//	cache, _ := search.OpenCache(filepath.Join(dataDir, "search.db"), 0)
//	client := search.NewClient(apiKey).WithCache(cache)
//	resp := client.SearchWeb(ctx, "largest moon of saturn")
//	if resp.Failed() {
//		// degrade: answer without citations
//	}
package search
