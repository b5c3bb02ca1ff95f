// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

// Result is one normalized organic web search result.
//
// The provider's payload is not trusted as-is: Source falls back to the link
// hostname when the provider omits it, and Position is re-assigned as the
// 1-based index in returned order. No untyped provider fields leak past this
// struct.
type Result struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Source   string `json:"source"`
	Date     string `json:"date,omitempty"`
	Favicon  string `json:"favicon,omitempty"`
	Position int    `json:"position"`
}

// Response is the outcome of one search call. A failed search carries a
// human-readable Err and an empty Results slice; callers never receive a Go
// error from SearchWeb.
type Response struct {
	Results []Result
	Err     string
}

// Failed reports whether the search ended in an error.
func (r Response) Failed() bool {
	return r.Err != ""
}
