// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/jeranaias/seekr-tui/internal/search"
)

// searchInstructions directs the model to cite by bracketed rank, synthesize
// rather than list, separate search-grounded claims from general knowledge,
// and answer in markdown. The wording is deliberate; citation markers like
// [1] are parsed back out of the answer by the presentation layer.
const searchInstructions = `
INSTRUCTIONS:
- You are a helpful "Answer Engine" that provides comprehensive, accurate answers based on the search results.
- Your goal is to synthesize the information into a coherent narrative.
- ALWAYS cite your sources using the format [1], [2], etc. inline where the information is used.
- If the search results don't fully answer the question, admit what you don't know but try to answer with general knowledge while clarifying what comes from search vs general knowledge.
- Format your answer in Markdown. Use bold for key terms.
- Be objective and direct.
`

// genericSystemPrompt is used when search produced no context.
const genericSystemPrompt = "You are a helpful AI assistant. Provide accurate and concise answers."

// BuildSearchContext renders search results into the context block embedded
// in the system prompt: one line per result in rank order, followed by the
// instructional text. Empty results yield an empty string.
func BuildSearchContext(results []search.Result) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nSearch Results:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %q - %s (Source: %s)\n", i+1, r.Title, r.Snippet, r.Link)
	}
	b.WriteString(searchInstructions)
	return b.String()
}

// SystemPrompt returns the system message content for a turn: the
// search-augmented prompt when context is available, the generic assistant
// prompt otherwise.
func SystemPrompt(searchContext string) string {
	if searchContext == "" {
		return genericSystemPrompt
	}
	return "You are an AI assistant powered by web search. Use the provided Search Results to answer the user question. " + searchContext
}
