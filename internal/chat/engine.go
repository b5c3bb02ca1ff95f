// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/seekr-tui/internal/model"
	"github.com/jeranaias/seekr-tui/internal/search"
	"github.com/jeranaias/seekr-tui/internal/store"
	"github.com/jeranaias/seekr-tui/internal/util"
)

// titleRuneLimit bounds the auto-derived conversation title.
const titleRuneLimit = 50

// Searcher performs a best-effort web search. Implementations report failure
// through Response.Err, never a Go error.
type Searcher interface {
	SearchWeb(ctx context.Context, query string) search.Response
}

// Completer produces the assistant answer for an ordered message list.
// Failure here is fatal to the turn.
type Completer interface {
	Chat(ctx context.Context, messages []model.Message) (string, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives the per-turn state machine: optimistic user append, title
// derivation, best-effort search, placeholder assistant message, completion,
// in-place finalization. One turn at a time per Engine instance; overlapping
// SendMessage calls are dropped, not queued.
//
// The Engine holds no message data of its own. All conversation state lives
// in the store and is re-read through its accessors.
type Engine struct {
	store     *store.Store
	searcher  Searcher
	completer Completer

	mu       sync.Mutex
	inFlight bool
	lastErr  string
}

// NewEngine creates an engine over the given store and clients.
func NewEngine(st *store.Store, searcher Searcher, completer Completer) *Engine {
	return &Engine{
		store:     st,
		searcher:  searcher,
		completer: completer,
	}
}

// IsLoading reports whether a turn is currently in flight.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// LastError returns the error message from the most recent failed turn, or
// "" when the last turn succeeded. It is cleared when a new turn starts.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ClearError resets the visible error without starting a turn.
func (e *Engine) ClearError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = ""
}

// Messages returns the active conversation's messages, or nil when no
// conversation is active.
func (e *Engine) Messages() []model.Message {
	conv, ok := e.store.ActiveConversation()
	if !ok {
		return nil
	}
	return conv.Messages
}

// SendMessage runs one full conversation turn against the active
// conversation, blocking until the turn settles. Blank input, a missing
// active conversation, and an already in-flight turn are all silently
// dropped.
//
// Mutation order within a turn is fixed: user message, then placeholder
// assistant message, then in-place finalization of the placeholder. The
// presentation layer re-reads after each mutation, so that order is what the
// user sees.
func (e *Engine) SendMessage(ctx context.Context, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return
	}

	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return
	}
	convID := e.store.ActiveConversationID()
	if convID == "" {
		e.mu.Unlock()
		return
	}
	e.inFlight = true
	e.lastErr = ""
	e.mu.Unlock()

	// RELIABILITY: loading always clears, on every exit path
	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	// Snapshot pre-append history. It feeds both the first-message check and
	// the outbound message list.
	history := []model.Message{}
	if conv, ok := e.store.Get(convID); ok {
		history = conv.Messages
	}

	userMsg := model.NewUserMessage(trimmed)
	e.store.AddMessage(convID, userMsg)

	if len(history) == 0 {
		e.store.UpdateConversationTitle(convID, deriveTitle(trimmed))
	}

	// Best-effort search. A failed or panicking searcher degrades the turn to
	// an uncited answer, it never ends it.
	searchResp := e.runSearch(ctx, trimmed)
	if searchResp.Failed() {
		log.Printf("chat: search failed, answering without citations: %s", searchResp.Err)
	}

	var sources []model.Source
	searchContext := ""
	if len(searchResp.Results) > 0 {
		sources = toSources(searchResp.Results)
		searchContext = BuildSearchContext(searchResp.Results)
	}

	outbound := make([]model.Message, 0, len(history)+2)
	outbound = append(outbound, model.NewSystemMessage(SystemPrompt(searchContext)))
	for _, m := range history {
		// System prompts are synthesized per turn, never replayed from history
		if m.Role == model.RoleSystem {
			continue
		}
		outbound = append(outbound, m)
	}
	outbound = append(outbound, userMsg)

	e.store.AddMessage(convID, model.NewAssistantPlaceholder(sources))

	response, err := e.completer.Chat(ctx, outbound)
	if err != nil {
		e.mu.Lock()
		e.lastErr = err.Error()
		e.mu.Unlock()

		failed := model.StatusFailed
		e.store.UpdateLastMessage(convID, store.MessageUpdate{Status: &failed})
		return
	}

	complete := model.StatusComplete
	e.store.UpdateLastMessage(convID, store.MessageUpdate{
		Content: &response,
		Status:  &complete,
	})
}

// runSearch invokes the searcher with a panic guard. A panicking search
// implementation must degrade the turn, not kill it.
func (e *Engine) runSearch(ctx context.Context, query string) (resp search.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = search.Response{Err: fmt.Sprintf("search panicked: %v", r)}
		}
	}()
	return e.searcher.SearchWeb(ctx, query)
}

// deriveTitle builds the conversation title from the first user message:
// the first 50 runes, with a trailing ellipsis when truncated.
func deriveTitle(content string) string {
	if util.RuneLen(content) <= titleRuneLimit {
		return content
	}
	return string([]rune(content)[:titleRuneLimit]) + "..."
}

// toSources converts normalized search results into cited message sources.
func toSources(results []search.Result) []model.Source {
	sources := make([]model.Source, len(results))
	for i, r := range results {
		sources[i] = model.Source{
			Title:    r.Title,
			Link:     r.Link,
			Source:   r.Source,
			Position: r.Position,
			Favicon:  r.Favicon,
		}
	}
	return sources
}
