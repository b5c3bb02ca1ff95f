// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/seekr-tui/internal/model"
	"github.com/jeranaias/seekr-tui/internal/search"
	"github.com/jeranaias/seekr-tui/internal/store"
)

// stubSearcher returns a fixed response.
type stubSearcher struct {
	resp search.Response
}

func (s *stubSearcher) SearchWeb(ctx context.Context, query string) search.Response {
	return s.resp
}

// panickingSearcher simulates a searcher implementation blowing up.
type panickingSearcher struct{}

func (panickingSearcher) SearchWeb(ctx context.Context, query string) search.Response {
	panic("searcher exploded")
}

// stubCompleter records the outbound message list and returns a canned
// answer or error.
type stubCompleter struct {
	mu       sync.Mutex
	got      []model.Message
	response string
	err      error

	// When set, Chat blocks until released. Used by the single-flight test.
	started  chan struct{}
	release  chan struct{}
}

func (c *stubCompleter) Chat(ctx context.Context, messages []model.Message) (string, error) {
	c.mu.Lock()
	c.got = append([]model.Message(nil), messages...)
	c.mu.Unlock()

	if c.started != nil {
		close(c.started)
		<-c.release
	}
	return c.response, c.err
}

func (c *stubCompleter) outbound() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.got
}

func newTestEngine(t *testing.T, searcher Searcher, completer Completer) (*Engine, *store.Store) {
	t.Helper()
	st := store.Open(filepath.Join(t.TempDir(), "chats.json"))
	st.CreateConversation()
	return NewEngine(st, searcher, completer), st
}

func lastMessage(t *testing.T, st *store.Store) model.Message {
	t.Helper()
	conv, ok := st.ActiveConversation()
	require.True(t, ok)
	last, ok := conv.LastMessage()
	require.True(t, ok)
	return last
}

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestSendMessageWithSearch(t *testing.T) {
	searcher := &stubSearcher{resp: search.Response{Results: []search.Result{
		{Title: "Titan", Link: "https://en.wikipedia.org/wiki/Titan", Snippet: "Largest moon of Saturn", Source: "Wikipedia", Position: 1},
	}}}
	completer := &stubCompleter{response: "Titan is Saturn's largest moon [1]."}
	engine, st := newTestEngine(t, searcher, completer)

	engine.SendMessage(context.Background(), "largest moon of saturn?")

	assert.False(t, engine.IsLoading())
	assert.Empty(t, engine.LastError())

	msgs := engine.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "largest moon of saturn?", msgs[0].Content)

	last := lastMessage(t, st)
	assert.Equal(t, model.RoleAssistant, last.Role)
	assert.Equal(t, "Titan is Saturn's largest moon [1].", last.Content)
	assert.Equal(t, model.StatusComplete, last.Status)
	require.Len(t, last.Sources, 1)
	assert.Equal(t, "Wikipedia", last.Sources[0].Source)

	// Outbound list: search-augmented system prompt + the user message
	out := completer.outbound()
	require.Len(t, out, 2)
	assert.Equal(t, model.RoleSystem, out[0].Role)
	assert.Contains(t, out[0].Content, "powered by web search")
	assert.Contains(t, out[0].Content, `[1] "Titan" - Largest moon of Saturn (Source: https://en.wikipedia.org/wiki/Titan)`)
	assert.Contains(t, out[0].Content, "ALWAYS cite your sources")
	assert.Equal(t, model.RoleUser, out[1].Role)
}

func TestSendMessageIncludesHistory(t *testing.T) {
	completer := &stubCompleter{response: "second answer"}
	engine, _ := newTestEngine(t, &stubSearcher{}, completer)

	engine.SendMessage(context.Background(), "first question")
	engine.SendMessage(context.Background(), "second question")

	out := completer.outbound()
	// system + first user + first assistant + second user
	require.Len(t, out, 4)
	assert.Equal(t, model.RoleSystem, out[0].Role)
	assert.Equal(t, "first question", out[1].Content)
	assert.Equal(t, model.RoleAssistant, out[2].Role)
	assert.Equal(t, "second question", out[3].Content)
}

// =============================================================================
// SEARCH DEGRADATION
// =============================================================================

func TestSearchFailureDegrades(t *testing.T) {
	searcher := &stubSearcher{resp: search.Response{Err: "provider down"}}
	completer := &stubCompleter{response: "answer without citations"}
	engine, st := newTestEngine(t, searcher, completer)

	engine.SendMessage(context.Background(), "question")

	assert.Empty(t, engine.LastError(), "search failure must not surface as a turn error")

	last := lastMessage(t, st)
	assert.Equal(t, "answer without citations", last.Content)
	assert.Nil(t, last.Sources)

	// Generic system prompt, no search context
	out := completer.outbound()
	assert.Equal(t, "You are a helpful AI assistant. Provide accurate and concise answers.", out[0].Content)
}

func TestSearchPanicDegrades(t *testing.T) {
	completer := &stubCompleter{response: "still answered"}
	engine, st := newTestEngine(t, panickingSearcher{}, completer)

	engine.SendMessage(context.Background(), "question")

	assert.False(t, engine.IsLoading())
	assert.Empty(t, engine.LastError())
	last := lastMessage(t, st)
	assert.Equal(t, "still answered", last.Content)
	assert.Nil(t, last.Sources)
}

// =============================================================================
// COMPLETION FAILURE
// =============================================================================

func TestCompletionFailurePreservesHistory(t *testing.T) {
	completer := &stubCompleter{err: errors.New("completion provider down")}
	engine, st := newTestEngine(t, &stubSearcher{}, completer)

	engine.SendMessage(context.Background(), "doomed question")

	assert.False(t, engine.IsLoading())
	assert.Equal(t, "completion provider down", engine.LastError())

	conv, _ := st.ActiveConversation()
	require.Len(t, conv.Messages, 2)

	// User message untouched, placeholder left empty and marked failed
	assert.Equal(t, "doomed question", conv.Messages[0].Content)
	assert.Equal(t, "", conv.Messages[1].Content)
	assert.Equal(t, model.StatusFailed, conv.Messages[1].Status)
}

func TestErrorClearedOnNextTurn(t *testing.T) {
	completer := &stubCompleter{err: errors.New("boom")}
	engine, _ := newTestEngine(t, &stubSearcher{}, completer)

	engine.SendMessage(context.Background(), "fails")
	require.NotEmpty(t, engine.LastError())

	completer.err = nil
	completer.response = "recovered"
	engine.SendMessage(context.Background(), "works")
	assert.Empty(t, engine.LastError())
}

// =============================================================================
// GUARDS
// =============================================================================

func TestSendMessageGuards(t *testing.T) {
	completer := &stubCompleter{response: "never"}
	engine, st := newTestEngine(t, &stubSearcher{}, completer)

	// Blank and whitespace-only input
	engine.SendMessage(context.Background(), "")
	engine.SendMessage(context.Background(), "   \t\n ")
	conv, _ := st.ActiveConversation()
	assert.Empty(t, conv.Messages)

	// No active conversation
	st.DeleteConversation(st.ActiveConversationID())
	engine.SendMessage(context.Background(), "hello")
	assert.Nil(t, engine.Messages())
	assert.Nil(t, completer.outbound())
}

func TestSingleFlight(t *testing.T) {
	completer := &stubCompleter{
		response: "slow answer",
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	engine, st := newTestEngine(t, &stubSearcher{}, completer)

	done := make(chan struct{})
	go func() {
		engine.SendMessage(context.Background(), "first")
		close(done)
	}()

	<-completer.started
	assert.True(t, engine.IsLoading())

	// Overlapping call is dropped: no second user message appears
	engine.SendMessage(context.Background(), "second")

	close(completer.release)
	<-done

	conv, _ := st.ActiveConversation()
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "first", conv.Messages[0].Content)
	assert.False(t, engine.IsLoading())
}

// =============================================================================
// TITLES
// =============================================================================

func TestTitleSetOnceFromFirstMessage(t *testing.T) {
	completer := &stubCompleter{response: "ok"}
	engine, st := newTestEngine(t, &stubSearcher{}, completer)

	long := strings.Repeat("ab", 40) // 80 chars
	engine.SendMessage(context.Background(), long)

	conv, _ := st.ActiveConversation()
	assert.Equal(t, long[:50]+"...", conv.Title)

	// Second message must not touch the title
	engine.SendMessage(context.Background(), "a different question entirely")
	conv, _ = st.ActiveConversation()
	assert.Equal(t, long[:50]+"...", conv.Title)
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short kept verbatim", "short question", "short question"},
		{"exactly at limit", strings.Repeat("x", 50), strings.Repeat("x", 50)},
		{"truncated with ellipsis", strings.Repeat("x", 51), strings.Repeat("x", 50) + "..."},
		{"multibyte runes counted as one", strings.Repeat("世", 51), strings.Repeat("世", 50) + "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deriveTitle(tc.in))
		})
	}
}

// =============================================================================
// PROMPT CONSTRUCTION
// =============================================================================

func TestBuildSearchContext(t *testing.T) {
	assert.Empty(t, BuildSearchContext(nil))

	results := []search.Result{
		{Title: "A", Snippet: "first", Link: "https://a.example"},
		{Title: "B", Snippet: "second", Link: "https://b.example"},
	}
	got := BuildSearchContext(results)
	assert.Contains(t, got, "Search Results:")
	assert.Contains(t, got, `[1] "A" - first (Source: https://a.example)`)
	assert.Contains(t, got, `[2] "B" - second (Source: https://b.example)`)
	assert.Contains(t, got, "INSTRUCTIONS:")
	assert.Contains(t, got, "Format your answer in Markdown.")
}

func TestSystemPromptHidesHistorySystemMessages(t *testing.T) {
	completer := &stubCompleter{response: "ok"}
	engine, st := newTestEngine(t, &stubSearcher{}, completer)

	// A stray system message in history must not be replayed
	st.AddMessage(st.ActiveConversationID(), model.NewSystemMessage("old prompt"))
	engine.SendMessage(context.Background(), "question")

	for i, m := range completer.outbound() {
		if i > 0 {
			assert.NotEqual(t, model.RoleSystem, m.Role, "history system message leaked at %d", i)
		}
	}
}
