// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the persisted conversation state for seekr.
package store

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/seekr-tui/internal/model"
	"github.com/jeranaias/seekr-tui/internal/util"
)

// DefaultMaxConversations bounds the stored conversation count. When the
// limit is exceeded the oldest-updated conversations are evicted.
const DefaultMaxConversations = 100

// =============================================================================
// SNAPSHOT FORMAT
// =============================================================================

// snapshot is the durable form of the store: one namespaced JSON blob holding
// the full conversation list and the active pointer. Every mutation rewrites
// the whole snapshot; acceptable at this scale (bounded conversation count).
type snapshot struct {
	Conversations        []*model.Conversation `json:"conversations"`
	ActiveConversationID string                `json:"active_conversation_id"`
}

// =============================================================================
// STORE
// =============================================================================

// Store owns all conversation data. It is an explicitly constructed,
// dependency-injected container: load-on-construct, flush-on-mutate. Every
// component reads through its accessors and mutates only through its named
// operations.
type Store struct {
	mu sync.Mutex

	path             string
	maxConversations int

	// conversations is ordered newest-created first.
	conversations []*model.Conversation
	activeID      string
}

// Open creates a store backed by the snapshot file at path, rehydrating
// existing state if present. A missing or corrupt snapshot yields an empty
// store; corruption is swallowed so startup never blocks on bad state.
func Open(path string) *Store {
	s := &Store{
		path:             path,
		maxConversations: DefaultMaxConversations,
	}
	s.rehydrate()
	return s
}

// SetMaxConversations overrides the retention cap (0 = unlimited).
func (s *Store) SetMaxConversations(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxConversations = n
}

func (s *Store) rehydrate() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("store: ignoring corrupt snapshot %s: %v", s.path, err)
		return
	}

	s.conversations = snap.Conversations
	s.activeID = snap.ActiveConversationID
}

// persist writes the full snapshot synchronously. Must be called with the
// lock held. A persist failure is logged, not surfaced: in-memory state stays
// authoritative for the rest of the session.
func (s *Store) persist() {
	snap := snapshot{
		Conversations:        s.conversations,
		ActiveConversationID: s.activeID,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Printf("store: failed to encode snapshot: %v", err)
		return
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		log.Printf("store: failed to persist snapshot: %v", err)
	}
}

func (s *Store) find(id string) *model.Conversation {
	for _, c := range s.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// CreateConversation creates a new conversation with the default title,
// inserts it at the front of the list, makes it active, and returns its ID.
// It always succeeds.
func (s *Store) CreateConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv := &model.Conversation{
		ID:        "conv_" + uuid.NewString(),
		Title:     model.DefaultTitle,
		Messages:  []model.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	s.enforceLimit()
	s.persist()

	return conv.ID
}

// enforceLimit evicts the oldest-updated conversations beyond the cap.
// Must be called with the lock held. The newest conversation (index 0) is
// never evicted.
func (s *Store) enforceLimit() {
	if s.maxConversations <= 0 || len(s.conversations) <= s.maxConversations {
		return
	}

	candidates := make([]*model.Conversation, len(s.conversations)-1)
	copy(candidates, s.conversations[1:])
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].UpdatedAt.Before(candidates[j].UpdatedAt)
	})

	excess := len(s.conversations) - s.maxConversations
	evict := make(map[string]bool, excess)
	for i := 0; i < excess && i < len(candidates); i++ {
		evict[candidates[i].ID] = true
	}

	kept := s.conversations[:0]
	for _, c := range s.conversations {
		if !evict[c.ID] {
			kept = append(kept, c)
		}
	}
	s.conversations = kept

	if evict[s.activeID] {
		s.activeID = ""
		if len(s.conversations) > 0 {
			s.activeID = s.conversations[0].ID
		}
	}
}

// DeleteConversation removes the conversation with the given ID. If it was
// active, the active pointer moves to the new first conversation, or to none
// when the list becomes empty. Deleting an unknown ID is a no-op.
func (s *Store) DeleteConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.conversations {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	if s.activeID == id {
		s.activeID = ""
		if len(s.conversations) > 0 {
			s.activeID = s.conversations[0].ID
		}
	}

	s.persist()
}

// SetActiveConversation sets the active pointer unconditionally. Pointing at
// an unknown ID simply yields "no active conversation" downstream.
func (s *Store) SetActiveConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeID = id
	s.persist()
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AddMessage appends a message to the target conversation and refreshes its
// UpdatedAt. No-op when the conversation does not exist.
func (s *Store) AddMessage(conversationID string, msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(conversationID)
	if conv == nil {
		return
	}

	conv.Messages = append(conv.Messages, msg.Clone())
	conv.UpdatedAt = time.Now()
	s.persist()
}

// MessageUpdate holds partial fields to merge into a message. Nil fields are
// left untouched, so a content-only update preserves existing sources.
type MessageUpdate struct {
	Content *string
	Sources []model.Source
	Status  *model.Status
}

// UpdateLastMessage merges the given fields into the last message of the
// target conversation and refreshes UpdatedAt. No-op when the conversation
// does not exist or has no messages.
func (s *Store) UpdateLastMessage(conversationID string, update MessageUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(conversationID)
	if conv == nil || len(conv.Messages) == 0 {
		return
	}

	last := &conv.Messages[len(conv.Messages)-1]
	if update.Content != nil {
		last.Content = *update.Content
	}
	if update.Sources != nil {
		last.Sources = make([]model.Source, len(update.Sources))
		copy(last.Sources, update.Sources)
	}
	if update.Status != nil {
		last.Status = *update.Status
	}

	conv.UpdatedAt = time.Now()
	s.persist()
}

// SetLastMessageContent is the plain-text form of UpdateLastMessage: it sets
// only the content of the last message, preserving sources and all other
// fields.
func (s *Store) SetLastMessageContent(conversationID, content string) {
	s.UpdateLastMessage(conversationID, MessageUpdate{Content: &content})
}

// UpdateConversationTitle overwrites the conversation title and refreshes
// UpdatedAt. No-op when the conversation does not exist.
func (s *Store) UpdateConversationTitle(conversationID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(conversationID)
	if conv == nil {
		return
	}

	conv.Title = title
	conv.UpdatedAt = time.Now()
	s.persist()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ActiveConversation returns a deep copy of the conversation the active
// pointer refers to, or false when there is none.
func (s *Store) ActiveConversation() (*model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(s.activeID)
	if conv == nil {
		return nil, false
	}
	return conv.Clone(), true
}

// ActiveConversationID returns the current active pointer ("" when none).
func (s *Store) ActiveConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Get returns a deep copy of the conversation with the given ID.
func (s *Store) Get(id string) (*model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return nil, false
	}
	return conv.Clone(), true
}

// Conversations returns deep copies of all conversations, newest-created
// first.
func (s *Store) Conversations() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of stored conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}
