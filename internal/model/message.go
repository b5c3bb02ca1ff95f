// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import "time"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message. The set is closed: the answer
// pipeline only ever produces system, user, and assistant messages.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status marks the lifecycle stage of an assistant message. An empty-content
// placeholder alone cannot distinguish "still generating" from "generation
// failed", so the status is tracked explicitly.
type Status string

const (
	// StatusPending marks an assistant placeholder awaiting completion.
	StatusPending Status = "pending"
	// StatusComplete marks a message whose content is final.
	StatusComplete Status = "complete"
	// StatusFailed marks a placeholder whose completion call failed.
	StatusFailed Status = "failed"
)

// =============================================================================
// SOURCE TYPE
// =============================================================================

// Source is one cited web search result attached to an assistant message.
// Position is the 1-based rank the answer's bracketed citations refer to.
type Source struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Source   string `json:"source"`
	Position int    `json:"position"`
	Favicon  string `json:"favicon,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// Content may be empty only while an assistant message is pending. Sources are
// attached only to assistant messages produced by a search-augmented turn.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	Status    Status    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage creates a complete user message.
func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Status:    StatusComplete,
		Timestamp: time.Now(),
	}
}

// NewSystemMessage creates a complete system message.
func NewSystemMessage(content string) Message {
	return Message{
		Role:      RoleSystem,
		Content:   content,
		Status:    StatusComplete,
		Timestamp: time.Now(),
	}
}

// NewAssistantPlaceholder creates an empty assistant message in the pending
// state. The presentation layer renders it as a thinking indicator until the
// completion fills it in.
func NewAssistantPlaceholder(sources []Source) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   "",
		Sources:   sources,
		Status:    StatusPending,
		Timestamp: time.Now(),
	}
}

// HasSources reports whether the message carries cited search results.
func (m Message) HasSources() bool {
	return len(m.Sources) > 0
}

// IsPending reports whether the message is an unfilled assistant placeholder.
func (m Message) IsPending() bool {
	return m.Status == StatusPending
}

// Clone returns a deep copy of the message. Sources are copied so callers
// cannot mutate store-owned data through a returned message.
func (m Message) Clone() Message {
	c := m
	if m.Sources != nil {
		c.Sources = make([]Source, len(m.Sources))
		copy(c.Sources, m.Sources)
	}
	return c
}
