// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/seekr-tui/internal/chat"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// turnDoneMsg signals that a question/answer turn has finished, successfully
// or not. The engine holds the outcome; the model re-reads it from the store.
type turnDoneMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd runs a full turn against the engine in the background. The engine
// degrades search failures internally and records completion failures on the
// placeholder message, so there is no error to carry back here.
func sendCmd(engine *chat.Engine, content string) tea.Cmd {
	return func() tea.Msg {
		engine.SendMessage(context.Background(), content)
		return turnDoneMsg{}
	}
}
