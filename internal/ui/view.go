// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/seekr-tui/internal/model"
	"github.com/jeranaias/seekr-tui/internal/util"
)

// sidebarTitleWidth leaves room for the "> " marker inside the sidebar.
const sidebarTitleWidth = sidebarWidth - 5

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders the complete chat view.
// Layout: header (1 line) + [sidebar | messages] + input (3 lines) + status (1 line).
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	body := m.viewport.View()
	if m.sidebarVisible() {
		sidebar := m.renderSidebar(m.viewport.Height)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		body,
		input,
		status,
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("seekr")

	meta := ""
	if conv, ok := m.store.ActiveConversation(); ok {
		meta = m.theme.HeaderMeta.Render(fmt.Sprintf(
			"  %s (%d messages)",
			util.TruncateRunes(conv.Title, 48),
			conv.MessageCount(),
		))
	}

	return m.theme.Header.Width(m.width).MaxWidth(m.width).Render(title + meta)
}

// =============================================================================
// SIDEBAR
// =============================================================================

// renderSidebar renders the conversation list column.
func (m Model) renderSidebar(height int) string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Chats"))
	b.WriteString("\n\n")

	active := m.store.ActiveConversationID()
	for _, conv := range m.store.Conversations() {
		label := conversationLabel(conv)
		if conv.ID == active {
			b.WriteString(m.theme.SidebarItemActive.Render("> " + label))
		} else {
			b.WriteString(m.theme.SidebarItem.Render("  " + label))
		}
		b.WriteString("\n")
	}

	return m.theme.Sidebar.
		Width(sidebarWidth - 2).
		Height(height).
		MaxHeight(height).
		Render(b.String())
}

// conversationLabel builds the sidebar entry for a conversation.
func conversationLabel(conv *model.Conversation) string {
	title := conv.Title
	if title == "" {
		title = model.DefaultTitle
	}
	return util.TruncateWidth(title, sidebarTitleWidth)
}

// =============================================================================
// MESSAGES
// =============================================================================

// renderMessages renders the active conversation's transcript.
func (m Model) renderMessages() string {
	msgs := m.engine.Messages()
	if len(msgs) == 0 {
		return m.renderWelcome()
	}

	var parts []string
	for _, msg := range msgs {
		if rendered := m.renderMessage(msg); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg model.Message) string {
	switch msg.Role {
	case model.RoleUser:
		return m.theme.UserLabel.Render("[You]") + "\n" +
			m.theme.MessageBody.Render(msg.Content)

	case model.RoleAssistant:
		return m.renderAssistant(msg)

	default:
		// System prompts are internal plumbing, never shown
		return ""
	}
}

func (m Model) renderAssistant(msg model.Message) string {
	label := m.theme.AssistantLabel.Render("[Answer]")

	switch {
	case msg.Status == model.StatusFailed:
		body := m.theme.FailedText.Render("Answer failed to generate.")
		if err := m.engine.LastError(); err != "" {
			body += "\n" + m.theme.ErrorBanner.Render(err)
		}
		return label + "\n" + body

	case msg.IsPending():
		thinking := m.spinner.View() + " " +
			m.theme.ThinkingText.Render("Searching and thinking...")
		return label + "\n" + thinking
	}

	body := m.renderMarkdown(msg.Content)
	if msg.HasSources() {
		body += "\n" + m.renderSources(msg.Sources)
	}
	return label + "\n" + body
}

// renderMarkdown renders an answer through glamour, falling back to plain
// text when the renderer is unavailable or fails.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return m.theme.MessageBody.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return m.theme.MessageBody.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

// renderSources renders the numbered source list under an answer. Indices
// match the bracketed citations the model was instructed to emit.
func (m Model) renderSources(sources []model.Source) string {
	var b strings.Builder
	b.WriteString(m.theme.SourceHeading.Render("Sources:"))
	for _, src := range sources {
		b.WriteString("\n")
		b.WriteString(formatSourceLine(m.theme.SourceIndex, m.theme.SourceTitle, m.theme.SourceMeta, src))
	}
	return b.String()
}

// formatSourceLine renders one "[n] Title (source) link" entry.
func formatSourceLine(indexStyle, titleStyle, metaStyle lipgloss.Style, src model.Source) string {
	line := indexStyle.Render(fmt.Sprintf("  [%d]", src.Position)) + " " +
		titleStyle.Render(src.Title)
	if src.Source != "" {
		line += " " + metaStyle.Render("("+src.Source+")")
	}
	if src.Link != "" {
		line += "\n      " + metaStyle.Render(src.Link)
	}
	return line
}

func (m Model) renderWelcome() string {
	lines := []string{
		"",
		m.theme.HeaderTitle.Render("  seekr"),
		m.theme.ThinkingText.Render("  Ask a question to get a web-sourced answer."),
		"",
		m.theme.StatusDesc.Render("  Enter to ask, Ctrl+N for a new chat, Ctrl+H for help."),
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// INPUT AREA
// =============================================================================

func (m Model) renderInput() string {
	prompt := m.input.View()
	if m.state == StateBusy {
		prompt = m.spinner.View() + " " + m.theme.ThinkingText.Render("Working...")
	}

	count := m.theme.CharCount.Render(fmt.Sprintf("%d/%d", util.RuneLen(m.input.Value()), m.input.CharLimit))
	return m.theme.InputContainer.Width(m.width - 2).Render(prompt) + "\n" + count
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.status != "":
		left = m.status
	case m.engine.LastError() != "":
		left = m.theme.ErrorBanner.UnsetBorderStyle().UnsetPadding().Render(m.engine.LastError())
	default:
		var parts []string
		for _, b := range m.keyMap.ShortHelp() {
			parts = append(parts,
				m.theme.StatusKey.Render(b.Help().Key)+" "+
					m.theme.StatusDesc.Render(b.Help().Desc))
		}
		left = strings.Join(parts, "  ")
	}

	right := m.theme.StatusSearch.Render("search off")
	if m.searchEnabled {
		right = m.theme.StatusDesc.Render("search on")
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelpOverlay() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")

	for _, group := range m.keyMap.FullHelp() {
		for _, binding := range group {
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				m.theme.StatusKey.Render(fmt.Sprintf("%-12s", binding.Help().Key)),
				m.theme.StatusDesc.Render(binding.Help().Desc)))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.theme.ThinkingText.Render("Press any key to close."))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}
