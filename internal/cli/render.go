// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/seekr-tui/internal/model"
	"github.com/jeranaias/seekr-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	sourceIndexStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald)

	sourceMetaStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// =============================================================================
// MARKDOWN RENDERING
// USABILITY: Markdown rendering for readable terminal answers
// =============================================================================

// markdownRenderer is the shared glamour renderer for answer output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// ANSWER OUTPUT
// =============================================================================

// formatAnswer renders a completed assistant message, markdown plus sources.
// Markdown only renders on a TTY to avoid corrupting piped output.
func formatAnswer(msg model.Message) string {
	var b strings.Builder

	if IsStdoutTTY() {
		b.WriteString(renderMarkdown(msg.Content))
	} else {
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}

	if msg.HasSources() {
		b.WriteString(formatSources(msg.Sources))
	}
	return b.String()
}

// formatSources renders the numbered source list. Indices line up with the
// bracketed citations in the answer text.
func formatSources(sources []model.Source) string {
	var b strings.Builder
	b.WriteString("\nSources:\n")
	for _, src := range sources {
		b.WriteString(sourceIndexStyle.Render(fmt.Sprintf("  [%d]", src.Position)))
		b.WriteString(" " + src.Title)
		if src.Source != "" {
			b.WriteString(" " + sourceMetaStyle.Render("("+src.Source+")"))
		}
		if src.Link != "" {
			b.WriteString("\n      " + sourceMetaStyle.Render(src.Link))
		}
		b.WriteString("\n")
	}
	return b.String()
}
