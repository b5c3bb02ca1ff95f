// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// ==========================================================================
	// SIDEBAR (CONVERSATION LIST) STYLES
	// ==========================================================================

	Sidebar           lipgloss.Style
	SidebarTitle      lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarItemActive lipgloss.Style
	SidebarMeta       lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	MessageBody    lipgloss.Style
	PendingText    lipgloss.Style
	FailedText     lipgloss.Style

	// ==========================================================================
	// SOURCE LIST STYLES
	// ==========================================================================

	SourceHeading lipgloss.Style
	SourceIndex   lipgloss.Style
	SourceTitle   lipgloss.Style
	SourceMeta    lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	CharCount      lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	StatusDesc   lipgloss.Style
	StatusSearch lipgloss.Style

	// ==========================================================================
	// FEEDBACK STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ErrorBanner  lipgloss.Style
}

// New creates a theme honoring the configured preference: "dark", "light",
// or "auto" (detect from the terminal background).
func New(preference string) *Theme {
	dark := termenv.HasDarkBackground()
	switch preference {
	case "dark":
		dark = true
	case "light":
		dark = false
	}
	lipgloss.SetHasDarkBackground(dark)

	t := &Theme{
		IsDark:       dark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.buildStyles()
	return t
}

// SetSize records the current terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

func (t *Theme) buildStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)
	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.SidebarItemActive = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.SidebarMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)
	t.SystemLabel = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
	t.MessageBody = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.PendingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.FailedText = lipgloss.NewStyle().
		Foreground(Rose).
		Italic(true)

	t.SourceHeading = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)
	t.SourceIndex = lipgloss.NewStyle().
		Foreground(Emerald)
	t.SourceTitle = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)
	t.SourceMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.CharCount = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().
		Foreground(Cyan)
	t.StatusDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.StatusSearch = lipgloss.NewStyle().
		Foreground(Amber)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)
	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.ErrorBanner = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Rose).
		Padding(0, 1)
}
