// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/seekr-tui/internal/chat"
	"github.com/jeranaias/seekr-tui/internal/export"
	"github.com/jeranaias/seekr-tui/internal/store"
	"github.com/jeranaias/seekr-tui/internal/ui/styles"
)

// =============================================================================
// UI STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady State = iota // Ready for input
	StateBusy               // A turn is in flight
)

// sidebarWidth is the fixed width of the conversation list column.
const sidebarWidth = 28

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the seekr chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Engine and persistence
	engine *chat.Engine
	store  *store.Store

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Key bindings
	keyMap KeyMap

	// Markdown rendering. Rebuilt on resize so word wrap follows the
	// terminal width. A nil renderer falls back to plain text.
	renderer *glamour.TermRenderer

	// Display toggles
	showSidebar bool
	showHelp    bool

	// Status
	searchEnabled bool
	status        string
}

// New creates the chat model.
func New(engine *chat.Engine, st *store.Store, theme *styles.Theme, searchEnabled bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask anything..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII-compatible spinner frames
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	m := Model{
		state:         StateReady,
		theme:         theme,
		engine:        engine,
		store:         st,
		viewport:      vp,
		input:         ti,
		spinner:       sp,
		keyMap:        DefaultKeyMap(),
		showSidebar:   true,
		searchEnabled: searchEnabled,
	}
	m.rebuildRenderer(80)
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case turnDoneMsg:
		return m.handleTurnDone()

	case spinner.TickMsg:
		if m.state == StateBusy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			// The engine appends messages from its own goroutine; re-render
			// on each tick so the user message and placeholder show up.
			m.refreshViewport()
			m.viewport.GotoBottom()
			return m, cmd
		}
		return m, nil

	default:
		var cmds []tea.Cmd
		if m.state == StateReady {
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			cmds = append(cmds, inputCmd)
		}
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
		return m, tea.Batch(cmds...)
	}
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Layout: header (1) + viewport + input area (3) + status bar (1).
	// Conservative estimates keep the viewport from overflowing.
	const (
		headerHeight    = 1
		inputAreaHeight = 3
		statusBarHeight = 1
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	viewportWidth := m.contentWidth()
	if viewportWidth < 1 {
		viewportWidth = 1
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight

	inputWidth := m.width - 6
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	if m.theme != nil {
		m.theme.SetSize(m.width, m.height)
	}

	m.rebuildRenderer(viewportWidth - 2)
	m.refreshViewport()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	// Any key dismisses the help overlay
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.Sidebar):
		m.showSidebar = !m.showSidebar
		return m.relayout()

	case key.Matches(msg, m.keyMap.NewChat):
		if m.state == StateBusy {
			return m, nil
		}
		m.store.CreateConversation()
		m.engine.ClearError()
		m.status = ""
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.NextChat):
		return m.cycleConversation(1)

	case key.Matches(msg, m.keyMap.PrevChat):
		return m.cycleConversation(-1)

	case key.Matches(msg, m.keyMap.Delete):
		if m.state == StateBusy {
			return m, nil
		}
		if id := m.store.ActiveConversationID(); id != "" {
			m.store.DeleteConversation(id)
			m.engine.ClearError()
			m.refreshViewport()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Export):
		return m.exportActive()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()
	}

	// Forward everything else to the text input
	if m.state == StateReady {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	if m.state == StateBusy {
		return m, nil
	}
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}

	if m.store.ActiveConversationID() == "" {
		m.store.CreateConversation()
	}

	m.input.Reset()
	m.state = StateBusy
	m.status = ""

	return m, tea.Batch(m.spinner.Tick, sendCmd(m.engine, content))
}

func (m Model) handleTurnDone() (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.refreshViewport()
	m.viewport.GotoBottom()
	m.input.Focus()
	return m, textinput.Blink
}

// cycleConversation moves the active conversation by delta through the list.
func (m Model) cycleConversation(delta int) (tea.Model, tea.Cmd) {
	if m.state == StateBusy {
		return m, nil
	}
	convs := m.store.Conversations()
	if len(convs) < 2 {
		return m, nil
	}

	active := m.store.ActiveConversationID()
	idx := 0
	for i, c := range convs {
		if c.ID == active {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(convs)) % len(convs)
	m.store.SetActiveConversation(convs[idx].ID)
	m.engine.ClearError()
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) exportActive() (tea.Model, tea.Cmd) {
	conv, ok := m.store.ActiveConversation()
	if !ok || conv.MessageCount() == 0 {
		m.status = "Nothing to export"
		return m, nil
	}

	path, err := export.ExportMarkdown(conv, export.DefaultOptions())
	if err != nil {
		m.status = "Export failed: " + err.Error()
		return m, nil
	}
	m.status = "Exported to " + path
	return m, nil
}

// relayout recomputes component sizes after a sidebar toggle.
func (m Model) relayout() (tea.Model, tea.Cmd) {
	if m.width == 0 {
		return m, nil
	}
	return m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
}

// contentWidth is the viewport width after the sidebar column.
func (m Model) contentWidth() int {
	if m.showSidebar && m.width > sidebarWidth+20 {
		return m.width - sidebarWidth
	}
	return m.width
}

// sidebarVisible reports whether the sidebar fits and is enabled.
func (m Model) sidebarVisible() bool {
	return m.showSidebar && m.width > sidebarWidth+20
}

// rebuildRenderer recreates the glamour renderer for the given wrap width.
func (m *Model) rebuildRenderer(wrap int) {
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// refreshViewport re-renders the active conversation into the viewport.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderMessages())
}
