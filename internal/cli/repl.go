// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive REPL for terminals without full TUI support.
//
// USABILITY: Markdown rendering and input history for better CLI experience
//
// Interactive commands:
//
//	/help, /h           Show available commands
//	/new, /n            Start a new conversation
//	/list, /l           List conversations
//	/switch N, /s N     Switch to conversation N from /list
//	/delete [N], /d     Delete the active (or Nth) conversation
//	/export [json], /e  Export the active conversation
//	/quit, /q, exit     Exit
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/seekr-tui/internal/chat"
	"github.com/jeranaias/seekr-tui/internal/config"
	"github.com/jeranaias/seekr-tui/internal/export"
	"github.com/jeranaias/seekr-tui/internal/model"
	"github.com/jeranaias/seekr-tui/internal/store"
	"github.com/jeranaias/seekr-tui/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader provides input history and line editing for the REPL.
// USABILITY: Arrow keys navigate history like readline.
type LineReader struct {
	line        *liner.State
	historyFile string
}

// NewLineReader creates a LineReader with persistent history.
func NewLineReader() *LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	r := &LineReader{
		line:        line,
		historyFile: filepath.Join(configDir, "history"),
	}
	r.loadHistory()
	return r
}

func (r *LineReader) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (r *LineReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists history with owner-only permissions. Queries can
// contain sensitive text, same treatment as the config file.
func (r *LineReader) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (r *LineReader) Close() {
	r.saveHistory()
	r.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

// Session holds the state for an interactive REPL session.
type Session struct {
	engine *chat.Engine
	store  *store.Store
	cfg    *config.Config
	input  *LineReader

	startTime time.Time
	turns     int
}

// NewSession creates a REPL session over the shared engine and store.
func NewSession(engine *chat.Engine, st *store.Store, cfg *config.Config) *Session {
	return &Session{
		engine:    engine,
		store:     st,
		cfg:       cfg,
		input:     NewLineReader(),
		startTime: time.Now(),
	}
}

// Run runs the REPL loop until the user exits.
func (s *Session) Run() error {
	defer s.input.Close()

	s.printWelcome()

	if s.store.ActiveConversationID() == "" {
		s.store.CreateConversation()
	}

	for {
		input, err := s.input.ReadInput(promptStyle.Render("seekr> "))
		if err != nil {
			// liner.ErrPromptAborted is Ctrl+C, anything else is EOF
			fmt.Println()
			s.printExitSummary()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if cmd, ok := parseCommand(input); ok {
			if !s.dispatch(cmd) {
				s.printExitSummary()
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			s.printExitSummary()
			return nil
		}

		s.ask(input)
	}
}

// ask runs one question/answer turn and prints the result.
func (s *Session) ask(question string) {
	fmt.Println(infoStyle.Render("Searching..."))

	s.engine.SendMessage(context.Background(), question)
	s.turns++

	conv, ok := s.store.ActiveConversation()
	if !ok {
		return
	}
	last, ok := conv.LastMessage()
	if !ok || last.Role != model.RoleAssistant {
		return
	}

	if last.Status == model.StatusFailed {
		reason := s.engine.LastError()
		if reason == "" {
			reason = "answer failed to generate"
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" "+reason)
		return
	}

	fmt.Println()
	fmt.Print(formatAnswer(last))
	fmt.Println()
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// dispatch executes a slash command. Returns false when the session should end.
func (s *Session) dispatch(cmd command) bool {
	switch cmd.Name {
	case "help":
		s.printHelp()

	case "new":
		s.store.CreateConversation()
		s.engine.ClearError()
		fmt.Println(infoStyle.Render("Started a new conversation."))

	case "list":
		s.printList()

	case "switch":
		s.switchConversation(cmd.Args)

	case "delete":
		s.deleteConversation(cmd.Args)

	case "export":
		s.exportConversation(cmd.Args)

	case "quit":
		return false

	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" unknown command, try /help")
	}
	return true
}

func (s *Session) printList() {
	convs := s.store.Conversations()
	if len(convs) == 0 {
		fmt.Println(infoStyle.Render("No conversations yet."))
		return
	}

	active := s.store.ActiveConversationID()
	for i, conv := range convs {
		marker := "  "
		if conv.ID == active {
			marker = "> "
		}
		fmt.Printf("%s%2d. %s %s\n",
			marker,
			i+1,
			util.TruncateRunes(conv.Title, 50),
			infoStyle.Render(fmt.Sprintf("(%d messages)", conv.MessageCount())),
		)
	}
}

func (s *Session) switchConversation(args []string) {
	conv, ok := s.conversationByIndex(args)
	if !ok {
		return
	}
	s.store.SetActiveConversation(conv.ID)
	s.engine.ClearError()
	fmt.Println(infoStyle.Render("Switched to: " + util.TruncateRunes(conv.Title, 50)))
}

func (s *Session) deleteConversation(args []string) {
	var id, title string
	if len(args) == 0 {
		conv, ok := s.store.ActiveConversation()
		if !ok {
			fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" no active conversation")
			return
		}
		id, title = conv.ID, conv.Title
	} else {
		conv, ok := s.conversationByIndex(args)
		if !ok {
			return
		}
		id, title = conv.ID, conv.Title
	}

	s.store.DeleteConversation(id)
	s.engine.ClearError()
	fmt.Println(infoStyle.Render("Deleted: " + util.TruncateRunes(title, 50)))
}

func (s *Session) exportConversation(args []string) {
	conv, ok := s.store.ActiveConversation()
	if !ok || conv.MessageCount() == 0 {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" nothing to export")
		return
	}

	format := "markdown"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	var path string
	var err error
	switch format {
	case "markdown", "md":
		path, err = export.ExportMarkdown(conv, export.DefaultOptions())
	case "json":
		path, err = export.ExportJSON(conv, export.DefaultOptions())
	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" unknown format, use markdown or json")
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" export failed: "+err.Error())
		return
	}
	fmt.Println(infoStyle.Render("Exported to " + path))
}

// conversationByIndex resolves a 1-based index argument against /list order.
func (s *Session) conversationByIndex(args []string) (*model.Conversation, bool) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" give a conversation number from /list")
		return nil, false
	}

	n, err := strconv.Atoi(args[0])
	convs := s.store.Conversations()
	if err != nil || n < 1 || n > len(convs) {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" invalid conversation number")
		return nil, false
	}
	return convs[n-1], true
}

// =============================================================================
// BANNERS
// =============================================================================

func (s *Session) printWelcome() {
	fmt.Println(welcomeStyle.Render("seekr") + infoStyle.Render(" - answers with sources"))
	if !s.cfg.Search.Disabled && s.cfg.Search.APIKey == "" {
		fmt.Println(errorStyle.Render("[!]") + infoStyle.Render(" no search API key configured, answers will not cite the web"))
	}
	fmt.Println(infoStyle.Render("Type a question, or ") + commandStyle.Render("/help") + infoStyle.Render(" for commands."))
	fmt.Println()
}

func (s *Session) printHelp() {
	rows := []struct{ cmd, desc string }{
		{"/help, /h", "show this help"},
		{"/new, /n", "start a new conversation"},
		{"/list, /l", "list conversations"},
		{"/switch N, /s N", "switch to conversation N"},
		{"/delete [N], /d", "delete the active (or Nth) conversation"},
		{"/export [json], /e", "export the active conversation"},
		{"/quit, /q, exit", "exit"},
	}
	for _, row := range rows {
		fmt.Printf("  %s %s\n",
			commandStyle.Render(fmt.Sprintf("%-20s", row.cmd)),
			infoStyle.Render(row.desc))
	}
}

func (s *Session) printExitSummary() {
	elapsed := time.Since(s.startTime).Round(time.Second)
	fmt.Println(infoStyle.Render(fmt.Sprintf("%d questions in %s. Bye.", s.turns, elapsed)))
}
