// seekr - a terminal answer engine with cited, web-sourced answers.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/seekr-tui/internal/chat"
	"github.com/jeranaias/seekr-tui/internal/cli"
	"github.com/jeranaias/seekr-tui/internal/cloud"
	"github.com/jeranaias/seekr-tui/internal/config"
	"github.com/jeranaias/seekr-tui/internal/search"
	"github.com/jeranaias/seekr-tui/internal/store"
	"github.com/jeranaias/seekr-tui/internal/ui"
	"github.com/jeranaias/seekr-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("seekr %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	cfg := loadConfig()
	app, cleanup, err := buildApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if len(args) > 0 {
		switch args[0] {
		case "ask":
			runAsk(app, args[1:])
			return
		case "chat":
			if hasFlag(args[1:], "--plain") || !cli.IsStdoutTTY() {
				runREPL(app)
				return
			}
			runTUI(app)
			return
		case "repl":
			runREPL(app)
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
			printUsage()
			os.Exit(2)
		}
	}

	// Full TUI needs a real terminal on both ends; fall back to the REPL
	// when stdin is interactive but stdout is piped or dumb.
	if cli.IsTTY() && cli.IsStdoutTTY() {
		runTUI(app)
		return
	}
	if cli.IsTTY() {
		runREPL(app)
		return
	}

	fmt.Fprintln(os.Stderr, "seekr needs a terminal; use \"seekr ask\" for scripted queries")
	os.Exit(1)
}

// =============================================================================
// WIRING
// =============================================================================

// app holds the shared components every front end runs on.
type app struct {
	cfg    *config.Config
	store  *store.Store
	engine *chat.Engine
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.Default()
	}
	return cfg
}

// buildApp wires the store, search and completion clients, engine, and the
// config hot-reload watcher. The returned cleanup closes everything.
func buildApp(cfg *config.Config) (*app, func(), error) {
	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	st := store.Open(filepath.Join(dataDir, "chats.json"))
	st.SetMaxConversations(cfg.Storage.MaxConversations)

	searchClient, searchCache := buildSearchClient(cfg, dataDir)

	completionClient := cloud.NewClient(cfg.Completion.APIKey).
		WithBaseURL(cfg.Completion.BaseURL).
		WithTimeout(time.Duration(cfg.Completion.TimeoutSecs) * time.Second)
	completionClient.SetModel(cfg.Completion.Model)

	engine := chat.NewEngine(st, searchClient, completionClient)

	// Hot-reload credentials and model on config file changes. Structural
	// settings (data dir, cache, theme) still need a restart.
	watcher, err := config.NewWatcher(func(next *config.Config) {
		searchClient.SetAPIKey(next.Search.APIKey)
		completionClient.SetAPIKey(next.Completion.APIKey)
		completionClient.SetModel(next.Completion.Model)
	})
	if err == nil {
		if werr := watcher.Watch(); werr != nil {
			log.Printf("config watch disabled: %v", werr)
		}
	} else {
		watcher = nil
		log.Printf("config watch disabled: %v", err)
	}

	cleanup := func() {
		if watcher != nil {
			watcher.Close()
		}
		if searchCache != nil {
			searchCache.Close()
		}
	}
	return &app{cfg: cfg, store: st, engine: engine}, cleanup, nil
}

// buildSearchClient wires the SerpApi client with the configured cache and
// rate limit. A disabled or keyless search still returns a client; it
// short-circuits every query so turns degrade to generic answers.
func buildSearchClient(cfg *config.Config, dataDir string) (*search.Client, *search.Cache) {
	apiKey := cfg.Search.APIKey
	if cfg.Search.Disabled {
		apiKey = ""
	}

	client := search.NewClient(apiKey).
		WithBaseURL(cfg.Search.BaseURL).
		WithNumResults(cfg.Search.NumResults).
		WithRateLimit(cfg.Search.RatePerMinute)

	var cache *search.Cache
	if cfg.Search.CacheEnabled && !cfg.Search.Disabled {
		ttl := time.Duration(cfg.Search.CacheTTLHours) * time.Hour
		c, err := search.OpenCache(filepath.Join(dataDir, "search.db"), ttl)
		if err != nil {
			log.Printf("search cache disabled: %v", err)
		} else {
			cache = c
			client.WithCache(c)
		}
	}
	return client, cache
}

// =============================================================================
// FRONT ENDS
// =============================================================================

func runTUI(a *app) {
	theme := styles.New(a.cfg.UI.Theme)
	searchEnabled := !a.cfg.Search.Disabled && a.cfg.Search.APIKey != ""

	p := tea.NewProgram(
		ui.New(a.engine, a.store, theme, searchEnabled),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runREPL(a *app) {
	if err := cli.NewSession(a.engine, a.store, a.cfg).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAsk(a *app, args []string) {
	asJSON := false
	var parts []string
	for _, arg := range args {
		if arg == "--json" {
			asJSON = true
			continue
		}
		parts = append(parts, arg)
	}

	if err := cli.RunAsk(a.engine, a.store, strings.Join(parts, " "), asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func hasFlag(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Print(`seekr - answers with sources

Usage:
  seekr                 Start the TUI (or the REPL on dumb terminals)
  seekr chat [--plain]  Same as above; --plain forces the REPL
  seekr repl            Force the line-based REPL
  seekr ask "question"  Ask one question and print the answer
  seekr ask --json ...  Print the answer message as JSON
  seekr version         Show version information

Configuration lives in ~/.seekr/config.toml. Set SEEKR_SERPAPI_KEY and
SEEKR_API_KEY to configure search and completion credentials.
`)
}
