// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for seekr.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.seekr/config.toml
//   - ~/.seekr/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/seekr-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete seekr configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Search provider configuration
	Search SearchConfig `toml:"search" json:"search"`

	// Completion provider configuration
	Completion CompletionConfig `toml:"completion" json:"completion"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// SearchConfig contains web search provider configuration.
type SearchConfig struct {
	// APIKey is the search provider API key. Empty disables search; answers
	// then come without citations.
	APIKey string `toml:"api_key" json:"api_key"`
	// BaseURL overrides the provider endpoint (testing, proxies).
	BaseURL string `toml:"base_url" json:"base_url"`
	// NumResults is the number of organic results requested per search.
	NumResults int `toml:"num_results" json:"num_results"`
	// Disabled turns search off even when a key is configured.
	Disabled bool `toml:"disabled" json:"disabled"`
	// CacheEnabled controls the on-disk search result cache.
	CacheEnabled bool `toml:"cache_enabled" json:"cache_enabled"`
	// CacheTTLHours is the time-to-live for cached search responses in hours.
	CacheTTLHours int `toml:"cache_ttl_hours" json:"cache_ttl_hours"`
	// RatePerMinute caps outbound search requests (0 = unlimited).
	RatePerMinute int `toml:"rate_per_minute" json:"rate_per_minute"`
}

// CompletionConfig contains completion provider configuration.
type CompletionConfig struct {
	// APIKey is the completion provider API key.
	APIKey string `toml:"api_key" json:"api_key"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url" json:"base_url"`
	// Model is the chat model identifier.
	Model string `toml:"model" json:"model"`
	// TimeoutSecs bounds each completion request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// StorageConfig contains conversation storage configuration.
type StorageConfig struct {
	// DataDir is where conversations and the search cache live
	// (empty = ~/.seekr).
	DataDir string `toml:"data_dir" json:"data_dir"`
	// MaxConversations caps stored conversations (0 = unlimited).
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// WordWrap is the rendered answer width in columns.
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Search: SearchConfig{
			APIKey:        "",
			BaseURL:       "https://serpapi.com",
			NumResults:    8,
			Disabled:      false,
			CacheEnabled:  true,
			CacheTTLHours: 24,
			RatePerMinute: 30,
		},

		Completion: CompletionConfig{
			APIKey:      "",
			BaseURL:     "https://api.z.ai/api/paas/v4",
			Model:       "glm-4.7-flash",
			TimeoutSecs: 60,
		},

		Storage: StorageConfig{
			DataDir:          "",
			MaxConversations: 100,
		},

		UI: UIConfig{
			Theme:    "dark",
			WordWrap: 100,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the seekr configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".seekr"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir resolves the storage directory, falling back to the config dir.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return ConfigDir()
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to protect API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Try JSON as fallback
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	cfg, err := finishLoad(cfg)
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finishLoad applies env overrides, defaults, and validation.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Search
	if cfg.Search.BaseURL == "" {
		cfg.Search.BaseURL = defaults.Search.BaseURL
	}
	if cfg.Search.NumResults == 0 {
		cfg.Search.NumResults = defaults.Search.NumResults
	}
	if cfg.Search.CacheTTLHours == 0 {
		cfg.Search.CacheTTLHours = defaults.Search.CacheTTLHours
	}
	if cfg.Search.RatePerMinute == 0 {
		cfg.Search.RatePerMinute = defaults.Search.RatePerMinute
	}

	// Completion
	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = defaults.Completion.BaseURL
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = defaults.Completion.Model
	}
	if cfg.Completion.TimeoutSecs == 0 {
		cfg.Completion.TimeoutSecs = defaults.Completion.TimeoutSecs
	}

	// Storage
	if cfg.Storage.MaxConversations == 0 {
		cfg.Storage.MaxConversations = defaults.Storage.MaxConversations
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.WordWrap == 0 {
		cfg.UI.WordWrap = defaults.UI.WordWrap
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SEEKR_* environment variables on top of the
// loaded configuration. Environment always wins over file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SEEKR_SERPAPI_KEY"); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv("SEEKR_SEARCH_URL"); v != "" {
		c.Search.BaseURL = v
	}
	if v := os.Getenv("SEEKR_SEARCH_DISABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Search.Disabled = b
		}
	}
	if v := os.Getenv("SEEKR_API_KEY"); v != "" {
		c.Completion.APIKey = v
	}
	if v := os.Getenv("SEEKR_API_URL"); v != "" {
		c.Completion.BaseURL = v
	}
	if v := os.Getenv("SEEKR_MODEL"); v != "" {
		c.Completion.Model = v
	}
	if v := os.Getenv("SEEKR_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("SEEKR_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# seekr configuration file")
	fmt.Fprintln(file, "# Generated by seekr - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	for _, u := range []struct {
		field string
		value string
	}{
		{"search.base_url", c.Search.BaseURL},
		{"completion.base_url", c.Completion.BaseURL},
	} {
		if u.value == "" {
			continue
		}
		parsed, err := url.Parse(u.value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, ValidationError{
				Field:   u.field,
				Message: fmt.Sprintf("invalid URL %q", u.value),
			})
		}
	}

	if c.Search.NumResults < 1 || c.Search.NumResults > 20 {
		errs = append(errs, ValidationError{
			Field:   "search.num_results",
			Message: fmt.Sprintf("must be between 1 and 20, got %d", c.Search.NumResults),
		})
	}
	if c.Search.RatePerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "search.rate_per_minute",
			Message: "cannot be negative",
		})
	}
	if c.Completion.TimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "completion.timeout_secs",
			Message: "must be at least 1 second",
		})
	}
	if c.Storage.MaxConversations < 0 {
		errs = append(errs, ValidationError{
			Field:   "storage.max_conversations",
			Message: "cannot be negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// String returns a printable summary of the configuration.
// SECURITY: API keys are redacted, never printed.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("seekr configuration:\n")
	fmt.Fprintf(&sb, "  search: key=%s url=%s results=%d disabled=%v\n",
		redactKey(c.Search.APIKey), c.Search.BaseURL, c.Search.NumResults, c.Search.Disabled)
	fmt.Fprintf(&sb, "  completion: key=%s url=%s model=%s\n",
		redactKey(c.Completion.APIKey), c.Completion.BaseURL, c.Completion.Model)
	fmt.Fprintf(&sb, "  storage: dir=%s max_conversations=%d\n",
		c.Storage.DataDir, c.Storage.MaxConversations)
	fmt.Fprintf(&sb, "  ui: theme=%s wrap=%d\n", c.UI.Theme, c.UI.WordWrap)
	return sb.String()
}

func redactKey(key string) string {
	if key == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d]", len(key))
}
