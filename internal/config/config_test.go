// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Search.NumResults != 8 {
		t.Errorf("NumResults = %d, want 8", cfg.Search.NumResults)
	}
	if cfg.Completion.Model != "glm-4.7-flash" {
		t.Errorf("Model = %q", cfg.Completion.Model)
	}
	if cfg.Storage.MaxConversations != 100 {
		t.Errorf("MaxConversations = %d, want 100", cfg.Storage.MaxConversations)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0.0"

[search]
api_key = "serp-key"
num_results = 5

[completion]
api_key = "llm-key"
model = "glm-4.7"

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}

	if cfg.Search.APIKey != "serp-key" {
		t.Errorf("Search.APIKey = %q", cfg.Search.APIKey)
	}
	if cfg.Search.NumResults != 5 {
		t.Errorf("NumResults = %d, want 5", cfg.Search.NumResults)
	}
	if cfg.Completion.Model != "glm-4.7" {
		t.Errorf("Model = %q", cfg.Completion.Model)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}

	// Unset fields filled from defaults
	if cfg.Completion.BaseURL == "" {
		t.Error("BaseURL should be filled from defaults")
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"search": {"api_key": "from-json"}, "ui": {"theme": "auto"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadJSON(cfg, path); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if cfg.Search.APIKey != "from-json" {
		t.Errorf("APIKey = %q", cfg.Search.APIKey)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestLoadFixesInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = \"1.0.0\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SEEKR_SERPAPI_KEY", "env-serp")
	t.Setenv("SEEKR_API_KEY", "env-llm")
	t.Setenv("SEEKR_MODEL", "env-model")
	t.Setenv("SEEKR_SEARCH_DISABLED", "true")
	t.Setenv("SEEKR_DATA_DIR", "/tmp/seekr-data")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Search.APIKey != "env-serp" {
		t.Errorf("Search.APIKey = %q", cfg.Search.APIKey)
	}
	if cfg.Completion.APIKey != "env-llm" {
		t.Errorf("Completion.APIKey = %q", cfg.Completion.APIKey)
	}
	if cfg.Completion.Model != "env-model" {
		t.Errorf("Model = %q", cfg.Completion.Model)
	}
	if !cfg.Search.Disabled {
		t.Error("Search.Disabled should be true")
	}
	if cfg.Storage.DataDir != "/tmp/seekr-data" {
		t.Errorf("DataDir = %q", cfg.Storage.DataDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad search URL", func(c *Config) { c.Search.BaseURL = "not a url" }, "search.base_url"},
		{"num results too high", func(c *Config) { c.Search.NumResults = 50 }, "search.num_results"},
		{"zero timeout", func(c *Config) { c.Completion.TimeoutSecs = 0 }, "completion.timeout_secs"},
		{"negative retention", func(c *Config) { c.Storage.MaxConversations = -1 }, "storage.max_conversations"},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tc.wantErr)
			}
		})
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Search.APIKey = "roundtrip-key"
	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}

	loaded := Default()
	if err := LoadJSON(loaded, path); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if loaded.Search.APIKey != "roundtrip-key" {
		t.Errorf("APIKey = %q after round trip", loaded.Search.APIKey)
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Completion.Model = "custom-model"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	loaded := Default()
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if loaded.Completion.Model != "custom-model" {
		t.Errorf("Model = %q after round trip", loaded.Completion.Model)
	}
}

func TestStringRedactsKeys(t *testing.T) {
	cfg := Default()
	cfg.Search.APIKey = "super-secret-serp-key"
	cfg.Completion.APIKey = "super-secret-llm-key"

	out := cfg.String()
	if strings.Contains(out, "super-secret") {
		t.Error("String() must not leak API keys")
	}
	if !strings.Contains(out, "[REDACTED") {
		t.Error("String() should mark keys as redacted")
	}
}
