// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "search.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t, time.Hour)

	results := []Result{
		{Title: "Titan", Link: "https://en.wikipedia.org/wiki/Titan", Source: "Wikipedia", Position: 1},
		{Title: "Moons", Link: "https://science.nasa.gov/saturn/moons", Source: "science.nasa.gov", Position: 2},
	}
	cache.Put("Largest Moon of Saturn", results)

	// Lookup is keyed by normalized query, not the literal string
	got, ok := cache.Get("  largest   moon of SATURN ")
	require.True(t, ok)
	assert.Equal(t, results, got)
}

func TestCacheMiss(t *testing.T) {
	cache := newTestCache(t, time.Hour)

	_, ok := cache.Get("never stored")
	assert.False(t, ok)
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := newTestCache(t, time.Millisecond)

	cache.Put("q", []Result{{Title: "stale"}})
	time.Sleep(10 * time.Millisecond)

	_, ok := cache.Get("q")
	assert.False(t, ok, "entry past TTL must be a miss")
}

func TestCacheEmptyResults(t *testing.T) {
	cache := newTestCache(t, time.Hour)

	// A zero-result search is still cacheable
	cache.Put("obscure query", []Result{})
	got, ok := cache.Get("obscure query")
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestClientServesFromCache(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(`{"organic_results": [{"title": "T", "link": "https://a.example/x"}]}`))
	}))
	defer server.Close()

	cache := newTestCache(t, time.Hour)
	client := NewClient("test-key").WithBaseURL(server.URL).WithCache(cache)

	first := client.SearchWeb(context.Background(), "repeat me")
	second := client.SearchWeb(context.Background(), "Repeat  Me")

	require.False(t, first.Failed())
	require.False(t, second.Failed())
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "second search should hit the cache")
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello world"},
		{"  spaced \t out  ", "spaced out"},
		{"MIXED case", "mixed case"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := NormalizeQuery(tc.in); got != tc.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
