// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/seekr-tui/internal/util"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultCacheTTL bounds how long a cached search response stays servable.
const DefaultCacheTTL = 24 * time.Hour

const cacheSchema = `
CREATE TABLE IF NOT EXISTS search_cache (
	query      TEXT PRIMARY KEY,
	results    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// =============================================================================
// RESULT CACHE
// =============================================================================

// Cache is a TTL-bounded SQLite cache of normalized search responses, keyed by
// normalized query. It is strictly best-effort: every failure degrades to a
// cache miss and never fails the search that triggered it.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// OpenCache opens (creating if needed) the cache database at path.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the cached results for query, or false on a miss. Stale and
// undecodable entries are treated as misses and evicted in place.
func (c *Cache) Get(query string) ([]Result, bool) {
	key := NormalizeQuery(query)

	var blob string
	var createdAt int64
	err := c.db.QueryRow(
		"SELECT results, created_at FROM search_cache WHERE query = ?", key,
	).Scan(&blob, &createdAt)
	if err != nil {
		return nil, false
	}

	if time.Since(time.Unix(createdAt, 0)) > c.ttl {
		c.db.Exec("DELETE FROM search_cache WHERE query = ?", key)
		return nil, false
	}

	var results []Result
	if err := json.Unmarshal([]byte(blob), &results); err != nil {
		c.db.Exec("DELETE FROM search_cache WHERE query = ?", key)
		return nil, false
	}
	return results, true
}

// Put stores results for query, replacing any previous entry. Errors are
// dropped; a failed write only costs a future cache miss.
func (c *Cache) Put(query string, results []Result) {
	blob, err := json.Marshal(results)
	if err != nil {
		return
	}

	c.db.Exec(
		"INSERT OR REPLACE INTO search_cache (query, results, created_at) VALUES (?, ?, ?)",
		NormalizeQuery(query), string(blob), time.Now().Unix(),
	)
}

// Prune removes all entries older than the TTL.
func (c *Cache) Prune() {
	cutoff := time.Now().Add(-c.ttl).Unix()
	c.db.Exec("DELETE FROM search_cache WHERE created_at < ?", cutoff)
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// NormalizeQuery canonicalizes a query for use as a cache key.
// UNICODE: NFC normalization so composed and decomposed forms of the same
// query share one cache entry.
func NormalizeQuery(query string) string {
	q := norm.NFC.String(query)
	q = strings.ToLower(q)
	return util.CollapseWhitespace(q)
}
