// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the search provider.
const (
	// DefaultBaseURL is the base URL for the search API.
	DefaultBaseURL = "https://serpapi.com"

	// DefaultNumResults is the fixed number of organic results requested.
	DefaultNumResults = 8

	// DefaultTimeout is the default timeout for search requests.
	DefaultTimeout = 15 * time.Second

	// DefaultRatePerMinute caps outbound search requests per minute.
	DefaultRatePerMinute = 30

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// searchResponse is the provider's wire shape. Only the fields the domain
// model needs are decoded; everything else is dropped at this boundary.
type searchResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Source  string `json:"source"`
		Date    string `json:"date"`
		Favicon string `json:"favicon"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// =============================================================================
// SEARCH CLIENT
// =============================================================================

// Client wraps the web search provider. Its one operation, SearchWeb, never
// returns a Go error: every failure mode (missing credential, transport
// failure, non-2xx status, provider-reported error) is absorbed into
// Response.Err so a broken search can only ever degrade a turn, not fail it.
type Client struct {
	mu      sync.RWMutex
	apiKey  string
	baseURL string

	numResults int
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *Cache
}

// NewClient creates a search client with the given API key. An empty key is
// allowed; SearchWeb then short-circuits with a configuration error and no
// network call.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		numResults: DefaultNumResults,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/DefaultRatePerMinute), 5),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithRateLimit caps outbound requests at perMinute (0 disables the limiter).
func (c *Client) WithRateLimit(perMinute int) *Client {
	if perMinute <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 5)
	return c
}

// WithNumResults overrides how many organic results are requested, clamped
// to the provider's 1-20 range.
func (c *Client) WithNumResults(n int) *Client {
	if n >= 1 && n <= 20 {
		c.numResults = n
	}
	return c
}

// WithCache attaches a result cache. Nil disables caching.
func (c *Client) WithCache(cache *Cache) *Client {
	c.cache = cache
	return c
}

// SetAPIKey replaces the credential at runtime (config hot-reload).
func (c *Client) SetAPIKey(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = strings.TrimSpace(apiKey)
}

// IsConfigured returns true if the client has an API key.
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

func (c *Client) currentKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// logRequest logs an outbound search without exposing the query string,
// which carries the API key.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("Search Request: %s %s", req.Method, req.URL.Path)
}

func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("Search Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

// SearchWeb performs a web search for query and returns the normalized top
// results. All failures are reported through Response.Err, never raised.
func (c *Client) SearchWeb(ctx context.Context, query string) Response {
	apiKey := c.currentKey()
	if apiKey == "" {
		// Short-circuit: no credential means no network call
		return Response{Results: []Result{}, Err: "search API key not configured"}
	}

	if c.cache != nil {
		if results, ok := c.cache.Get(query); ok {
			return Response{Results: results}
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{Results: []Result{}, Err: fmt.Sprintf("search rate limit wait: %v", err)}
		}
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", apiKey)
	params.Set("num", strconv.Itoa(c.numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return Response{Results: []Result{}, Err: fmt.Sprintf("failed to build search request: %v", err)}
	}

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{Results: []Result{}, Err: fmt.Sprintf("search request failed: %v", err)}
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	// SECURITY: Read response with size limit to prevent memory exhaustion
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return Response{Results: []Result{}, Err: fmt.Sprintf("failed to read search response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{Results: []Result{}, Err: fmt.Sprintf("search API error (HTTP %d)", resp.StatusCode)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{Results: []Result{}, Err: fmt.Sprintf("failed to parse search response: %v", err)}
	}
	if parsed.Error != "" {
		return Response{Results: []Result{}, Err: parsed.Error}
	}

	results := normalize(parsed)

	if c.cache != nil {
		c.cache.Put(query, results)
	}

	return Response{Results: results}
}

// normalize converts the provider payload into the closed Result shape.
// Source falls back to the link hostname and Position is re-assigned from
// returned order rather than trusted from the provider.
func normalize(parsed searchResponse) []Result {
	results := make([]Result, 0, len(parsed.OrganicResults))
	for i, raw := range parsed.OrganicResults {
		source := raw.Source
		if source == "" {
			source = hostOf(raw.Link)
		}
		results = append(results, Result{
			Title:    raw.Title,
			Link:     raw.Link,
			Snippet:  raw.Snippet,
			Source:   source,
			Date:     raw.Date,
			Favicon:  raw.Favicon,
			Position: i + 1,
		})
	}
	return results
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
