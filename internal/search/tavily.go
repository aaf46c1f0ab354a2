// Package search implements the web search escalation tool: a Tavily API
// client with response caching, per-host rate limiting and optional
// robots.txt-respecting page fetches to enrich snippets.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/sibyl/internal/cache"
	"github.com/ppiankov/sibyl/internal/model"
	"github.com/ppiankov/sibyl/internal/worker"
)

const defaultBaseURL = "https://api.tavily.com"

// maxBackoffRetries bounds retries on HTTP 429
const maxBackoffRetries = 3

// Client calls the Tavily search API
type Client struct {
	apiKey     string
	baseURL    string
	depth      string
	maxResults int
	httpClient *http.Client
	limiter    *worker.Limiter
	cache      cache.Cache // nil = caching disabled
	cacheTTL   time.Duration
	fetcher    *PageFetcher // nil = snippet enrichment disabled
	logger     *slog.Logger
}

// Tavily API structures
type tavilyRequest struct {
	Query       string `json:"query"`
	APIKey      string `json:"api_key"`
	SearchDepth string `json:"search_depth,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Option customizes a Client
type Option func(*Client)

// WithCache enables search-response caching
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithPageFetcher enables result-page fetching to enrich snippets
func WithPageFetcher(f *PageFetcher) Option {
	return func(cl *Client) {
		cl.fetcher = f
	}
}

// WithLogger sets the client logger
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a Tavily search client
func NewClient(cfg model.SearchConfig, httpTimeout time.Duration, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Tavily API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	depth := cfg.Depth
	if depth == "" {
		depth = "basic"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	if httpTimeout == 0 {
		httpTimeout = 20 * time.Second
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		depth:      depth,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: httpTimeout},
		limiter:    worker.NewLimiter(rps, 2),
		cacheTTL:   cfg.CacheTTL,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Search posts a query to Tavily and returns ranked snippets. An empty
// result slice is a valid outcome, distinct from a transport error.
func (c *Client) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	cacheKey := cache.Key("search:" + c.depth + ":" + query)
	if c.cache != nil {
		if data, found := c.cache.Get(cacheKey); found {
			var results []model.SearchResult
			if err := json.Unmarshal(data, &results); err == nil {
				c.logger.Debug("search cache hit", "query", query)
				return results, nil
			}
			_ = c.cache.Delete(cacheKey)
		}
	}

	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.makeRequest(ctx, tavilyRequest{
		Query:       query,
		APIKey:      c.apiKey,
		SearchDepth: c.depth,
		MaxResults:  c.maxResults,
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, model.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
		if len(results) >= c.maxResults {
			break
		}
	}

	if c.fetcher != nil {
		c.enrich(ctx, results)
	}

	if c.cache != nil && len(results) > 0 {
		if data, err := json.Marshal(results); err == nil {
			_ = c.cache.Set(cacheKey, data, c.cacheTTL)
		}
	}

	return results, nil
}

// makeRequest posts to the Tavily search endpoint, backing off on 429
func (c *Client) makeRequest(ctx context.Context, apiReq tavilyRequest) (*tavilyResponse, error) {
	payload, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/search", c.baseURL)
	delay := 1 * time.Second

	var httpResp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		httpResp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request: %w", err)
		}

		if httpResp.StatusCode != http.StatusTooManyRequests || attempt >= maxBackoffRetries {
			break
		}
		_ = httpResp.Body.Close()

		// Back off and retry on 429, doubling the delay each time
		c.logger.Warn("search rate limited, backing off", "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from search API", httpResp.StatusCode)
	}

	var resp tavilyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &resp, nil
}

// enrich replaces snippets with full page text where the page can be
// fetched; failures leave the original snippet in place.
func (c *Client) enrich(ctx context.Context, results []model.SearchResult) {
	for i := range results {
		if results[i].URL == "" {
			continue
		}
		text, err := c.fetcher.Fetch(ctx, results[i].URL)
		if err != nil {
			c.logger.Debug("page fetch skipped", "url", results[i].URL, "error", err)
			continue
		}
		if text != "" {
			results[i].Content = text
		}
	}
}
