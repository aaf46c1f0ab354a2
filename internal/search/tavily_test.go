package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/sibyl/internal/cache"
	"github.com/ppiankov/sibyl/internal/model"
)

func newTestClient(t *testing.T, serverURL string, maxResults int, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(model.SearchConfig{
		APIKey:            "tvly-test",
		BaseURL:           serverURL,
		MaxResults:        maxResults,
		RequestsPerSecond: 1000, // don't throttle tests
	}, time.Second, opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "weather in Lagos" {
			t.Errorf("unexpected query: %q", req.Query)
		}
		if req.APIKey != "tvly-test" {
			t.Errorf("unexpected api key: %q", req.APIKey)
		}
		_, _ = w.Write([]byte(`{"results": [
			{"title": "A", "url": "https://a", "content": "snippet a"},
			{"title": "B", "url": "https://b", "content": "snippet b"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	results, err := client.Search(context.Background(), "weather in Lagos")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Content != "snippet a" || results[1].Content != "snippet b" {
		t.Errorf("results out of order: %+v", results)
	}
}

func TestClient_Search_TruncatesToMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"content": "r1"}, {"content": "r2"}, {"content": "r3"}, {"content": "r4"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)

	results, err := client.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected truncation to 2 results, got %d", len(results))
	}
}

func TestClient_Search_EmptyIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	results, err := client.Search(context.Background(), "obscure query")
	if err != nil {
		t.Fatalf("empty results must not be an error, got: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	_, err := client.Search(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestClient_Search_CacheHit(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"results": [{"title": "A", "url": "https://a", "content": "cached"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3,
		WithCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute))

	for i := 0; i < 3; i++ {
		results, err := client.Search(context.Background(), "repeat query")
		if err != nil {
			t.Fatalf("Search %d failed: %v", i, err)
		}
		if len(results) != 1 || results[0].Content != "cached" {
			t.Fatalf("unexpected results on call %d: %+v", i, results)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 upstream request, got %d", got)
	}
}

func TestClient_Search_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"results": [{"content": "after retry"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	results, err := client.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Content != "after retry" {
		t.Errorf("unexpected results: %+v", results)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 requests (429 then success), got %d", calls.Load())
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(model.SearchConfig{}, time.Second)
	if err == nil {
		t.Fatal("expected error for missing API key, got nil")
	}
}
