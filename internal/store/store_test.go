package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJoinChunks(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{name: "empty", chunks: nil, want: ""},
		{name: "single", chunks: []string{"one"}, want: "one"},
		{name: "multiple", chunks: []string{"one", "two", "three"}, want: "one\n\ntwo\n\nthree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinChunks(tt.chunks); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [{"embedding": [0.1, 0.2, 0.3], "index": 0}],
			"model": "text-embedding-3-small"
		}`))
	}))
	defer server.Close()

	embedder, err := NewOpenAIEmbedder("test-key", server.URL, "text-embedding-3-small")
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder failed: %v", err)
	}

	vec, err := embedder.Embed(context.Background(), "some question")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(vec))
	}
}

func TestOpenAIEmbedder_Embed_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	embedder, err := NewOpenAIEmbedder("test-key", server.URL, "")
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder failed: %v", err)
	}

	_, err = embedder.Embed(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for empty embedding data, got nil")
	}
}

func TestNewOpenAIEmbedder_RequiresKey(t *testing.T) {
	_, err := NewOpenAIEmbedder("", "", "")
	if err == nil {
		t.Fatal("expected error for missing API key, got nil")
	}
}
