package model

import "time"

// Config is the complete sibyl configuration. It is assembled explicitly
// (defaults, config file, env, flags) and passed down to constructors -
// no component reads global state.
type Config struct {
	Server ServerConfig `yaml:"server"`
	LLM    LLMConfig    `yaml:"llm"`
	Store  StoreConfig  `yaml:"store"`
	Search SearchConfig `yaml:"search"`
	Loop   LoopConfig   `yaml:"loop"`
	Cache  CacheConfig  `yaml:"cache"`
	HTTP   HTTPConfig   `yaml:"http"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `yaml:"addr"` // listen address, e.g. 127.0.0.1:8090
}

// LLMConfig holds model provider configuration shared by the grader,
// the generator and the context store's synthesis step.
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string `yaml:"provider"`

	// Model used for answer generation and context synthesis
	Model string `yaml:"model"`

	// GraderModel used for adequacy grading (defaults to Model)
	GraderModel string `yaml:"grader_model"`

	// EmbeddingModel used for context-store retrieval
	EmbeddingModel string `yaml:"embedding_model"`

	// APIKey for hosted providers (OPENAI_API_KEY / GROQ_API_KEY / ANTHROPIC_API_KEY)
	APIKey string `yaml:"-"`

	// BaseURL for custom endpoints (Groq, Ollama, self-hosted gateways)
	BaseURL string `yaml:"base_url"`

	// Timeout for each model call
	Timeout int `yaml:"timeout"` // seconds

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens"`

	// Proxy settings
	HTTPProxy  string `yaml:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy"`
}

// StoreConfig configures the pgvector-backed context store.
type StoreConfig struct {
	// DatabaseURL is the PostgreSQL connection string (SIBYL_DATABASE_URL)
	DatabaseURL string `yaml:"-"`

	// Table holding pre-indexed chunks (columns: content text, embedding vector)
	Table string `yaml:"table"`

	// TopK chunks retrieved per question
	TopK int `yaml:"top_k"`
}

// SearchConfig configures the web search escalation tool.
type SearchConfig struct {
	// APIKey for the Tavily API (TAVILY_API_KEY)
	APIKey string `yaml:"-"`

	// BaseURL overrides the Tavily endpoint (tests, proxies)
	BaseURL string `yaml:"base_url"`

	// Depth is Tavily's search_depth parameter: "basic" or "advanced"
	Depth string `yaml:"depth"`

	// MaxResults caps snippets per search round
	MaxResults int `yaml:"max_results"`

	// FetchPages fetches result URLs and extracts page text to enrich snippets
	FetchPages bool `yaml:"fetch_pages"`

	// RequestsPerSecond limits outbound calls per host
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// CacheTTL for cached search responses
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LoopConfig bounds the escalation loop.
type LoopConfig struct {
	// MaxRounds caps search->regenerate->re-grade rounds per request.
	// On exhaustion the latest candidate answer is returned as-is.
	MaxRounds int `yaml:"max_rounds"`
}

// CacheConfig configures search-response caching.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"` // disk layer location ("" = memory only)
	TTL     time.Duration `yaml:"ttl"`
}

// HTTPConfig configures outbound HTTP behavior (search, page fetches).
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8090",
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "llama3-8b-8192",
			EmbeddingModel: "text-embedding-3-small",
			Timeout:        30,
			MaxTokens:      1000,
		},
		Store: StoreConfig{
			Table: "document_chunks",
			TopK:  3,
		},
		Search: SearchConfig{
			Depth:             "basic",
			MaxResults:        3,
			RequestsPerSecond: 1,
			CacheTTL:          15 * time.Minute,
		},
		Loop: LoopConfig{
			MaxRounds: 5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		HTTP: HTTPConfig{
			Timeout:      20 * time.Second,
			UserAgent:    "Sibyl/0.1 (+https://github.com/ppiankov/sibyl)",
			MaxBodyBytes: 2_000_000,
		},
	}
}
