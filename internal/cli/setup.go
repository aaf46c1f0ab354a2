package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/ppiankov/sibyl/internal/answer"
	"github.com/ppiankov/sibyl/internal/cache"
	"github.com/ppiankov/sibyl/internal/llm"
	"github.com/ppiankov/sibyl/internal/model"
	"github.com/ppiankov/sibyl/internal/search"
	"github.com/ppiankov/sibyl/internal/store"
)

// loadConfig assembles the effective configuration: defaults, config
// file, then environment. Secrets come from env only.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.grader_model"); v != "" {
		cfg.LLM.GraderModel = v
	}
	if v := viper.GetString("llm.embedding_model"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.timeout"); v > 0 {
		cfg.LLM.Timeout = v
	}
	if v := viper.GetString("store.table"); v != "" {
		cfg.Store.Table = v
	}
	if v := viper.GetInt("store.top_k"); v > 0 {
		cfg.Store.TopK = v
	}
	if v := viper.GetString("search.depth"); v != "" {
		cfg.Search.Depth = v
	}
	if v := viper.GetInt("search.max_results"); v > 0 {
		cfg.Search.MaxResults = v
	}
	if viper.IsSet("search.fetch_pages") {
		cfg.Search.FetchPages = viper.GetBool("search.fetch_pages")
	}
	if v := viper.GetInt("loop.max_rounds"); v > 0 {
		cfg.Loop.MaxRounds = v
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}

	// API keys and connection strings from environment
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.LLM.Provider == "anthropic" || cfg.LLM.Provider == "claude" {
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	cfg.Search.APIKey = os.Getenv("TAVILY_API_KEY")
	cfg.Store.DatabaseURL = os.Getenv("SIBYL_DATABASE_URL")
	if cfg.Store.DatabaseURL == "" {
		cfg.Store.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg
}

// buildEngine wires all collaborators and returns the escalation engine
// plus a cleanup function releasing held resources.
func buildEngine(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*answer.Engine, func(), error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, nil, fmt.Errorf("initialize LLM provider: %w", err)
	}

	generator := llm.NewGenerator(provider, cfg.LLM.Model)
	grader := llm.NewGrader(provider, cfg.LLM.GraderModel)

	embedder, err := store.NewOpenAIEmbedder(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.EmbeddingModel)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize embedder: %w", err)
	}

	pool, err := store.Connect(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	contextStore := store.New(pool, embedder, generator, cfg.Store, logger)

	var searchOpts []search.Option
	if cfg.Cache.Enabled {
		var c cache.Cache
		if cfg.Cache.Dir != "" {
			c = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			c = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
		}
		searchOpts = append(searchOpts, search.WithCache(c, cfg.Search.CacheTTL))
	}
	if cfg.Search.FetchPages {
		fetcher := search.NewPageFetcher(cfg.HTTP, cfg.Search.RequestsPerSecond)
		searchOpts = append(searchOpts, search.WithPageFetcher(fetcher))
	}
	searchOpts = append(searchOpts, search.WithLogger(logger))

	searcher, err := search.NewClient(cfg.Search, cfg.HTTP.Timeout, searchOpts...)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("initialize search client: %w", err)
	}

	engine := answer.NewEngine(contextStore, grader, generator, searcher, cfg.Loop.MaxRounds, logger)

	return engine, pool.Close, nil
}

// newLogger builds the process logger; verbose enables debug level
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
