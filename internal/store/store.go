// Package store implements the context store: question answering over a
// pre-indexed document corpus held in PostgreSQL with the pgvector
// extension. The store only reads an existing chunk table - building the
// index is someone else's job.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/ppiankov/sibyl/internal/llm"
	"github.com/ppiankov/sibyl/internal/model"
)

// Querier is the subset of pgxpool.Pool the store needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store answers questions from a pgvector-backed chunk table:
// embed the question, retrieve the top-k nearest chunks by cosine
// distance, and synthesize an answer from them.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db        Querier
	embedder  Embedder
	generator *llm.Generator
	table     string
	topK      int
	logger    *slog.Logger
}

// New creates a context store over an existing connection pool
func New(db Querier, embedder Embedder, generator *llm.Generator, cfg model.StoreConfig, logger *slog.Logger) *Store {
	table := cfg.Table
	if table == "" {
		table = model.DefaultConfig().Store.Table
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = model.DefaultConfig().Store.TopK
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		db:        db,
		embedder:  embedder,
		generator: generator,
		table:     table,
		topK:      topK,
		logger:    logger,
	}
}

// Connect opens a pgx connection pool for the configured database
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Query answers a question from the corpus: retrieve, then generate.
func (s *Store) Query(ctx context.Context, question string) (string, error) {
	chunks, err := s.retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	contextText := joinChunks(chunks)
	s.logger.Debug("retrieved corpus chunks", "count", len(chunks))

	answer, err := s.generator.Generate(ctx, question, contextText)
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}

	return answer, nil
}

// retrieve returns the topK chunk contents nearest to the question
func (s *Store) retrieve(ctx context.Context, question string) ([]string, error) {
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	// Table name comes from config, never from request input
	sql := fmt.Sprintf(
		"SELECT content FROM %s ORDER BY embedding <=> $1 LIMIT $2",
		pgx.Identifier{s.table}.Sanitize(),
	)

	rows, err := s.db.Query(ctx, sql, pgvector.NewVector(vec), s.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var chunks []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read chunks: %w", err)
	}

	return chunks, nil
}

// joinChunks concatenates retrieved chunks with blank-line separators,
// mirroring how evidence documents are joined downstream.
func joinChunks(chunks []string) string {
	return strings.Join(chunks, "\n\n")
}
