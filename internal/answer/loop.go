// Package answer implements the escalation loop at the heart of sibyl:
// ask the context store, grade the answer, and while the grade is
// inadequate escalate to web search, accumulate evidence, regenerate and
// re-grade until an adequate answer, an empty search, a search failure or
// the round cap terminates the loop.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/sibyl/internal/llm"
	"github.com/ppiankov/sibyl/internal/model"
)

// Fixed degraded messages returned in place of an answer when escalation
// cannot proceed. The underlying error detail is logged, never returned.
const (
	MsgNoResults    = "Sorry, I couldn't find any information."
	MsgSearchFailed = "Sorry, an error occurred during the web search."
)

// ContextStore answers a question from the pre-indexed document corpus
type ContextStore interface {
	Query(ctx context.Context, question string) (string, error)
}

// Grader judges whether a candidate answer resolves the question
type Grader interface {
	Grade(ctx context.Context, question, generation string) (llm.Verdict, error)
}

// Generator synthesizes an answer from accumulated evidence
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

// Searcher queries the web search tool, returning zero or more snippets
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
}

// Engine runs the escalation loop. One Engine serves many requests;
// each Ask call owns its private accumulator, so concurrent calls need
// no synchronization.
type Engine struct {
	store     ContextStore
	grader    Grader
	generator Generator
	searcher  Searcher
	maxRounds int
	logger    *slog.Logger
}

// NewEngine creates an escalation engine. maxRounds bounds the number of
// search->regenerate->re-grade rounds per question (<=0 selects the default).
func NewEngine(store ContextStore, grader Grader, generator Generator, searcher Searcher, maxRounds int, logger *slog.Logger) *Engine {
	if maxRounds <= 0 {
		maxRounds = model.DefaultConfig().Loop.MaxRounds
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:     store,
		grader:    grader,
		generator: generator,
		searcher:  searcher,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// Ask answers one question. It always returns either a terminal
// *model.Answer or an error; search failures and empty search results
// terminate with a degraded Answer (never an error), while context-store,
// generator and grader failures - including unparsable verdicts - are
// returned to the caller as errors.
//
// When the round cap is exhausted while the grader still says inadequate,
// the latest candidate generation is returned as a best-effort answer.
func (e *Engine) Ask(ctx context.Context, question string) (*model.Answer, error) {
	generation, err := e.store.Query(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("context store: %w", err)
	}
	e.logger.Debug("generated from context", "question", question)

	verdict, err := e.grader.Grade(ctx, question, generation)
	if err != nil {
		return nil, fmt.Errorf("grade context answer: %w", err)
	}

	if verdict == llm.VerdictAdequate {
		e.logger.Debug("context answer accepted")
		return &model.Answer{
			Question:   question,
			Documents:  []model.EvidenceDocument{},
			Generation: generation,
			Source:     model.SourceCorpus,
		}, nil
	}

	// The inadequate context answer is discarded: web evidence fully
	// replaces it, it never enters the accumulator.
	evidence := NewAccumulator()

	for round := 1; ; round++ {
		if round > e.maxRounds {
			e.logger.Warn("round cap reached, returning last candidate",
				"question", question, "rounds", e.maxRounds)
			return &model.Answer{
				Question:   question,
				Documents:  evidence.Snapshot(),
				Generation: generation,
				Source:     model.SourceWeb,
				Rounds:     e.maxRounds,
			}, nil
		}

		e.logger.Debug("escalating to web search", "question", question, "round", round)

		results, err := e.searcher.Search(ctx, question)
		if err != nil {
			// Absorbed here: the caller gets a degraded answer, not a fault
			e.logger.Error("web search failed", "question", question, "error", err)
			return &model.Answer{
				Question:   question,
				Documents:  evidence.Snapshot(),
				Generation: MsgSearchFailed,
				Source:     model.SourceNone,
				Rounds:     round,
			}, nil
		}

		if len(results) == 0 {
			e.logger.Info("web search returned no results", "question", question)
			return &model.Answer{
				Question:   question,
				Documents:  evidence.Snapshot(),
				Generation: MsgNoResults,
				Source:     model.SourceNone,
				Rounds:     round,
			}, nil
		}

		evidence.Append(flattenResults(results))

		generation, err = e.generator.Generate(ctx, question, evidence.Join())
		if err != nil {
			return nil, fmt.Errorf("regenerate (round %d): %w", round, err)
		}
		e.logger.Debug("regenerated from web evidence", "round", round, "documents", evidence.Len())

		verdict, err = e.grader.Grade(ctx, question, generation)
		if err != nil {
			return nil, fmt.Errorf("re-grade (round %d): %w", round, err)
		}

		if verdict == llm.VerdictAdequate {
			e.logger.Debug("web answer accepted", "rounds", round)
			return &model.Answer{
				Question:   question,
				Documents:  evidence.Snapshot(),
				Generation: generation,
				Source:     model.SourceWeb,
				Rounds:     round,
			}, nil
		}
	}
}

// flattenResults joins all snippets from one search round into a single
// evidence document, preserving result order.
func flattenResults(results []model.SearchResult) model.EvidenceDocument {
	contents := make([]string, 0, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
		if r.URL != "" {
			sources = append(sources, r.URL)
		}
	}

	return model.EvidenceDocument{
		Content: strings.Join(contents, "\n"),
		Sources: sources,
	}
}
