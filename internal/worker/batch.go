package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/sibyl/internal/model"
)

// Answerer defines the interface for answering a single question
type Answerer interface {
	Ask(ctx context.Context, question string) (*model.Answer, error)
}

// AskJob represents one question to answer
type AskJob struct {
	Question string
	Answerer Answerer
}

// Execute executes the ask job
func (j *AskJob) Execute(ctx context.Context) Result {
	answer, err := j.Answerer.Ask(ctx, j.Question)
	if err != nil {
		return &AskResult{
			Question: j.Question,
			Error:    err,
		}
	}
	return &AskResult{
		Question: j.Question,
		Answer:   answer,
	}
}

// AskResult represents the result of one answered question
type AskResult struct {
	Question string
	Answer   *model.Answer
	Error    error
}

// GetError returns the error from the ask result
func (r *AskResult) GetError() error {
	return r.Error
}

// BatchProcessor answers multiple questions concurrently. Each question
// runs its own escalation loop instance; no state is shared between jobs.
type BatchProcessor struct {
	answerer    Answerer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(answerer Answerer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		answerer:    answerer,
		concurrency: concurrency,
	}
}

// ProcessQuestions answers multiple questions concurrently
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*AskResult {
	if len(questions) == 0 {
		return []*AskResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, q := range questions {
		pool.Submit(&AskJob{
			Question: q,
			Answerer: b.answerer,
		})
	}

	results := pool.Wait()

	askResults := make([]*AskResult, len(results))
	for i, result := range results {
		askResults[i] = result.(*AskResult)
	}

	return askResults
}

// ProcessFile reads questions from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AskResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads questions from a file (one per line).
// Blank lines and lines starting with '#' are skipped; duplicates are dropped.
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		questions = append(questions, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
