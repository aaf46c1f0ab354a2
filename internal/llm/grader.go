package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Verdict is the grader's binary adequacy judgment
type Verdict int

const (
	// VerdictAdequate means the answer resolves the question
	VerdictAdequate Verdict = iota

	// VerdictInadequate means the answer does not resolve the question
	VerdictInadequate
)

func (v Verdict) String() string {
	if v == VerdictAdequate {
		return "adequate"
	}
	return "inadequate"
}

// ErrVerdict indicates the grader's output could not be parsed to a verdict.
// It must never be collapsed into either verdict - callers surface it.
var ErrVerdict = errors.New("unparsable grader verdict")

const graderSystem = "You are a grader assessing whether an answer is useful to resolve a question."

// Grader judges whether a candidate answer adequately resolves a question.
// The underlying model is instructed to reply with a JSON object containing
// a single 'score' key; anything else is a protocol violation.
type Grader struct {
	provider Provider
	model    string
}

// NewGrader creates a grader backed by the given provider. model overrides
// the provider's default model when non-empty.
func NewGrader(provider Provider, model string) *Grader {
	return &Grader{provider: provider, model: model}
}

// Grade produces exactly one verdict for the (question, generation) pair.
// Returns ErrVerdict (wrapped) when the model's output does not parse to
// a yes/no score.
func (g *Grader) Grade(ctx context.Context, question, generation string) (Verdict, error) {
	prompt := buildGraderPrompt(question, generation)

	resp, err := g.provider.Complete(ctx, CompletionRequest{
		System:    graderSystem,
		Prompt:    prompt,
		Model:     g.model,
		MaxTokens: 20,
	})
	if err != nil {
		return VerdictInadequate, fmt.Errorf("grade: %w", err)
	}

	return ParseVerdict(resp.Text)
}

// buildGraderPrompt constructs the grading prompt
func buildGraderPrompt(question, generation string) string {
	return fmt.Sprintf(`Give a score 'yes' or 'no' to indicate whether the answer is useful to resolve the question.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.

Here is the answer:
-------
%s
-------
Here is the question: %s`, generation, question)
}

// ParseVerdict parses the grader's raw output into a Verdict. The payload
// must be a JSON object whose 'score' value is exactly "yes" or "no"
// (case-insensitive, surrounding whitespace ignored). Markdown code fences
// around the object are stripped; everything else is ErrVerdict.
func ParseVerdict(raw string) (Verdict, error) {
	payload := stripCodeFence(strings.TrimSpace(raw))

	var out struct {
		Score string `json:"score"`
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return VerdictInadequate, fmt.Errorf("%w: %q", ErrVerdict, truncate(raw, 120))
	}

	switch strings.ToLower(strings.TrimSpace(out.Score)) {
	case "yes":
		return VerdictAdequate, nil
	case "no":
		return VerdictInadequate, nil
	default:
		return VerdictInadequate, fmt.Errorf("%w: score %q", ErrVerdict, out.Score)
	}
}

// stripCodeFence removes a surrounding markdown code fence, if present
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag on the opening fence (```json)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first != "" && !strings.ContainsAny(first, "{}") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
