package llm

import (
	"context"
	"fmt"
)

const generatorSystem = "You are an assistant for question-answering tasks."

// Generator synthesizes an answer to a question from a context string
// (the concatenation of the accumulated evidence documents).
type Generator struct {
	provider Provider
	model    string
}

// NewGenerator creates a generator backed by the given provider. model
// overrides the provider's default model when non-empty.
func NewGenerator(provider Provider, model string) *Generator {
	return &Generator{provider: provider, model: model}
}

// Generate produces an answer to question conditioned on contextText.
func (g *Generator) Generate(ctx context.Context, question, contextText string) (string, error) {
	resp, err := g.provider.Complete(ctx, CompletionRequest{
		System: generatorSystem,
		Prompt: buildGeneratorPrompt(question, contextText),
		Model:  g.model,
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return resp.Text, nil
}

// buildGeneratorPrompt constructs the answer-generation prompt
func buildGeneratorPrompt(question, contextText string) string {
	return fmt.Sprintf(`Only use the following pieces of retrieved context to answer the question.
If the context does not provide the information needed, say so.
Keep the answer concise.

Question: %s
Context: %s
Answer:`, question, contextText)
}
