package agents

import (
	"context"
	"fmt"

	"github.com/candidhq/candid/pkg/ports"
)

// Evaluator produces short coaching feedback for one answered question.
type Evaluator struct {
	llm     ports.LLMClient
	prompts *Prompts
}

// NewEvaluator builds an evaluator over the given completion client.
func NewEvaluator(llm ports.LLMClient, prompts *Prompts) *Evaluator {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Evaluator{llm: llm, prompts: prompts}
}

// Feedback reviews the answer to a question.
func (e *Evaluator) Feedback(ctx context.Context, question, answer string) (string, error) {
	prompt := fmt.Sprintf("Question:\n%s\n\nAnswer:\n%s", question, answer)
	feedback, err := e.llm.CompleteWithSystem(ctx, e.prompts.Evaluator.System, prompt)
	if err != nil {
		return "", fmt.Errorf("evaluate answer: %w", err)
	}
	return feedback, nil
}

// FallbackFeedback is the deterministic feedback used when evaluation fails.
func (e *Evaluator) FallbackFeedback() string {
	return e.prompts.Evaluator.Fallback
}
