package ports

import "context"

// LLMClient is the narrow surface the capability agents need from a language
// model provider. Implementations must respect ctx cancellation; the engine
// applies its own per-call deadline.
type LLMClient interface {
	// Complete sends a single-turn prompt and returns the model's text.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a prompt with a separate system instruction.
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}

// EmbeddingEngine turns text into a vector for similarity search.
type EmbeddingEngine interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension reports the vector size this engine produces.
	Dimension() int
}
