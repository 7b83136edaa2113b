package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/candidhq/candid/pkg/knowledge"
	"github.com/candidhq/candid/pkg/ports"
)

// Coach answers free-form career questions. It consults the knowledge gate
// first and escalates to network search only when the private index has no
// sufficiently close answer.
type Coach struct {
	llm     ports.LLMClient
	gate    *knowledge.Gate
	search  ports.SearchProvider
	prompts *Prompts
	logger  *slog.Logger
}

// NewCoach builds a coach. search may be nil; escalation then falls through
// to a general-knowledge answer.
func NewCoach(llm ports.LLMClient, gate *knowledge.Gate, search ports.SearchProvider, prompts *Prompts, logger *slog.Logger) *Coach {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coach{llm: llm, gate: gate, search: search, prompts: prompts, logger: logger}
}

// Advise answers the query, preferring the private knowledge base.
func (c *Coach) Advise(ctx context.Context, query string) (string, error) {
	reference, source := c.gather(ctx, query)

	prompt := query
	if reference != "" {
		prompt = fmt.Sprintf("Reference material (%s):\n%s\n\nQuestion:\n%s", source, reference, query)
	}

	answer, err := c.llm.CompleteWithSystem(ctx, c.prompts.Coach.System, prompt)
	if err != nil {
		return "", fmt.Errorf("advise: %w", err)
	}
	return answer, nil
}

// gather collects reference material for the query. Retrieval failures are
// logged and degrade to an unreferenced answer rather than failing the call.
func (c *Coach) gather(ctx context.Context, query string) (reference, source string) {
	decision, err := c.gate.Decide(ctx, query)
	if err != nil {
		c.logger.Warn("knowledge gate failed, answering without references", "err", err)
		return "", ""
	}
	if !decision.Escalate {
		return decision.Content, "knowledge base"
	}

	if c.search == nil {
		return "", ""
	}
	snippets, err := c.search.Search(ctx, query)
	if err != nil {
		c.logger.Warn("network search failed, answering without references", "err", err)
		return "", ""
	}
	if len(snippets) == 0 {
		return "", ""
	}
	return strings.Join(snippets, "\n\n"), "web search"
}

// FallbackAdvice is the deterministic answer used when advising fails.
func (c *Coach) FallbackAdvice() string {
	return c.prompts.Coach.Fallback
}
