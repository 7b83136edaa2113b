package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/candidhq/candid/pkg/intake"
	"github.com/candidhq/candid/pkg/ports"
)

// Profiler extracts a candidate profile and target role from raw material.
// The target role is parsed deterministically from the material's headings;
// only the prose profile needs the language model.
type Profiler struct {
	llm     ports.LLMClient
	prompts *Prompts
}

// NewProfiler builds a profiler over the given completion client.
func NewProfiler(llm ports.LLMClient, prompts *Prompts) *Profiler {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Profiler{llm: llm, prompts: prompts}
}

// Extract summarizes the material into a profile and picks out the declared
// target role, if any.
func (p *Profiler) Extract(ctx context.Context, material string) (*ports.Extraction, error) {
	if strings.TrimSpace(material) == "" {
		return nil, fmt.Errorf("candidate material is empty")
	}

	profile, err := p.llm.CompleteWithSystem(ctx, p.prompts.Profiler.System, material)
	if err != nil {
		return nil, fmt.Errorf("extract profile: %w", err)
	}

	return &ports.Extraction{
		Profile:    profile,
		TargetRole: intake.ParseTargetRole(material),
	}, nil
}
