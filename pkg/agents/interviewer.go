package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/ports"
)

// Interviewer generates the next question for a session. The question focus
// rotates by round so a short interview still covers technical depth,
// communication, and motivation.
type Interviewer struct {
	llm     ports.LLMClient
	prompts *Prompts
}

// NewInterviewer builds an interviewer over the given completion client.
func NewInterviewer(llm ports.LLMClient, prompts *Prompts) *Interviewer {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Interviewer{llm: llm, prompts: prompts}
}

// NextQuestion asks for one new question tailored to the session's profile,
// target role, and the questions already asked.
func (iv *Interviewer) NextQuestion(ctx context.Context, s *domain.Session) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate profile:\n%s\n\n", s.CandidateProfile)
	fmt.Fprintf(&b, "Target role: %s\n", s.TargetRole)
	fmt.Fprintf(&b, "Question focus for this round: %s\n", iv.prompts.KindForRound(s.Round))

	if len(s.Turns) > 0 {
		b.WriteString("\nAlready asked:\n")
		for _, turn := range s.Turns {
			fmt.Fprintf(&b, "- %s\n", turn.Question)
		}
	}

	question, err := iv.llm.CompleteWithSystem(ctx, iv.prompts.Interviewer.System, b.String())
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}
	return question, nil
}

// FallbackQuestion is the deterministic question used when generation fails.
func (iv *Interviewer) FallbackQuestion() string {
	return iv.prompts.Interviewer.Fallback
}
