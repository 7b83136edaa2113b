package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/ports"
)

// Reporter writes the closing report after the final round.
type Reporter struct {
	llm     ports.LLMClient
	prompts *Prompts
}

// NewReporter builds a reporter over the given completion client.
func NewReporter(llm ports.LLMClient, prompts *Prompts) *Reporter {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Reporter{llm: llm, prompts: prompts}
}

// Report summarizes the whole session.
func (r *Reporter) Report(ctx context.Context, s *domain.Session) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate profile:\n%s\n\n", s.CandidateProfile)
	fmt.Fprintf(&b, "Target role: %s\n\n", s.TargetRole)
	for i, turn := range s.Turns {
		fmt.Fprintf(&b, "Round %d\nQ: %s\nA: %s\n", i+1, turn.Question, turn.Answer)
		if turn.Feedback != "" {
			fmt.Fprintf(&b, "Coach notes: %s\n", turn.Feedback)
		}
		b.WriteString("\n")
	}

	report, err := r.llm.CompleteWithSystem(ctx, r.prompts.Reporter.System, b.String())
	if err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return report, nil
}

// FallbackReport assembles a deterministic report from the recorded turns so
// the session can always finish with a non-empty report.
func (r *Reporter) FallbackReport(s *domain.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview summary for %s.\n", displayRole(s.TargetRole))
	fmt.Fprintf(&b, "Rounds completed: %d.\n\n", s.Round)
	for i, turn := range s.Turns {
		fmt.Fprintf(&b, "Round %d question: %s\n", i+1, turn.Question)
		if turn.Feedback != "" {
			fmt.Fprintf(&b, "Feedback: %s\n", turn.Feedback)
		}
	}
	b.WriteString("\nA detailed written assessment could not be generated for this session.")
	return b.String()
}

func displayRole(role string) string {
	if strings.TrimSpace(role) == "" {
		return "the target role"
	}
	return role
}
