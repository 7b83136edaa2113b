package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/intake"
	"github.com/candidhq/candid/pkg/ports"
)

// ProfileAgent extracts the candidate profile during intake.
type ProfileAgent interface {
	Extract(ctx context.Context, material string) (*ports.Extraction, error)
}

// QuestionAgent generates the next interview question.
type QuestionAgent interface {
	NextQuestion(ctx context.Context, s *domain.Session) (string, error)
	FallbackQuestion() string
}

// FeedbackAgent reviews one answered question.
type FeedbackAgent interface {
	Feedback(ctx context.Context, question, answer string) (string, error)
	FallbackFeedback() string
}

// ReportAgent writes the closing report.
type ReportAgent interface {
	Report(ctx context.Context, s *domain.Session) (string, error)
	FallbackReport(s *domain.Session) string
}

// AdviceAgent answers free-form questions; the machine uses it to attach
// learning resources to the final report when one is configured.
type AdviceAgent interface {
	Advise(ctx context.Context, query string) (string, error)
	FallbackAdvice() string
}

// Agents bundles the capability agents a machine drives. Advisor is
// optional; the others are required.
type Agents struct {
	Profiler    ProfileAgent
	Interviewer QuestionAgent
	Evaluator   FeedbackAgent
	Reporter    ReportAgent
	Advisor     AdviceAgent
}

// FallbackProfile is recorded when profile extraction fails entirely, so the
// interview can still proceed with generic questions.
const FallbackProfile = "A candidate with professional experience. No detailed profile could be extracted from the submitted material."

// transitions is the fixed part of the stage graph. CheckFinish is the one
// conditional transition and is resolved in step.
var transitions = map[domain.Stage]domain.Stage{
	domain.StageStart:       domain.StageIntake,
	domain.StageIntake:      domain.StageAskQuestion,
	domain.StageAskQuestion: domain.StageAwaitAnswer,
	domain.StageFinalize:    domain.StageEnd,
}

// commitFunc persists a snapshot after a transition. The machine calls it
// once per step; a failure aborts the run before any further mutation.
type commitFunc func(ctx context.Context, s *domain.Session) error

// machine executes stages one at a time. It owns no state of its own; the
// session carries everything, which is what makes crash re-entry possible.
type machine struct {
	agents  Agents
	timeout time.Duration
	logger  *slog.Logger
}

// run drives the session forward until it suspends for an answer or ends.
// A checkpoint is committed after every transition.
func (m *machine) run(ctx context.Context, s *domain.Session, commit commitFunc) (*Outcome, error) {
	for {
		switch s.Stage {
		case domain.StageAwaitAnswer:
			open := s.OpenTurn()
			if open == nil {
				return nil, &domain.InvariantError{Op: "run", Reason: "awaiting answer without an open turn"}
			}
			return &Outcome{Session: s, Suspended: true, Question: open.Question}, nil
		case domain.StageEnd:
			return &Outcome{Session: s, Finished: true, Report: s.Report}, nil
		}

		if err := m.step(ctx, s); err != nil {
			return nil, err
		}
		if err := commit(ctx, s); err != nil {
			return nil, err
		}
	}
}

// step executes the current stage and advances the stage pointer.
func (m *machine) step(ctx context.Context, s *domain.Session) error {
	stage := s.Stage
	m.logger.Debug("executing stage", "session_id", s.ID, "stage", stage, "round", s.Round)

	var err error
	switch stage {
	case domain.StageStart:
		// Creation is the whole of the start stage.
	case domain.StageIntake:
		err = m.intake(ctx, s)
	case domain.StageAskQuestion:
		err = m.askQuestion(ctx, s)
	case domain.StageCheckFinish:
		err = s.MarkFinished()
	case domain.StageFinalize:
		err = m.finalize(ctx, s)
	default:
		err = fmt.Errorf("stage %q is not executable", stage)
	}
	if err != nil {
		return err
	}

	if stage == domain.StageCheckFinish {
		if s.Finished {
			s.Stage = domain.StageFinalize
		} else {
			s.Stage = domain.StageAskQuestion
		}
		return nil
	}
	s.Stage = transitions[stage]
	return nil
}

// intake extracts the candidate profile. It is idempotent: a session that
// already carries a profile passes through untouched, which covers crash
// re-entry from an intake checkpoint.
func (m *machine) intake(ctx context.Context, s *domain.Session) error {
	if s.CandidateProfile != "" || s.TargetRole != "" {
		return nil
	}

	extraction := m.extract(ctx, s.CandidateMaterial)
	return s.SetProfile(extraction.Profile, extraction.TargetRole)
}

// extract applies the uniform agent policy to the profiler, whose result is
// structured rather than plain text.
func (m *machine) extract(ctx context.Context, material string) *ports.Extraction {
	timeout := m.timeout
	if timeout <= 0 {
		timeout = DefaultAgentTimeout
	}

	attempt := func() (*ports.Extraction, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return m.agents.Profiler.Extract(callCtx, material)
	}

	ex, err := attempt()
	if err != nil && domain.IsTransient(err) {
		m.logger.Warn("profile extraction failed, retrying once", "err", err)
		ex, err = attempt()
	}
	if err != nil || ex == nil || ex.Profile == "" {
		m.logger.Warn("profile extraction failed, falling back to plain extraction", "err", err)
		ex, err = intake.NewExtractor().Extract(ctx, material)
		if err != nil || ex.Profile == "" {
			return &ports.Extraction{Profile: FallbackProfile}
		}
	}
	return ex
}

// askQuestion opens a new turn. Re-entry with an already open turn is a
// no-op so a crash between commit and delivery cannot double-ask.
func (m *machine) askQuestion(ctx context.Context, s *domain.Session) error {
	if s.OpenTurn() != nil {
		return nil
	}

	question := invokeAgent(ctx, m.logger, "interviewer", m.timeout, m.agents.Interviewer.FallbackQuestion(),
		func(ctx context.Context) (string, error) {
			return m.agents.Interviewer.NextQuestion(ctx, s)
		})
	return s.AppendTurn(question)
}

// finalize writes the report and, when an advisor is configured, a set of
// learning resources. Both are skipped on re-entry if already present.
func (m *machine) finalize(ctx context.Context, s *domain.Session) error {
	if s.LearningResources == "" && m.agents.Advisor != nil {
		query := fmt.Sprintf("Suggest learning resources for a candidate preparing for a %s position.", displayRole(s.TargetRole))
		s.LearningResources = invokeAgent(ctx, m.logger, "advisor", m.timeout, m.agents.Advisor.FallbackAdvice(),
			func(ctx context.Context) (string, error) {
				return m.agents.Advisor.Advise(ctx, query)
			})
	}

	if s.Report != "" {
		return nil
	}
	report := invokeAgent(ctx, m.logger, "reporter", m.timeout, m.agents.Reporter.FallbackReport(s),
		func(ctx context.Context) (string, error) {
			return m.agents.Reporter.Report(ctx, s)
		})
	return s.SetReport(report)
}

// evaluate attaches feedback to the just-answered turn.
func (m *machine) evaluate(ctx context.Context, s *domain.Session) error {
	last := s.LastTurn()
	if last == nil || !last.Answered() {
		return &domain.InvariantError{Op: "evaluate", Reason: "no answered turn to evaluate"}
	}
	if last.Feedback != "" {
		return nil
	}

	feedback := invokeAgent(ctx, m.logger, "evaluator", m.timeout, m.agents.Evaluator.FallbackFeedback(),
		func(ctx context.Context) (string, error) {
			return m.agents.Evaluator.Feedback(ctx, last.Question, last.Answer)
		})
	return s.SetFeedback(feedback)
}

func displayRole(role string) string {
	if role == "" {
		return "general software engineering"
	}
	return role
}
