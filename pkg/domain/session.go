package domain

import (
	"strings"
	"time"
)

// Turn is one question/answer/feedback triple within a session.
// Question is immutable once set; Answer and Feedback may only be written
// while the turn is still the newest one.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
}

// Answered reports whether the candidate has replied to this turn.
func (t Turn) Answered() bool { return t.Answer != "" }

// Session is the single mutable record passed through the workflow. It is
// created by NewSession, mutated exclusively through its methods, and becomes
// read-only once Finished is true and Report is set.
type Session struct {
	ID        string `json:"id"`
	Stage     Stage  `json:"stage"`
	Round     int    `json:"round"`
	MaxRounds int    `json:"max_rounds"`

	// CandidateMaterial is the raw submitted text. It is kept on the
	// snapshot so Intake can re-run idempotently after a resume.
	CandidateMaterial string `json:"candidate_material,omitempty"`
	CandidateProfile  string `json:"candidate_profile,omitempty"`
	TargetRole        string `json:"target_role,omitempty"`

	Turns []Turn `json:"turns"`

	LearningResources string `json:"learning_resources,omitempty"`
	Report            string `json:"report,omitempty"`
	Finished          bool   `json:"finished"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session at the start stage.
func NewSession(id, candidateMaterial string, maxRounds int) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:                id,
		Stage:             StageStart,
		MaxRounds:         maxRounds,
		CandidateMaterial: candidateMaterial,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Clone returns a deep copy. Stores keep and hand out clones so a caller can
// never mutate persisted state through a shared slice.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Turns = make([]Turn, len(s.Turns))
	copy(cp.Turns, s.Turns)
	return &cp
}

// LastTurn returns a pointer to the newest turn, or nil.
func (s *Session) LastTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}

// OpenTurn returns the turn currently awaiting an answer, or nil.
func (s *Session) OpenTurn() *Turn {
	last := s.LastTurn()
	if last == nil || last.Answered() {
		return nil
	}
	return last
}

// SetProfile records the intake result. It refuses to overwrite an existing
// profile: Intake is idempotent and these fields are write-once.
func (s *Session) SetProfile(profile, targetRole string) error {
	if s.CandidateProfile != "" || s.TargetRole != "" {
		return invariant("SetProfile", "candidate profile already set")
	}
	s.CandidateProfile = profile
	s.TargetRole = targetRole
	s.touch()
	return nil
}

// AppendTurn creates a new turn with the given question and an empty answer.
// It fails if a turn is still open or if all rounds are already used up.
func (s *Session) AppendTurn(question string) error {
	if strings.TrimSpace(question) == "" {
		return invariant("AppendTurn", "question must not be empty")
	}
	if s.OpenTurn() != nil {
		return invariant("AppendTurn", "previous turn has no answer yet")
	}
	if s.Round >= s.MaxRounds {
		return invariant("AppendTurn", "round %d already reached max_rounds %d", s.Round, s.MaxRounds)
	}
	if len(s.Turns) != s.Round {
		return invariant("AppendTurn", "turn count %d does not match round %d", len(s.Turns), s.Round)
	}
	s.Turns = append(s.Turns, Turn{Question: question})
	s.touch()
	return nil
}

// RecordAnswer writes the candidate's answer into the open turn.
func (s *Session) RecordAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return invariant("RecordAnswer", "answer must not be empty")
	}
	open := s.OpenTurn()
	if open == nil {
		return invariant("RecordAnswer", "no turn is awaiting an answer")
	}
	open.Answer = answer
	s.touch()
	return nil
}

// SetFeedback attaches evaluation feedback to the newest turn. Feedback is
// only ever written to the most recently created turn, never retroactively.
func (s *Session) SetFeedback(feedback string) error {
	last := s.LastTurn()
	if last == nil {
		return invariant("SetFeedback", "session has no turns")
	}
	if !last.Answered() {
		return invariant("SetFeedback", "newest turn has no answer yet")
	}
	last.Feedback = feedback
	s.touch()
	return nil
}

// CompleteRound increments the round counter after the newest turn has been
// fully answered and evaluated.
func (s *Session) CompleteRound() error {
	if len(s.Turns) != s.Round+1 {
		return invariant("CompleteRound", "turn count %d does not match round %d + 1", len(s.Turns), s.Round)
	}
	if s.OpenTurn() != nil {
		return invariant("CompleteRound", "newest turn has no answer yet")
	}
	s.Round++
	s.touch()
	return nil
}

// MarkFinished computes the finished flag from rounds. The transition is
// monotonic: once true it never reverts.
func (s *Session) MarkFinished() error {
	done := s.Round >= s.MaxRounds
	if s.Finished && !done {
		return invariant("MarkFinished", "finished flag would revert to false")
	}
	if done && s.OpenTurn() != nil {
		return invariant("MarkFinished", "cannot finish with an unanswered turn")
	}
	s.Finished = done
	s.touch()
	return nil
}

// SetReport writes the final artifact. The report may only be set once, and
// only after the session is finished, so the two stay coupled.
func (s *Session) SetReport(report string) error {
	if !s.Finished {
		return invariant("SetReport", "report cannot be set before the session is finished")
	}
	if s.Report != "" {
		return invariant("SetReport", "report already set")
	}
	if strings.TrimSpace(report) == "" {
		return invariant("SetReport", "report must not be empty")
	}
	s.Report = report
	s.touch()
	return nil
}

// Validate checks the structural invariants. The engine runs it before every
// checkpoint; stores may run it on load as a corruption guard.
func (s *Session) Validate() error {
	if s.ID == "" {
		return invariant("Validate", "session id is empty")
	}
	if !s.Stage.Valid() {
		return invariant("Validate", "unknown stage %q", s.Stage)
	}
	if s.MaxRounds <= 0 {
		return invariant("Validate", "max_rounds must be positive, got %d", s.MaxRounds)
	}
	if s.Round < 0 || s.Round > s.MaxRounds {
		return invariant("Validate", "round %d outside [0, %d]", s.Round, s.MaxRounds)
	}
	if n := len(s.Turns); n != s.Round && n != s.Round+1 {
		return invariant("Validate", "turn count %d does not match round %d", n, s.Round)
	}
	for i, t := range s.Turns {
		if t.Question == "" {
			return invariant("Validate", "turn %d has an empty question", i)
		}
		// Only the newest turn may be unanswered.
		if !t.Answered() && i != len(s.Turns)-1 {
			return invariant("Validate", "turn %d has no answer but is not the newest turn", i)
		}
	}
	if s.Finished {
		if s.Round < s.MaxRounds {
			return invariant("Validate", "finished before reaching max_rounds")
		}
		if s.OpenTurn() != nil {
			return invariant("Validate", "finished with an unanswered turn")
		}
	}
	if s.Report != "" && !s.Finished {
		return invariant("Validate", "report set on an unfinished session")
	}
	// The biconditional (finished implies a report) only holds once the
	// machine has drained: between CheckFinish and Finalize the session is
	// finished but the report is still being produced.
	if s.Stage.Terminal() && s.Finished && s.Report == "" {
		return invariant("Validate", "terminal session has no report")
	}
	return nil
}

func (s *Session) touch() { s.UpdatedAt = time.Now().UTC() }
