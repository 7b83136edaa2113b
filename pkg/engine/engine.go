package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/ports"
)

// DefaultMaxRounds is used when a caller does not specify a round count.
const DefaultMaxRounds = 3

// Outcome is the result of driving a session forward. Exactly one of
// Suspended and Finished is true.
type Outcome struct {
	Session *domain.Session

	// Suspended means the engine is waiting for an answer to Question.
	Suspended bool
	Question  string

	// Finished means the session reached its end with Report set.
	Finished bool
	Report   string
}

// StartInput describes a new session.
type StartInput struct {
	// Material is the raw candidate text (resume, notes). Required.
	Material string

	// User attributes the interview record. Optional.
	User string

	// MaxRounds caps the number of question rounds. Zero selects
	// DefaultMaxRounds.
	MaxRounds int
}

// Engine is the public surface of the interview workflow. All methods are
// safe for concurrent use; operations on the same session are serialized
// through the configured locker.
type Engine struct {
	checkpoints ports.CheckpointStore
	records     ports.RecordStore
	locker      ports.SessionLocker
	machine     *machine
	logger      *slog.Logger
	newID       func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLocker replaces the in-process keyed locker, e.g. with a distributed
// one when several engine instances share a checkpoint store.
func WithLocker(locker ports.SessionLocker) Option {
	return func(e *Engine) {
		if locker != nil {
			e.locker = locker
		}
	}
}

// WithRecordStore enables interview record upserts on suspend and finish.
func WithRecordStore(records ports.RecordStore) Option {
	return func(e *Engine) {
		e.records = records
	}
}

// WithAgentTimeout bounds each capability agent attempt.
func WithAgentTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.machine.timeout = d
		}
	}
}

// WithIDGenerator overrides session id generation, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New builds an engine over the given checkpoint store and agents.
func New(checkpoints ports.CheckpointStore, agents Agents, opts ...Option) (*Engine, error) {
	if checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store is required")
	}
	if agents.Profiler == nil || agents.Interviewer == nil || agents.Evaluator == nil || agents.Reporter == nil {
		return nil, fmt.Errorf("profiler, interviewer, evaluator and reporter agents are required")
	}

	e := &Engine{
		checkpoints: checkpoints,
		locker:      NewKeyedLocker(),
		logger:      slog.Default(),
		newID:       uuid.NewString,
	}
	e.machine = &machine{agents: agents, timeout: DefaultAgentTimeout, logger: e.logger}

	for _, opt := range opts {
		opt(e)
	}
	e.machine.logger = e.logger
	return e, nil
}

// Start creates a session and drives it to its first question.
func (e *Engine) Start(ctx context.Context, in StartInput) (*Outcome, error) {
	if strings.TrimSpace(in.Material) == "" {
		return nil, &domain.InvariantError{Op: "Start", Reason: "candidate material must not be empty"}
	}
	maxRounds := in.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	id := e.newID()
	unlock, err := e.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s := domain.NewSession(id, in.Material, maxRounds)
	if err := e.commit(ctx, s); err != nil {
		return nil, err
	}
	e.logger.Info("session started", "session_id", id, "max_rounds", maxRounds, "user", in.User)

	outcome, err := e.machine.run(ctx, s, e.commit)
	if err != nil {
		return nil, err
	}
	e.upsertRecord(ctx, s, in.User)
	return outcome, nil
}

// Resume applies the candidate's answer to a suspended session and drives it
// until the next question or the final report. A concurrent resume for the
// same session fails fast with domain.ErrSessionBusy.
func (e *Engine) Resume(ctx context.Context, sessionID, answer string) (*Outcome, error) {
	unlock, err := e.locker.TryLock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := e.loadResumePoint(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.Finished && s.Report != "" {
		// Resuming a completed session just re-reads the result.
		return &Outcome{Session: s, Finished: true, Report: s.Report}, nil
	}

	if s.OpenTurn() == nil {
		// The session crashed before its first question was committed.
		// Re-drive to the suspend point, then apply the answer there.
		outcome, err := e.machine.run(ctx, s, e.commit)
		if err != nil {
			return nil, err
		}
		s = outcome.Session
	}

	if err := s.RecordAnswer(answer); err != nil {
		return nil, err
	}
	if err := e.machine.evaluate(ctx, s); err != nil {
		return nil, err
	}
	if err := s.CompleteRound(); err != nil {
		return nil, err
	}
	s.Stage = domain.StageCheckFinish
	if err := e.commit(ctx, s); err != nil {
		return nil, err
	}
	e.upsertRecord(ctx, s, "")

	outcome, err := e.machine.run(ctx, s, e.commit)
	if err != nil {
		return nil, err
	}
	if outcome.Finished {
		e.logger.Info("session finished", "session_id", sessionID, "rounds", s.Round)
	}
	e.upsertRecord(ctx, s, "")
	return outcome, nil
}

// loadResumePoint picks the snapshot a resume continues from. Normally that
// is the latest checkpoint. If the latest checkpoint is mid-flight leftover
// from a crashed resume, the log is rewound to the last suspend point so the
// caller's answer wins over the partially persisted future.
func (e *Engine) loadResumePoint(ctx context.Context, sessionID string) (*domain.Session, error) {
	latest, err := e.checkpoints.Latest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s := latest.State.Clone()
	if s.OpenTurn() != nil || (s.Finished && s.Report != "") {
		return s, nil
	}
	if s.Stage == domain.StageAwaitAnswer {
		return nil, &domain.InvariantError{Op: "Resume", Reason: "awaiting answer without an open turn"}
	}

	history, err := e.checkpoints.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := len(history) - 1; i >= 0; i-- {
		cp := history[i]
		if cp.State.OpenTurn() == nil {
			continue
		}
		e.logger.Warn("rewinding divergent checkpoints",
			"session_id", sessionID, "from_seq", cp.Seq+1, "latest_seq", latest.Seq)
		if err := e.checkpoints.TruncateFrom(ctx, sessionID, cp.Seq+1); err != nil {
			return nil, fmt.Errorf("truncate divergent checkpoints: %w", err)
		}
		return cp.State.Clone(), nil
	}

	// No suspend point was ever reached; continue from the latest snapshot.
	return s, nil
}

// Snapshot returns a copy of the latest persisted session state.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (*domain.Session, error) {
	latest, err := e.checkpoints.Latest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return latest.State.Clone(), nil
}

// History returns the session's full checkpoint log.
func (e *Engine) History(ctx context.Context, sessionID string) ([]domain.Checkpoint, error) {
	return e.checkpoints.History(ctx, sessionID)
}

// Records lists interview records, optionally filtered by user. It requires
// a configured record store.
func (e *Engine) Records(ctx context.Context, user string) ([]domain.InterviewRecord, error) {
	if e.records == nil {
		return nil, fmt.Errorf("no record store configured")
	}
	return e.records.List(ctx, user)
}

// commit validates and appends one checkpoint.
func (e *Engine) commit(ctx context.Context, s *domain.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	seq, err := e.checkpoints.Append(ctx, s.ID, s)
	if err != nil {
		return fmt.Errorf("append checkpoint: %w", err)
	}
	e.logger.Debug("checkpoint committed", "session_id", s.ID, "seq", seq, "stage", s.Stage)
	return nil
}

// upsertRecord mirrors the session into the record store. The record copy is
// advisory; a failure is logged and never fails the session.
func (e *Engine) upsertRecord(ctx context.Context, s *domain.Session, user string) {
	if e.records == nil {
		return
	}
	if user == "" {
		if existing, err := e.records.Get(ctx, s.ID); err == nil {
			user = existing.User
		}
	}
	if err := e.records.Upsert(ctx, domain.RecordFromSession(s, user)); err != nil {
		e.logger.Warn("record upsert failed", "session_id", s.ID, "err", err)
	}
}
