package ports

import (
	"context"

	"github.com/candidhq/candid/pkg/domain"
)

// CheckpointStore is the durable, keyed-by-session-id log of session
// snapshots. Appends are totally ordered per session; different sessions are
// independent and may be written in parallel.
//
// The engine serializes writers per session, so implementations do not need
// to guard against concurrent divergent appends for the same ID — but they
// must keep each session's sequence strictly increasing and gap-free.
type CheckpointStore interface {
	// Append persists a new snapshot and returns its sequence number.
	// The first checkpoint of a session has Seq == 1.
	Append(ctx context.Context, sessionID string, state *domain.Session) (int, error)

	// Latest returns the most recent checkpoint for the session, or
	// domain.ErrSessionNotFound if the session has never been checkpointed.
	Latest(ctx context.Context, sessionID string) (*domain.Checkpoint, error)

	// History returns all checkpoints for the session in ascending Seq
	// order. Used for audit and debugging, not by the hot path.
	History(ctx context.Context, sessionID string) ([]domain.Checkpoint, error)

	// TruncateFrom discards every checkpoint with Seq >= seq. Called on
	// resume when re-execution diverges from a partially persisted future.
	TruncateFrom(ctx context.Context, sessionID string, seq int) error

	// Sessions lists the IDs with at least one checkpoint.
	Sessions(ctx context.Context) ([]string, error)

	// Delete removes every checkpoint for the session. Deleting an unknown
	// session is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// RecordStore keeps the out-of-band audit copy of sessions for listing and
// review. It is written on every suspend and on finalize; it is never read
// back by the engine, so a lagging record cannot corrupt a session.
type RecordStore interface {
	// Upsert stores the record, replacing any previous version for the
	// same session ID.
	Upsert(ctx context.Context, record *domain.InterviewRecord) error

	// Get returns the record for a session, or domain.ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*domain.InterviewRecord, error)

	// List returns records newest-first. If user is non-empty, only that
	// user's records are returned.
	List(ctx context.Context, user string) ([]domain.InterviewRecord, error)
}
