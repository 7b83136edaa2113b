// Package sqlite provides a file-backed record store for single-node
// deployments that want durable interview records without running an
// external database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/candidhq/candid/pkg/domain"
)

// RecordStore implements ports.RecordStore on SQLite. Turns are stored as a
// JSON column since they are only read back whole.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore opens (and if needed creates) the database at path.
func NewRecordStore(path string) (*RecordStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &RecordStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// openDB opens the database with the single-writer pragmas every store in
// this package relies on.
func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}
	return db, nil
}

func (s *RecordStore) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS interview_records (
		session_id        TEXT PRIMARY KEY,
		user              TEXT NOT NULL DEFAULT '',
		candidate_profile TEXT NOT NULL DEFAULT '',
		target_role       TEXT NOT NULL DEFAULT '',
		turns             TEXT NOT NULL DEFAULT '[]',
		report            TEXT NOT NULL DEFAULT '',
		finished          INTEGER NOT NULL DEFAULT 0,
		created_at        TIMESTAMP NOT NULL,
		updated_at        TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interview_records_user
		ON interview_records(user, updated_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Upsert stores the record, replacing any previous version.
func (s *RecordStore) Upsert(ctx context.Context, record *domain.InterviewRecord) error {
	turns, err := json.Marshal(record.Turns)
	if err != nil {
		return fmt.Errorf("failed to marshal turns: %w", err)
	}

	const query = `
	INSERT INTO interview_records
		(session_id, user, candidate_profile, target_role, turns, report, finished, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		user = excluded.user,
		candidate_profile = excluded.candidate_profile,
		target_role = excluded.target_role,
		turns = excluded.turns,
		report = excluded.report,
		finished = excluded.finished,
		updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		record.SessionID, record.User, record.CandidateProfile, record.TargetRole,
		string(turns), record.Report, record.Finished, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// Get returns the record for a session.
func (s *RecordStore) Get(ctx context.Context, sessionID string) (*domain.InterviewRecord, error) {
	const query = `
	SELECT session_id, user, candidate_profile, target_role, turns, report, finished, created_at, updated_at
	FROM interview_records WHERE session_id = ?
	`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	return rec, err
}

// List returns records newest-first, optionally filtered by user.
func (s *RecordStore) List(ctx context.Context, user string) ([]domain.InterviewRecord, error) {
	query := `
	SELECT session_id, user, candidate_profile, target_role, turns, report, finished, created_at, updated_at
	FROM interview_records
	`
	args := []any{}
	if user != "" {
		query += " WHERE user = ?"
		args = append(args, user)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []domain.InterviewRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.InterviewRecord, error) {
	var rec domain.InterviewRecord
	var turns string
	err := row.Scan(&rec.SessionID, &rec.User, &rec.CandidateProfile, &rec.TargetRole,
		&turns, &rec.Report, &rec.Finished, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(turns), &rec.Turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal turns: %w", err)
	}
	return &rec, nil
}
