package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// KnowledgeEntry is a persisted knowledge base document. Vectors are not
// stored; the index re-embeds content on load so a model change never serves
// stale vectors.
type KnowledgeEntry struct {
	ID      string
	Content string
}

// KnowledgeStore persists knowledge base entries so a seeded corpus survives
// restarts and can be loaded into the in-memory index at startup.
type KnowledgeStore struct {
	db *sql.DB
}

// NewKnowledgeStore opens (and if needed creates) the database at path.
func NewKnowledgeStore(path string) (*KnowledgeStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &KnowledgeStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *KnowledgeStore) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS knowledge_entries (
		id         TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Put stores an entry, replacing any previous content under the same id.
func (s *KnowledgeStore) Put(ctx context.Context, id, content string) error {
	if id == "" {
		return fmt.Errorf("entry id is required")
	}
	const query = `
	INSERT INTO knowledge_entries (id, content, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		content = excluded.content,
		updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, id, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

// All returns every entry ordered by id.
func (s *KnowledgeStore) All(ctx context.Context) ([]KnowledgeEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, content FROM knowledge_entries ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var out []KnowledgeEntry
	for rows.Next() {
		var e KnowledgeEntry
		if err := rows.Scan(&e.ID, &e.Content); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *KnowledgeStore) Close() error {
	return s.db.Close()
}
