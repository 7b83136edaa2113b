package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/candidhq/candid/pkg/domain"
)

// RecordStore implements ports.RecordStore in memory.
// Safe for concurrent use.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]*domain.InterviewRecord
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]*domain.InterviewRecord)}
}

// Upsert stores a copy of the record.
func (s *RecordStore) Upsert(_ context.Context, record *domain.InterviewRecord) error {
	cp := *record
	cp.Turns = make([]domain.Turn, len(record.Turns))
	copy(cp.Turns, record.Turns)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SessionID] = &cp
	return nil
}

// Get returns a copy of the record for a session.
func (s *RecordStore) Get(_ context.Context, sessionID string) (*domain.InterviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *rec
	cp.Turns = make([]domain.Turn, len(rec.Turns))
	copy(cp.Turns, rec.Turns)
	return &cp, nil
}

// List returns records newest-first, optionally filtered by user.
func (s *RecordStore) List(_ context.Context, user string) ([]domain.InterviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InterviewRecord, 0, len(s.records))
	for _, rec := range s.records {
		if user != "" && rec.User != user {
			continue
		}
		cp := *rec
		cp.Turns = make([]domain.Turn, len(rec.Turns))
		copy(cp.Turns, rec.Turns)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
