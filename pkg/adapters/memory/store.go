// Package memory provides in-process store implementations. They back tests
// and single-node deployments that do not need durability across restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/candidhq/candid/pkg/domain"
)

// CheckpointStore implements ports.CheckpointStore in memory.
// Safe for concurrent use.
type CheckpointStore struct {
	mu   sync.RWMutex
	logs map[string][]domain.Checkpoint
}

// NewCheckpointStore creates an empty in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		logs: make(map[string][]domain.Checkpoint),
	}
}

// Append stores a snapshot copy and returns its sequence number.
func (s *CheckpointStore) Append(_ context.Context, sessionID string, state *domain.Session) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[sessionID]
	cp := domain.NewCheckpoint(sessionID, len(log)+1, state.Clone())
	s.logs[sessionID] = append(log, cp)
	return cp.Seq, nil
}

// Latest returns a copy of the newest checkpoint.
func (s *CheckpointStore) Latest(_ context.Context, sessionID string) (*domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.logs[sessionID]
	if !ok || len(log) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	cp := log[len(log)-1]
	cp.State = cp.State.Clone()
	return &cp, nil
}

// History returns copies of all checkpoints in ascending sequence order.
func (s *CheckpointStore) History(_ context.Context, sessionID string) ([]domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.logs[sessionID]
	if !ok || len(log) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	out := make([]domain.Checkpoint, len(log))
	for i, cp := range log {
		cp.State = cp.State.Clone()
		out[i] = cp
	}
	return out, nil
}

// TruncateFrom drops every checkpoint with Seq >= seq.
func (s *CheckpointStore) TruncateFrom(_ context.Context, sessionID string, seq int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if seq <= 1 {
		delete(s.logs, sessionID)
		return nil
	}
	if seq > len(log) {
		return nil
	}
	s.logs[sessionID] = log[:seq-1]
	return nil
}

// Sessions lists session ids with at least one checkpoint.
func (s *CheckpointStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.logs))
	for id := range s.logs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Prune removes sessions whose newest checkpoint is older than the cutoff
// and reports how many were removed. Abandoned interviews are reclaimed this
// way when no TTL-capable store backs the engine.
func (s *CheckpointStore) Prune(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, log := range s.logs {
		if log[len(log)-1].CreatedAt.Before(olderThan) {
			delete(s.logs, id)
			removed++
		}
	}
	return removed, nil
}

// Delete removes the whole log for a session.
func (s *CheckpointStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, sessionID)
	return nil
}
