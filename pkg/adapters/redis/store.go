// Package redis provides Redis-backed implementations of the checkpoint
// store and the session locker, for deployments where sessions must survive
// process restarts or are shared between engine instances.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/candidhq/candid/pkg/domain"
)

// CheckpointStore implements ports.CheckpointStore on Redis. Each session's
// log is a Redis list of JSON checkpoints; a ZSET indexes session ids by
// expiry so listing can prune lazily.
type CheckpointStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a CheckpointStore.
type Option func(*CheckpointStore)

// WithTTL sets the expiration for session logs. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *CheckpointStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *CheckpointStore) {
		s.prefix = prefix
	}
}

// New creates a Redis checkpoint store with its own client.
func New(address, password string, db int, opts ...Option) *CheckpointStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis checkpoint store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *CheckpointStore {
	store := &CheckpointStore{
		client: client,
		prefix: "candid:session:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *CheckpointStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *CheckpointStore) indexKey() string {
	return s.prefix + "index"
}

// indexScore is the ZSET score for a session: its expiry time, or a far
// future date when logs do not expire.
func (s *CheckpointStore) indexScore() float64 {
	if s.ttl == 0 {
		return 4102444800 // 2100-01-01
	}
	return float64(time.Now().Add(s.ttl).Unix())
}

// Append pushes a checkpoint onto the session's log.
func (s *CheckpointStore) Append(ctx context.Context, sessionID string, state *domain.Session) (int, error) {
	length, err := s.client.LLen(ctx, s.key(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read log length: %w", err)
	}

	cp := domain.NewCheckpoint(sessionID, int(length)+1, state.Clone())
	data, err := json.Marshal(cp)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.key(sessionID), data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(sessionID), s.ttl)
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.indexScore(), Member: sessionID})
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to append to redis: %w", err)
	}
	return cp.Seq, nil
}

// Latest returns the newest checkpoint.
func (s *CheckpointStore) Latest(ctx context.Context, sessionID string) (*domain.Checkpoint, error) {
	val, err := s.client.LIndex(ctx, s.key(sessionID), -1).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read latest checkpoint: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal([]byte(val), &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// History returns the full log in ascending sequence order.
func (s *CheckpointStore) History(ctx context.Context, sessionID string) ([]domain.Checkpoint, error) {
	vals, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	if len(vals) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	out := make([]domain.Checkpoint, 0, len(vals))
	for _, val := range vals {
		var cp domain.Checkpoint
		if err := json.Unmarshal([]byte(val), &cp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
		}
		out = append(out, cp)
	}
	return out, nil
}

// TruncateFrom drops every checkpoint with Seq >= seq.
func (s *CheckpointStore) TruncateFrom(ctx context.Context, sessionID string, seq int) error {
	if seq <= 1 {
		return s.Delete(ctx, sessionID)
	}
	// Keep elements 0..seq-2; checkpoints are 1-based.
	if err := s.client.LTrim(ctx, s.key(sessionID), 0, int64(seq-2)).Err(); err != nil {
		return fmt.Errorf("failed to truncate log: %w", err)
	}
	return nil
}

// Sessions lists indexed session ids, pruning expired entries first.
func (s *CheckpointStore) Sessions(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes the session's log and index entry.
func (s *CheckpointStore) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the underlying client.
func (s *CheckpointStore) Close() error {
	return s.client.Close()
}
