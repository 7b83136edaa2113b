package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/ports"
)

// releaseScript deletes the lock key only if the holder's value still
// matches, so an expired lock taken over by another holder is never freed by
// the original one.
const releaseScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

// Locker implements ports.SessionLocker on Redis with SET NX PX, for
// deployments running more than one engine instance against the same store.
type Locker struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithLockTTL sets how long a lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) LockerOption {
	return func(l *Locker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLockLogger sets the logger for deferred release failures.
func WithLockLogger(logger *slog.Logger) LockerOption {
	return func(l *Locker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLocker creates a Redis locker.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: prefix,
		ttl:    30 * time.Second,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Locker) key(sessionID string) string {
	return l.prefix + "lock:" + sessionID
}

// Lock polls until the lock is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, sessionID string) (ports.UnlockFunc, error) {
	unlock, err := l.TryLock(ctx, sessionID)
	if err == nil {
		return unlock, nil
	}
	if err != domain.ErrSessionBusy {
		return nil, err
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			unlock, err := l.TryLock(ctx, sessionID)
			if err == nil {
				return unlock, nil
			}
			if err != domain.ErrSessionBusy {
				return nil, err
			}
		}
	}
}

// TryLock makes a single acquisition attempt, failing fast with
// domain.ErrSessionBusy when the lock is held.
func (l *Locker) TryLock(ctx context.Context, sessionID string) (ports.UnlockFunc, error) {
	key := l.key(sessionID)
	val := fmt.Sprintf("%d", time.Now().UnixNano())

	ok, err := l.client.SetNX(ctx, key, val, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrSessionBusy
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.client.Eval(releaseCtx, releaseScript, []string{key}, val).Err(); err != nil {
			l.logger.Warn("failed to release lock, it will expire via TTL",
				"session_id", sessionID, "err", err)
		}
	}, nil
}
