package engine

import (
	"context"
	"sync"

	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/ports"
)

// lockEntry holds one session's mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedLocker serializes work per session id inside one process. Entries are
// reference counted and garbage collected when the last holder releases.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewKeyedLocker creates an empty locker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*lockEntry)}
}

func (l *KeyedLocker) acquire(sessionID string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &lockEntry{}
		l.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (l *KeyedLocker) release(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[sessionID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, sessionID)
	}
}

// Lock blocks until the session is free, then returns its release function.
func (l *KeyedLocker) Lock(ctx context.Context, sessionID string) (ports.UnlockFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry := l.acquire(sessionID)
	entry.mu.Lock()
	return l.unlockOnce(sessionID, entry), nil
}

// TryLock fails fast with domain.ErrSessionBusy when the session is held.
func (l *KeyedLocker) TryLock(ctx context.Context, sessionID string) (ports.UnlockFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry := l.acquire(sessionID)
	if !entry.mu.TryLock() {
		l.release(sessionID)
		return nil, domain.ErrSessionBusy
	}
	return l.unlockOnce(sessionID, entry), nil
}

func (l *KeyedLocker) unlockOnce(sessionID string, entry *lockEntry) ports.UnlockFunc {
	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.release(sessionID)
		})
	}
}
