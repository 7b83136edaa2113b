package ports

import "context"

// UnlockFunc releases a lock acquired from a SessionLocker. Calling it more
// than once is a no-op.
type UnlockFunc func()

// SessionLocker serializes work on a single session. Lock blocks until the
// session is free or ctx is done; TryLock fails fast with
// domain.ErrSessionBusy when another holder is active.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (UnlockFunc, error)
	TryLock(ctx context.Context, sessionID string) (UnlockFunc, error)
}
