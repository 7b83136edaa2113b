package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candidhq/candid/pkg/adapters/redis"
	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/ports"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisCheckpointStore_Contract(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	ports.RunCheckpointStoreContract(t, store)
}

func TestRedisCheckpointStore_TTL_Expiration(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	_, err := store.Append(ctx, sessionID, domain.NewSession(sessionID, "resume", 2))
	require.NoError(t, err)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Fast forward past the TTL so the log key expires.
	mr.FastForward(2 * time.Second)

	_, err = store.Latest(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Lazy index pruning uses time.Now(), so wait out the TTL in real time.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisLocker(t *testing.T) {
	client := newTestClient(t)
	locker := redis.NewLocker(client, "candid:session:")
	ctx := context.Background()

	unlock, err := locker.TryLock(ctx, "s1")
	require.NoError(t, err)

	// Second holder fails fast while the first still holds.
	_, err = locker.TryLock(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionBusy)

	// A different session is unaffected.
	unlock2, err := locker.TryLock(ctx, "s2")
	require.NoError(t, err)
	unlock2()

	unlock()

	unlock3, err := locker.TryLock(ctx, "s1")
	require.NoError(t, err)
	unlock3()
}

func TestRedisLocker_LockWaits(t *testing.T) {
	client := newTestClient(t)
	locker := redis.NewLocker(client, "candid:session:")
	ctx := context.Background()

	unlock, err := locker.TryLock(ctx, "s1")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		u, err := locker.Lock(ctx, "s1")
		assert.NoError(t, err)
		u()
	}()

	time.Sleep(150 * time.Millisecond)
	unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Lock did not acquire after release")
	}
}
