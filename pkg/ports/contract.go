package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candidhq/candid/pkg/domain"
)

// RunCheckpointStoreContract verifies that a CheckpointStore implementation
// adheres to the interface contract. Adapter packages call it from their own
// tests against a freshly constructed store.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	sessionID := "contract-checkpoint-" + time.Now().Format("20060102150405")

	newSession := func(id string) *domain.Session {
		return domain.NewSession(id, "resume text for "+id, 2)
	}

	t.Run("Append and Latest", func(t *testing.T) {
		s := newSession(sessionID)
		seq, err := store.Append(ctx, sessionID, s)
		require.NoError(t, err, "Append should not return error")
		assert.Equal(t, 1, seq, "first checkpoint has seq 1")

		s.Stage = domain.StageIntake
		seq, err = store.Append(ctx, sessionID, s)
		require.NoError(t, err)
		assert.Equal(t, 2, seq, "sequence is dense and increasing")

		latest, err := store.Latest(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 2, latest.Seq)
		assert.Equal(t, domain.StageIntake, latest.State.Stage)
		assert.Equal(t, sessionID, latest.SessionID)
	})

	t.Run("Latest Non-Existent", func(t *testing.T) {
		_, err := store.Latest(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Snapshot Isolation", func(t *testing.T) {
		id := sessionID + "-iso"
		defer func() { _ = store.Delete(ctx, id) }()

		s := newSession(id)
		_, err := store.Append(ctx, id, s)
		require.NoError(t, err)

		// Mutating the session after Append must not change the stored copy.
		s.Stage = domain.StageFinalize
		s.Round = 99

		latest, err := store.Latest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StageStart, latest.State.Stage)
		assert.Equal(t, 0, latest.State.Round)
	})

	t.Run("History", func(t *testing.T) {
		id := sessionID + "-hist"
		defer func() { _ = store.Delete(ctx, id) }()

		s := newSession(id)
		for _, stage := range []domain.Stage{domain.StageStart, domain.StageIntake, domain.StageAskQuestion} {
			s.Stage = stage
			_, err := store.Append(ctx, id, s)
			require.NoError(t, err)
		}

		history, err := store.History(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 3)
		for i, cp := range history {
			assert.Equal(t, i+1, cp.Seq, "history is ordered by seq ascending")
		}
		assert.Equal(t, domain.StageAskQuestion, history[2].State.Stage)
	})

	t.Run("TruncateFrom", func(t *testing.T) {
		id := sessionID + "-trunc"
		defer func() { _ = store.Delete(ctx, id) }()

		s := newSession(id)
		for i := 0; i < 4; i++ {
			_, err := store.Append(ctx, id, s)
			require.NoError(t, err)
		}

		err := store.TruncateFrom(ctx, id, 3)
		require.NoError(t, err)

		latest, err := store.Latest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, latest.Seq, "checkpoints at and above seq are gone")

		// Appends after a truncate continue the sequence without gaps.
		seq, err := store.Append(ctx, id, s)
		require.NoError(t, err)
		assert.Equal(t, 3, seq)
	})

	t.Run("Delete", func(t *testing.T) {
		id := sessionID + "-del"
		_, err := store.Append(ctx, id, newSession(id))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, id))

		_, err = store.Latest(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Latest after Delete should return ErrSessionNotFound")

		// Deleting an unknown session is not an error.
		assert.NoError(t, store.Delete(ctx, id))
	})

	t.Run("Sessions", func(t *testing.T) {
		id1 := sessionID + "-list-1"
		id2 := sessionID + "-list-2"
		_, _ = store.Append(ctx, id1, newSession(id1))
		_, _ = store.Append(ctx, id2, newSession(id2))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.Sessions(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunRecordStoreContract verifies a RecordStore implementation against the
// interface contract.
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	ctx := context.Background()
	prefix := "contract-record-" + time.Now().Format("20060102150405")

	newRecord := func(id, user string) *domain.InterviewRecord {
		s := domain.NewSession(id, "resume text", 2)
		return domain.RecordFromSession(s, user)
	}

	t.Run("Upsert and Get", func(t *testing.T) {
		id := prefix + "-1"
		rec := newRecord(id, "alice")
		require.NoError(t, store.Upsert(ctx, rec))

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.SessionID)
		assert.Equal(t, "alice", got.User)

		// Upsert replaces the previous version.
		rec.Report = "final report"
		rec.Finished = true
		require.NoError(t, store.Upsert(ctx, rec))

		got, err = store.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Finished)
		assert.Equal(t, "final report", got.Report)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+prefix)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List By User", func(t *testing.T) {
		a := newRecord(prefix+"-a", "alice")
		b := newRecord(prefix+"-b", "bob")
		require.NoError(t, store.Upsert(ctx, a))
		require.NoError(t, store.Upsert(ctx, b))

		records, err := store.List(ctx, "alice")
		require.NoError(t, err)
		require.NotEmpty(t, records)
		for _, r := range records {
			assert.Equal(t, "alice", r.User)
		}

		all, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 2)
	})
}
