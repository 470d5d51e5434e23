// ABOUTME: Tests for session persistence shared by the SQLite and mock stores
// ABOUTME: Each behaviour runs against both implementations

package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestStore(t)) })
	t.Run("mock", func(t *testing.T) { fn(t, NewMockStore()) })
}

func TestSessions_CreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateSession(ctx, &Session{ID: "sess-1", ActiveSection: "dashboard"}))

		got, err := s.GetSession(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, "sess-1", got.ID)
		assert.Equal(t, "dashboard", got.ActiveSection)
		assert.False(t, got.Authenticated())
		assert.Nil(t, got.Pending)
		assert.False(t, got.CreatedAt.IsZero())
	})
}

func TestSessions_GetMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		_, err := s.GetSession(context.Background(), "nope")
		assert.True(t, errors.Is(err, ErrSessionNotFound))

		err = s.SetActiveSection(context.Background(), "nope", "users")
		assert.True(t, errors.Is(err, ErrSessionNotFound))
	})
}

func TestSessions_CredentialLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateSession(ctx, &Session{ID: "sess-1"}))

		require.NoError(t, s.SetCredential(ctx, "sess-1", "tok-abc", "admin"))
		require.NoError(t, s.SetActiveSection(ctx, "sess-1", "estimates"))
		require.NoError(t, s.SetPendingAction(ctx, "sess-1", &PendingRecord{ID: "p1", Kind: "user.approve", Payload: []byte(`{}`)}))

		got, err := s.GetSession(ctx, "sess-1")
		require.NoError(t, err)
		assert.True(t, got.Authenticated())
		assert.Equal(t, "tok-abc", got.Token)
		assert.Equal(t, "admin", got.Operator)

		require.NoError(t, s.ClearCredential(ctx, "sess-1"))

		got, err = s.GetSession(ctx, "sess-1")
		require.NoError(t, err)
		assert.False(t, got.Authenticated())
		assert.Empty(t, got.Operator)
		assert.Nil(t, got.Pending, "clearing the credential drops the pending action")
		assert.Equal(t, "estimates", got.ActiveSection, "section survives sign-out")
	})
}

func TestSessions_PendingActionReplaceAndTake(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateSession(ctx, &Session{ID: "sess-1"}))

		require.NoError(t, s.SetPendingAction(ctx, "sess-1", &PendingRecord{ID: "p1", Kind: "product.delete", Payload: []byte(`{"id":"a"}`)}))
		require.NoError(t, s.SetPendingAction(ctx, "sess-1", &PendingRecord{ID: "p2", Kind: "product.delete", Payload: []byte(`{"id":"b"}`)}))

		_, err := s.TakePendingAction(ctx, "sess-1", "p1")
		assert.True(t, errors.Is(err, ErrNoPendingAction), "replaced action cannot be taken")

		rec, err := s.TakePendingAction(ctx, "sess-1", "p2")
		require.NoError(t, err)
		assert.Equal(t, "product.delete", rec.Kind)
		assert.JSONEq(t, `{"id":"b"}`, string(rec.Payload))
		assert.False(t, rec.CreatedAt.IsZero())

		_, err = s.TakePendingAction(ctx, "sess-1", "p2")
		assert.True(t, errors.Is(err, ErrNoPendingAction), "an action can only be taken once")
	})
}

func TestSessions_ClearPendingAction(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateSession(ctx, &Session{ID: "sess-1"}))
		require.NoError(t, s.SetPendingAction(ctx, "sess-1", &PendingRecord{ID: "p1", Kind: "logout"}))
		require.NoError(t, s.ClearPendingAction(ctx, "sess-1"))

		got, err := s.GetSession(ctx, "sess-1")
		require.NoError(t, err)
		assert.Nil(t, got.Pending)
	})
}

func TestSessions_TakeIsExclusive(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateSession(ctx, &Session{ID: "sess-1"}))
		require.NoError(t, s.SetPendingAction(ctx, "sess-1", &PendingRecord{ID: "p1", Kind: "estimate.send"}))

		const workers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.TakePendingAction(ctx, "sess-1", "p1"); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})
}

func TestSessions_DeleteIdle(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		old := time.Now().Add(-48 * time.Hour)
		require.NoError(t, s.CreateSession(ctx, &Session{ID: "old", CreatedAt: old, UpdatedAt: old}))
		require.NoError(t, s.CreateSession(ctx, &Session{ID: "fresh"}))

		n, err := s.DeleteIdleSessions(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = s.GetSession(ctx, "old")
		assert.True(t, errors.Is(err, ErrSessionNotFound))
		_, err = s.GetSession(ctx, "fresh")
		assert.NoError(t, err)
	})
}

func TestSQLiteStore_ReopenKeepsSessions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "console.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.CreateSession(context.Background(), &Session{ID: "sess-1", ActiveSection: "blog"}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "blog", got.ActiveSection)
}
