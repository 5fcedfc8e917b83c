package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ai-terminal/internal/database"
	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"
	"ai-terminal/internal/repository"
	mock_repo "ai-terminal/internal/repository/mocks"
	"ai-terminal/internal/service"
)

func newSQLiteStore(t *testing.T, dir string) *repository.LocalStore {
	t.Helper()
	db, err := database.InitDB(filepath.Join(dir, "webtui.db"))
	require.NoError(t, err)
	store := repository.NewLocalStore(repository.NewSQLiteRepository(db))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The quick brown fox jumps over", "The quick brown fox jumps..."},
		{"hi there", "hi there"},
		{"one two three four five", "one two three four five"},
		{"  spaced   out\twords  ", "spaced out words"},
		{"   ", model.DefaultSessionTitle},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, service.Title(tc.in))
			assert.Equal(t, service.Title(tc.in), service.Title(tc.in))
		})
	}
}

func TestSessionStore_Create(t *testing.T) {
	store := service.NewSessionStore(newSQLiteStore(t, t.TempDir()), 0)

	first := store.Create()
	second := store.Create()

	assert.Equal(t, model.DefaultSessionTitle, first.Title)
	assert.Empty(t, first.Messages)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, second.ID, store.ActiveID())

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "new sessions go to the head")
	assert.Equal(t, first.ID, list[1].ID)
}

func TestSessionStore_AppendUserMessage(t *testing.T) {
	t.Run("First message freezes the title", func(t *testing.T) {
		store := service.NewSessionStore(newSQLiteStore(t, t.TempDir()), 0)
		session := store.Create()

		msg, err := store.AppendUserMessage(session.ID, "The quick brown fox jumps over")
		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, msg.Role)
		assert.NotEmpty(t, msg.ID)

		_, err = store.AppendUserMessage(session.ID, "something else entirely")
		require.NoError(t, err)

		got, ok := store.Get(session.ID)
		require.True(t, ok)
		assert.Equal(t, "The quick brown fox jumps...", got.Title)
		assert.Len(t, got.Messages, 2)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
	})

	t.Run("Unknown session is an invariant violation", func(t *testing.T) {
		store := service.NewSessionStore(newSQLiteStore(t, t.TempDir()), 0)

		_, err := store.AppendUserMessage("missing", "hello")
		assert.ErrorIs(t, err, app_errors.ErrSessionNotFound)
		assert.Empty(t, store.List())
	})

	t.Run("Returned sessions are copies", func(t *testing.T) {
		store := service.NewSessionStore(newSQLiteStore(t, t.TempDir()), 0)
		session := store.Create()
		_, err := store.AppendUserMessage(session.ID, "hello")
		require.NoError(t, err)

		got, _ := store.Get(session.ID)
		got.Messages[0].Content = "tampered"

		again, _ := store.Get(session.ID)
		assert.Equal(t, "hello", again.Messages[0].Content)
	})
}

func TestSessionStore_CommitAssistantMessage(t *testing.T) {
	store := service.NewSessionStore(newSQLiteStore(t, t.TempDir()), 0)
	session := store.Create()

	err := store.CommitAssistantMessage(session.ID, model.Message{ID: "a1", Content: "answer", Streaming: true})
	require.NoError(t, err)

	got, _ := store.Get(session.ID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, model.Message{ID: "a1", Role: model.RoleAssistant, Content: "answer"}, got.Messages[0])
	assert.Equal(t, model.DefaultSessionTitle, got.Title)

	assert.ErrorIs(t, store.CommitAssistantMessage("missing", model.Message{}), app_errors.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	store := service.NewSessionStore(newSQLiteStore(t, t.TempDir()), 0)
	older := store.Create()
	active := store.Create()

	require.NoError(t, store.Delete(active.ID))
	assert.Empty(t, store.ActiveID())
	_, ok := store.Active()
	assert.False(t, ok)

	require.NoError(t, store.SetActive(older.ID))
	assert.ErrorIs(t, store.Delete(active.ID), app_errors.ErrSessionNotFound)
	assert.Equal(t, older.ID, store.ActiveID(), "deleting another session keeps the active one")

	require.NoError(t, store.Delete(older.ID))
	assert.Empty(t, store.List())
	assert.ErrorIs(t, store.SetActive(older.ID), app_errors.ErrSessionNotFound)
}

func TestSessionStore_DebouncedPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("Bursts collapse into one whole-collection write", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		var written []byte
		repo.On("Put", mock.Anything, repository.StoreSessions, "sessions", mock.Anything).
			Run(func(args mock.Arguments) { written = args.Get(3).([]byte) }).
			Return(nil).Once()

		store := service.NewSessionStore(repository.NewLocalStore(repo), time.Hour)
		a := store.Create()
		_, err := store.AppendUserMessage(a.ID, "hello")
		require.NoError(t, err)
		b := store.Create()

		require.NoError(t, store.Close(ctx))
		assert.Contains(t, string(written), a.ID)
		assert.Contains(t, string(written), b.ID)
		assert.Contains(t, string(written), `"hello"`)
	})

	t.Run("Timer fires after the quiet period", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		saved := make(chan struct{}, 1)
		repo.On("Put", mock.Anything, repository.StoreSessions, "sessions", mock.Anything).
			Run(func(args mock.Arguments) { saved <- struct{}{} }).
			Return(nil).Once()

		store := service.NewSessionStore(repository.NewLocalStore(repo), 10*time.Millisecond)
		store.Create()

		select {
		case <-saved:
		case <-time.After(2 * time.Second):
			t.Fatal("debounced write never happened")
		}
		require.NoError(t, store.Close(ctx))
	})

	t.Run("Failed write is retried on the next flush", func(t *testing.T) {
		repo := mock_repo.NewMockRepository(t)
		repo.On("Put", mock.Anything, repository.StoreSessions, "sessions", mock.Anything).
			Return(errors.New("disk full")).Once()
		repo.On("Put", mock.Anything, repository.StoreSessions, "sessions", mock.Anything).
			Return(nil).Once()

		store := service.NewSessionStore(repository.NewLocalStore(repo), time.Hour)
		store.Create()

		assert.Error(t, store.Flush(ctx))
		assert.NoError(t, store.Flush(ctx))
		assert.NoError(t, store.Flush(ctx), "nothing pending, no write")
	})

	t.Run("Mutations after close are not written", func(t *testing.T) {
		for _, delay := range []time.Duration{0, 10 * time.Millisecond} {
			repo := mock_repo.NewMockRepository(t)
			store := service.NewSessionStore(repository.NewLocalStore(repo), delay)
			require.NoError(t, store.Close(ctx))

			store.Create()
			time.Sleep(50 * time.Millisecond)
			repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	local := newSQLiteStore(t, dir)

	first := service.NewSessionStore(local, 0)
	a := first.Create()
	_, err := first.AppendUserMessage(a.ID, "The quick brown fox jumps over")
	require.NoError(t, err)
	require.NoError(t, first.CommitAssistantMessage(a.ID, model.Message{Content: "the lazy dog"}))
	first.Create()
	require.NoError(t, first.Close(ctx))

	second := service.NewSessionStore(local, 0)
	require.NoError(t, second.Load(ctx))

	assert.Equal(t, first.List(), second.List())
	assert.Empty(t, second.ActiveID())
}
