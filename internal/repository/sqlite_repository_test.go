package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/repository"
)

func setupSQLiteRepository(t *testing.T) (repository.Repository, sqlmock.Sqlmock) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewSQLiteRepository(db), mockDB
}

func TestSQLiteRepository_Get(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT value FROM local_store WHERE store = ? AND key = ?")

	t.Run("Success", func(t *testing.T) {
		repo, mockDB := setupSQLiteRepository(t)
		rows := sqlmock.NewRows([]string{"value"}).AddRow([]byte(`"dark"`))
		mockDB.ExpectQuery(query).WithArgs(repository.StoreTheme, "theme").WillReturnRows(rows)

		value, err := repo.Get(ctx, repository.StoreTheme, "theme")
		require.NoError(t, err)
		assert.Equal(t, []byte(`"dark"`), value)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Missing value maps to ErrNotFound", func(t *testing.T) {
		repo, mockDB := setupSQLiteRepository(t)
		mockDB.ExpectQuery(query).WithArgs(repository.StoreSettings, "settings").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, err := repo.Get(ctx, repository.StoreSettings, "settings")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Driver error is wrapped", func(t *testing.T) {
		repo, mockDB := setupSQLiteRepository(t)
		mockDB.ExpectQuery(query).WillReturnError(errors.New("disk I/O error"))

		_, err := repo.Get(ctx, repository.StoreSessions, "sessions")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk I/O error")
		assert.NotErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Unknown store is rejected before querying", func(t *testing.T) {
		repo, mockDB := setupSQLiteRepository(t)

		_, err := repo.Get(ctx, "cookies", "x")
		assert.ErrorIs(t, err, app_errors.ErrUnknownStore)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestSQLiteRepository_Put(t *testing.T) {
	ctx := context.Background()
	repo, mockDB := setupSQLiteRepository(t)

	mockDB.ExpectExec(regexp.QuoteMeta("INSERT INTO local_store (store, key, value, updated_at) VALUES (?, ?, ?, ?)")).
		WithArgs(repository.StoreSessions, "sessions", []byte("[]"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Put(ctx, repository.StoreSessions, "sessions", []byte("[]")))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestSQLiteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, mockDB := setupSQLiteRepository(t)

	mockDB.ExpectExec(regexp.QuoteMeta("DELETE FROM local_store WHERE store = ? AND key = ?")).
		WithArgs(repository.StoreTheme, "theme").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(ctx, repository.StoreTheme, "theme"))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
