package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) Get(ctx context.Context, store, key string) ([]byte, error) {
	if err := checkStore(store); err != nil {
		return nil, err
	}
	query := "SELECT value FROM local_store WHERE store = ? AND key = ?"
	var value []byte
	err := r.db.QueryRowContext(ctx, query, store, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not read %s/%s: %w", store, key, err)
	}
	return value, nil
}

func (r *sqliteRepository) Put(ctx context.Context, store, key string, value []byte) error {
	if err := checkStore(store); err != nil {
		return err
	}
	query := `
		INSERT INTO local_store (store, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(store, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, store, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("could not write %s/%s: %w", store, key, err)
	}
	return nil
}

func (r *sqliteRepository) Delete(ctx context.Context, store, key string) error {
	if err := checkStore(store); err != nil {
		return err
	}
	query := "DELETE FROM local_store WHERE store = ? AND key = ?"
	if _, err := r.db.ExecContext(ctx, query, store, key); err != nil {
		return fmt.Errorf("could not delete %s/%s: %w", store, key, err)
	}
	return nil
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}
