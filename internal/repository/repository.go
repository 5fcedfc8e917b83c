package repository

import (
	"context"
	"fmt"

	app_errors "ai-terminal/internal/errors"
)

// Named stores of the local store. Each holds whole values addressed by key.
const (
	StoreSessions = "chat-sessions"
	StoreSettings = "chat-settings"
	StoreTheme    = "webtui-theme"
)

// Repository is the local key-value persistence used by the terminal client.
// Every operation reads or replaces a whole value; there are no partial writes.
type Repository interface {
	Get(ctx context.Context, store, key string) ([]byte, error)
	Put(ctx context.Context, store, key string, value []byte) error
	Delete(ctx context.Context, store, key string) error
	Close() error
}

func checkStore(store string) error {
	switch store {
	case StoreSessions, StoreSettings, StoreTheme:
		return nil
	}
	return fmt.Errorf("%w: %q", app_errors.ErrUnknownStore, store)
}
