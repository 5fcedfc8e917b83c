package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-terminal/internal/config"
	"ai-terminal/internal/database"
	"ai-terminal/internal/llm"
	"ai-terminal/internal/repository"
	"ai-terminal/internal/service"
)

// Client is the terminal core with the local store it owns.
type Client struct {
	Terminal *service.Terminal
	Store    *repository.LocalStore

	relayURL string
}

// NewClient opens the local store, loads sessions and settings and wires the
// terminal to either a remote relay (RELAY_URL) or an in-process one when
// RELAY_URL is empty. It does not contact the relay.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := repository.NewLocalStore(repo)

	sessions := service.NewSessionStore(store, cfg.PersistDebounce)
	settings := service.NewSettingsService(store, service.NewModelService())
	terminal := service.NewTerminal(sessions, settings, newStreamer(cfg))

	if err := terminal.Open(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return &Client{Terminal: terminal, Store: store, relayURL: cfg.RelayURL}, nil
}

// CheckRelay reports whether the remote relay answers its health check.
// It is a no-op for the in-process relay.
func (c *Client) CheckRelay(ctx context.Context) error {
	if c.relayURL == "" {
		return nil
	}
	return waitForRelay(ctx, c.relayURL, 3, time.Second)
}

// Close writes pending sessions and releases the store.
func (c *Client) Close(ctx context.Context) error {
	termErr := c.Terminal.Close(ctx)
	storeErr := c.Store.Close()
	if termErr != nil {
		return termErr
	}
	return storeErr
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	switch strings.ToLower(cfg.StoreDriver) {
	case "", "sqlite":
		db, err := database.InitDB(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		slog.Debug("Using SQLite local store", "path", cfg.StorePath)
		return repository.NewSQLiteRepository(db), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		slog.Debug("Using Redis local store", "addr", cfg.RedisAddr)
		return repository.NewRedisRepository(rdb), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func newStreamer(cfg *config.Config) llm.ChatStreamer {
	if cfg.RelayURL == "" {
		endpoints := llm.NewEndpoints(cfg.OpenAIBaseURL, cfg.AnthropicBaseURL, cfg.DeepSeekBaseURL, cfg.AnthropicVersion)
		slog.Debug("Using in-process relay")
		return llm.NewRelay(endpoints, &http.Client{})
	}
	slog.Debug("Using remote relay", "url", cfg.RelayURL)
	return llm.NewRelayClient(cfg.RelayURL, &http.Client{})
}

// waitForRelay polls the relay's health endpoint a bounded number of times.
func waitForRelay(ctx context.Context, relayURL string, attempts int, interval time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	url := strings.TrimRight(relayURL, "/") + "/healthz"

	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in relay health check", "error", bErr)
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			err = fmt.Errorf("health check returned %s", resp.Status)
		}
		lastErr = err
		slog.Debug("Relay not ready yet", "url", url, "error", err)

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	return lastErr
}
