package app

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-terminal/internal/config"
	"ai-terminal/internal/model"
)

func TestNewApp(t *testing.T) {
	cfg := &config.Config{
		AppPort:          8123,
		LogLevel:         "DEBUG",
		OpenAIBaseURL:    "https://api.openai.com/v1",
		AnthropicBaseURL: "https://api.anthropic.com/v1",
		DeepSeekBaseURL:  "https://api.deepseek.com/v1",
		AnthropicVersion: "2023-06-01",
		StaticDir:        filepath.Join(t.TempDir(), "missing"),
	}

	app, err := NewApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.NotNil(t, app.Relay)
	assert.Equal(t, ":8123", app.Server.Addr)
	assert.Zero(t, app.Server.WriteTimeout)

	rr := httptest.NewRecorder()
	app.Server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	_, err = NewApp(&config.Config{AppPort: 0})
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	t.Run("SQLite store with in-process relay", func(t *testing.T) {
		cfg := &config.Config{
			StoreDriver:     "sqlite",
			StorePath:       filepath.Join(t.TempDir(), "nested", "webtui.db"),
			PersistDebounce: time.Millisecond,
		}

		client, err := NewClient(ctx, cfg)
		require.NoError(t, err)

		session := client.Terminal.NewSession()
		require.NoError(t, client.Close(ctx))

		reopened, err := NewClient(ctx, cfg)
		require.NoError(t, err)
		defer func() { _ = reopened.Close(ctx) }()

		sessions := reopened.Terminal.Sessions()
		require.Len(t, sessions, 1)
		assert.Equal(t, session.ID, sessions[0].ID)
		assert.Equal(t, model.DefaultSettings(), reopened.Terminal.Settings())
		assert.NoError(t, reopened.CheckRelay(ctx))
	})

	t.Run("Unknown driver", func(t *testing.T) {
		_, err := NewClient(ctx, &config.Config{StoreDriver: "indexeddb"})
		assert.ErrorContains(t, err, "unknown STORE_DRIVER")
	})
}

func TestWaitForRelay(t *testing.T) {
	ctx := context.Background()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
	}))
	defer healthy.Close()
	assert.NoError(t, waitForRelay(ctx, healthy.URL+"/", 1, time.Millisecond))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()
	assert.ErrorContains(t, waitForRelay(ctx, broken.URL, 2, time.Millisecond), "503")
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	setupLogger("warn", &buf)

	slog.Info("hidden")
	slog.Warn("shown", "settings", model.Settings{
		Provider: model.ProviderOpenAI,
		Model:    "gpt-4o",
		APIKeys:  map[model.Provider]string{model.ProviderOpenAI: "sk-secret"},
	})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"keys_configured":["openai"]`)
	assert.NotContains(t, out, "sk-secret")
}
