package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 8000, cfg.AppPort)
		assert.Equal(t, "https://api.deepseek.com/v1", cfg.DeepSeekBaseURL)
		assert.Equal(t, "sqlite", cfg.StoreDriver)
		assert.Equal(t, 250*time.Millisecond, cfg.PersistDebounce)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("APP_PORT", "9001")
		t.Setenv("RELAY_URL", "http://relay.internal:9001")
		t.Setenv("PERSIST_DEBOUNCE", "1s")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 9001, cfg.AppPort)
		assert.Equal(t, "http://relay.internal:9001", cfg.RelayURL)
		assert.Equal(t, time.Second, cfg.PersistDebounce)
	})
}
