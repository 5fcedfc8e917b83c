package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"
)

func TestCatalog(t *testing.T) {
	entries := Catalog()
	require.Len(t, entries, len(model.Providers))
	for i, p := range model.Providers {
		assert.Equal(t, p, entries[i].Provider)
		assert.NotEmpty(t, entries[i].Models)
	}

	assert.Equal(t, "gpt-4o", DefaultModel(model.ProviderOpenAI))
	assert.Equal(t, "deepseek-chat", DefaultModel(model.ProviderDeepSeek))
	assert.True(t, SupportsModel(model.ProviderAnthropic, "claude-3-haiku-20240307"))
	assert.False(t, SupportsModel(model.ProviderDeepSeek, "gpt-4o"))
	assert.Empty(t, DefaultModel("mistral"))

	models := Models(model.ProviderOpenAI)
	models[0] = "mutated"
	assert.Equal(t, "gpt-4o", DefaultModel(model.ProviderOpenAI))
}

func TestEndpoints_Resolve(t *testing.T) {
	eps := DefaultEndpoints()

	ep, err := eps.Resolve(model.ProviderDeepSeek)
	require.NoError(t, err)
	assert.Equal(t, "https://api.deepseek.com/v1/chat/completions", ep.ChatURL())
	assert.Equal(t, AuthBearer, ep.Auth)

	ep, err = eps.Resolve(model.ProviderAnthropic)
	require.NoError(t, err)
	assert.Equal(t, AuthXAPIKey, ep.Auth)

	_, err = eps.Resolve("mistral")
	assert.ErrorIs(t, err, app_errors.ErrUnknownProvider)
}
