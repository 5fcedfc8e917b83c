package llm

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"
)

func TestRelayClient_Stream(t *testing.T) {
	t.Run("Forwards chunks until done", func(t *testing.T) {
		var got model.ChatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, ChatPath, r.URL.Path)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeSSE(w,
				`data: {"content":"Hi"}`,
				`data: {"content":" there"}`,
				`data: {"done":true}`,
				`data: {"content":"ignored"}`,
			)
		}))
		defer server.Close()

		chunks, err := collect(t, NewRelayClient(server.URL+"/", nil), chatRequest(model.ProviderDeepSeek, testKey))
		require.NoError(t, err)
		assert.Equal(t, []model.StreamResponse{{Content: "Hi"}, {Content: " there"}, {Done: true}}, chunks)
		assert.Equal(t, model.ProviderDeepSeek, got.Provider)
		assert.Equal(t, testKey, got.APIKey)
	})

	t.Run("Error event ends the stream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeSSE(w,
				`data: {"content":"par"}`,
				"event: error\ndata: {\"error\":\"quota\",\"status\":429}",
			)
		}))
		defer server.Close()

		chunks, err := collect(t, NewRelayClient(server.URL, nil), chatRequest(model.ProviderOpenAI, testKey))
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, model.StreamResponse{Error: "quota", Status: 429}, chunks[1])
	})

	t.Run("Non-2xx reply carries the relay status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"API key is required"}`)
		}))
		defer server.Close()

		chunks, err := collect(t, NewRelayClient(server.URL, nil), chatRequest(model.ProviderOpenAI, ""))
		assert.Empty(t, chunks)

		var upstreamErr *app_errors.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, http.StatusUnauthorized, upstreamErr.Status)
		assert.Equal(t, "API key is required", upstreamErr.Message)
	})

	t.Run("Closed without done", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeSSE(w, `data: {"content":"half"}`)
		}))
		defer server.Close()

		chunks, err := collect(t, NewRelayClient(server.URL, nil), chatRequest(model.ProviderOpenAI, testKey))
		require.NoError(t, err)
		assert.Equal(t, []model.StreamResponse{{Content: "half"}}, chunks)
	})
}
