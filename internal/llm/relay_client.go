package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"
)

// ChatPath is where the relay accepts chat requests.
const ChatPath = "/api/chat"

// RelayClient talks to a running relay over HTTP. It is what the terminal
// uses when the relay is a separate process.
type RelayClient struct {
	url    string
	client HTTPClient
}

func NewRelayClient(baseURL string, client HTTPClient) *RelayClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &RelayClient{
		url:    strings.TrimRight(baseURL, "/") + ChatPath,
		client: client,
	}
}

// Stream posts req to the relay and forwards every chunk it sends. A non-2xx
// reply becomes an *app_errors.UpstreamError carrying the relay's status.
func (c *RelayClient) Stream(ctx context.Context, req *model.ChatRequest, ch chan<- model.StreamResponse) error {
	defer close(ch)

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create relay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &app_errors.UpstreamError{
			Status:  resp.StatusCode,
			Message: upstreamErrorMessage(resp.StatusCode, raw),
		}
	}

	events := NewSSEReader(resp.Body)
	for {
		eventType, data, err := events.ReadEvent()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read relay stream: %w", err)
		}

		var chunk model.StreamResponse
		if err := json.Unmarshal(data, &chunk); err != nil {
			slog.WarnContext(ctx, "Skipping malformed relay event", "error", err)
			continue
		}
		if eventType == "error" && chunk.Error == "" {
			chunk.Error = app_errors.MsgGeneric
		}

		select {
		case ch <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}

		if chunk.Done || chunk.Error != "" {
			return nil
		}
	}
}
