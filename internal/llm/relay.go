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

const maxErrorBody = 64 * 1024

// Relay forwards chat requests to the selected provider and exposes the
// provider's stream of deltas. It holds no per-request state, so one Relay
// serves any number of concurrent requests.
type Relay struct {
	endpoints Endpoints
	client    HTTPClient
}

func NewRelay(endpoints Endpoints, client HTTPClient) *Relay {
	if endpoints == nil {
		endpoints = DefaultEndpoints()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Relay{endpoints: endpoints, client: client}
}

type upstreamMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type upstreamRequest struct {
	Model    string            `json:"model"`
	Messages []upstreamMessage `json:"messages"`
	Stream   bool              `json:"stream"`
}

type upstreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *upstreamErrorBody `json:"error,omitempty"`
}

type upstreamErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Open validates the request, resolves the provider and starts the upstream
// completion. Failures are *app_errors.UpstreamError carrying the status the
// relay reports to its caller. A missing key never reaches the network and
// nothing is retried.
func (r *Relay) Open(ctx context.Context, req *model.ChatRequest) (*Stream, error) {
	if err := RequireKey(req); err != nil {
		return nil, err
	}

	endpoint, err := r.endpoints.Resolve(req.Provider)
	if err != nil {
		return nil, &app_errors.UpstreamError{Status: http.StatusBadRequest, Message: "Invalid provider"}
	}

	body := upstreamRequest{Model: req.Model, Stream: true}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, upstreamMessage{Role: m.Role, Content: m.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.ChatURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	endpoint.Authorize(httpReq, req.APIKey)

	slog.DebugContext(ctx, "Opening upstream stream", "provider", req.Provider, "model", req.Model, "messages", len(req.Messages))

	resp, err := r.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &app_errors.UpstreamError{Status: http.StatusInternalServerError, Message: redact(err.Error(), req.APIKey)}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := redact(upstreamErrorMessage(resp.StatusCode, raw), req.APIKey)
		slog.WarnContext(ctx, "Upstream rejected request", "provider", req.Provider, "status", resp.StatusCode)
		return nil, &app_errors.UpstreamError{Status: RelayStatus(resp.StatusCode), Message: msg}
	}

	return NewStream(resp.Body), nil
}

// Stream runs one request to completion, forwarding deltas on ch.
func (r *Relay) Stream(ctx context.Context, req *model.ChatRequest, ch chan<- model.StreamResponse) error {
	defer close(ch)

	s, err := r.Open(ctx, req)
	if err != nil {
		return err
	}
	defer s.Close()

	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case ch <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RequireKey rejects a request that carries no API key with a 401.
func RequireKey(req *model.ChatRequest) error {
	if strings.TrimSpace(req.APIKey) == "" {
		return &app_errors.UpstreamError{Status: http.StatusUnauthorized, Message: "API key is required"}
	}
	return nil
}

// RelayStatus maps an upstream HTTP status onto the status the relay reports.
// 401 is reserved for a key the client never sent, so a rejected key becomes 400.
func RelayStatus(upstream int) int {
	switch {
	case upstream == http.StatusUnauthorized, upstream == http.StatusForbidden:
		return http.StatusBadRequest
	case upstream == http.StatusPaymentRequired, upstream == http.StatusTooManyRequests:
		return http.StatusTooManyRequests
	case upstream >= 400 && upstream < 500:
		return upstream
	default:
		return http.StatusInternalServerError
	}
}

func upstreamErrorMessage(status int, raw []byte) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		var body upstreamErrorBody
		if len(envelope.Error) > 0 && json.Unmarshal(envelope.Error, &body) == nil && body.Message != "" {
			return body.Message
		}
		var plain string
		if len(envelope.Error) > 0 && json.Unmarshal(envelope.Error, &plain) == nil && plain != "" {
			return plain
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(status)
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[redacted]")
}

// Stream is an open upstream response body decoded into chunks.
type Stream struct {
	body   io.ReadCloser
	events *SSEReader
	done   bool
}

// NewStream wraps an OpenAI-style SSE body.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{body: body, events: NewSSEReader(body)}
}

// Recv returns the next chunk. The final chunk has Done set; after it Recv
// returns io.EOF. A body that ends before that yields io.ErrUnexpectedEOF.
func (s *Stream) Recv() (model.StreamResponse, error) {
	if s.done {
		return model.StreamResponse{}, io.EOF
	}
	for {
		_, data, err := s.events.ReadEvent()
		if errors.Is(err, io.EOF) {
			return model.StreamResponse{}, io.ErrUnexpectedEOF
		}
		if err != nil {
			return model.StreamResponse{}, fmt.Errorf("failed to read upstream stream: %w", err)
		}

		if strings.TrimSpace(string(data)) == doneSentinel {
			s.done = true
			return model.StreamResponse{Done: true}, nil
		}

		var chunk upstreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			slog.Warn("Skipping malformed upstream chunk", "error", err)
			continue
		}
		if chunk.Error != nil {
			return model.StreamResponse{}, &app_errors.UpstreamError{
				Status:  http.StatusInternalServerError,
				Message: chunk.Error.Message,
			}
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		out := model.StreamResponse{Content: choice.Delta.Content}
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			s.done = true
			out.Done = true
		}
		if out.Content == "" && !out.Done {
			continue
		}
		return out, nil
	}
}

func (s *Stream) Close() error {
	return s.body.Close()
}
