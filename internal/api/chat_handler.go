package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/interfaces"
	"ai-terminal/internal/llm"
	"ai-terminal/internal/model"
	"ai-terminal/internal/validate"
)

// ChatHandler serves the relay endpoint.
type ChatHandler struct {
	relay interfaces.RelayService
}

func NewChatHandler(relay interfaces.RelayService) *ChatHandler {
	return &ChatHandler{relay: relay}
}

// HandleChat godoc
// @Summary      Relay a chat completion
// @Description  Forwards the conversation to the selected provider and streams the reply as Server-Sent Events. Each event carries {"content":...}; the last carries {"done":true}. Failures after the stream started arrive as an `error` event.
// @Tags         Chat
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      model.ChatRequest     true  "Conversation, provider, model and API key"
// @Success      200      {object}  model.StreamResponse  "Stream of chunks"
// @Failure      400      {object}  ErrorResponse         "Invalid key, provider or payload"
// @Failure      401      {object}  ErrorResponse         "API key is required"
// @Failure      429      {object}  ErrorResponse         "Quota exceeded"
// @Failure      500      {object}  ErrorResponse
// @Router       /chat [post]
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}

	if err := llm.RequireKey(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, err)
		return
	}

	ctx := r.Context()
	slog.InfoContext(ctx, "Relaying chat request", "request", req)

	stream, err := h.relay.Open(ctx, &req)
	if err != nil {
		if ctx.Err() != nil {
			slog.InfoContext(ctx, "Client disconnected before upstream answered")
			return
		}
		respondWithError(w, err)
		return
	}
	defer stream.Close()

	startStream(w)

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			slog.DebugContext(ctx, "Finished relaying stream", "provider", req.Provider)
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				slog.InfoContext(ctx, "Client disconnected during stream", "provider", req.Provider)
				return
			}
			var upstream *app_errors.UpstreamError
			if errors.As(err, &upstream) {
				sendStreamError(w, upstream.Status, upstream.Message)
			} else {
				sendStreamError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		if err := writeStreamEvent(w, chunk); err != nil {
			slog.WarnContext(ctx, "Could not write to chat stream, client likely disconnected", "error", err)
			return
		}
	}
}
