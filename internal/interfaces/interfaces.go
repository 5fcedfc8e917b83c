package interfaces

import (
	"context"

	"ai-terminal/internal/llm"
	"ai-terminal/internal/model"
)

// This file defines the interfaces the HTTP layer depends on.
// Handlers take these instead of concrete types so they can be tested with mocks.

// RelayService opens an upstream completion stream for one chat request.
type RelayService interface {
	Open(ctx context.Context, req *model.ChatRequest) (*llm.Stream, error)
}

// ModelService exposes the per-provider model catalog.
type ModelService interface {
	List() []llm.ProviderModels
	Models(p model.Provider) ([]string, error)
}
