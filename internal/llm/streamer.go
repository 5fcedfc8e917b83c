package llm

import (
	"context"

	"ai-terminal/internal/model"
)

// ChatStreamer produces one assistant turn as a sequence of chunks on ch.
// Implementations close ch before returning. A turn that completed normally
// ends with a chunk whose Done is set; anything else is a failed turn.
type ChatStreamer interface {
	Stream(ctx context.Context, req *model.ChatRequest, ch chan<- model.StreamResponse) error
}

var (
	_ ChatStreamer = (*Relay)(nil)
	_ ChatStreamer = (*RelayClient)(nil)
)
