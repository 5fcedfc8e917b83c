package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the closed set of user-facing failure categories.
type Kind int

const (
	KindUnknown Kind = iota
	KindMissingAPIKey
	KindInvalidAPIKey
	KindQuotaExceeded
)

func (k Kind) String() string {
	switch k {
	case KindMissingAPIKey:
		return "MissingApiKey"
	case KindInvalidAPIKey:
		return "InvalidApiKey"
	case KindQuotaExceeded:
		return "QuotaExceeded"
	default:
		return "Unknown"
	}
}

const (
	MsgMissingAPIKey = "Please supply an API key for the active provider."
	MsgInvalidAPIKey = "Invalid API key."
	MsgQuotaExceeded = "Quota exceeded."
	MsgGeneric       = "An error occurred during your request."
)

// Keyword lists are matched case-insensitively against upstream messages.
var (
	quotaIndicators = []string{"quota", "insufficient balance", "insufficient_quota", "billing", "credit balance"}
	authIndicators  = []string{"api key", "api_key", "x-api-key", "authentication", "unauthorized", "permission denied"}
)

// ChatError is a classified failure, ready to be shown as a dismissible banner.
type ChatError struct {
	Kind    Kind
	Message string
}

func (e *ChatError) Error() string { return e.Message }

// UpstreamError carries a relay status code and the message from the error body.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// Classify maps a relay status code and error message onto a Kind.
// Status codes win over message text, which providers do not keep stable.
func Classify(status int, message string) *ChatError {
	switch status {
	case http.StatusUnauthorized:
		return &ChatError{Kind: KindMissingAPIKey, Message: MsgMissingAPIKey}
	case http.StatusBadRequest:
		return &ChatError{Kind: KindInvalidAPIKey, Message: MsgInvalidAPIKey}
	case http.StatusTooManyRequests:
		return &ChatError{Kind: KindQuotaExceeded, Message: MsgQuotaExceeded}
	}

	lower := strings.ToLower(message)
	if containsAny(lower, quotaIndicators) {
		return &ChatError{Kind: KindQuotaExceeded, Message: MsgQuotaExceeded}
	}
	if containsAny(lower, authIndicators) {
		return &ChatError{Kind: KindInvalidAPIKey, Message: MsgInvalidAPIKey}
	}

	message = strings.TrimSpace(message)
	if message == "" {
		message = MsgGeneric
	}
	return &ChatError{Kind: KindUnknown, Message: message}
}

// ClassifyError classifies any error that reached the reconciler boundary.
func ClassifyError(err error) *ChatError {
	if err == nil {
		return nil
	}
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return Classify(upstream.Status, upstream.Message)
	}
	if errors.Is(err, context.Canceled) {
		return &ChatError{Kind: KindUnknown, Message: "The request was cancelled."}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ChatError{Kind: KindUnknown, Message: "The request timed out."}
	}
	return Classify(0, err.Error())
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
