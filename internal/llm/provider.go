package llm

import (
	"fmt"
	"net/http"
	"strings"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"
)

// HTTPClient is the subset of *http.Client the relay needs.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ HTTPClient = (*http.Client)(nil)

// AuthScheme says how a provider expects the API key to be presented.
type AuthScheme int

const (
	// AuthBearer sends "Authorization: Bearer <key>".
	AuthBearer AuthScheme = iota
	// AuthXAPIKey sends "x-api-key: <key>".
	AuthXAPIKey
)

// Endpoint is everything that differs between providers. All of them speak
// the OpenAI chat-completions request and stream format.
type Endpoint struct {
	BaseURL string
	Auth    AuthScheme
	Headers map[string]string
}

// ChatURL is the chat-completions URL under the endpoint's base.
func (e Endpoint) ChatURL() string {
	return strings.TrimRight(e.BaseURL, "/") + "/chat/completions"
}

// Authorize attaches the credential and any provider-specific headers.
func (e Endpoint) Authorize(req *http.Request, apiKey string) {
	switch e.Auth {
	case AuthXAPIKey:
		req.Header.Set("x-api-key", apiKey)
	default:
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for k, v := range e.Headers {
		req.Header.Set(k, v)
	}
}

// Endpoints maps each provider to its wiring.
type Endpoints map[model.Provider]Endpoint

// NewEndpoints builds the three provider configurations.
func NewEndpoints(openaiURL, anthropicURL, deepseekURL, anthropicVersion string) Endpoints {
	return Endpoints{
		model.ProviderOpenAI: {BaseURL: openaiURL, Auth: AuthBearer},
		model.ProviderAnthropic: {
			BaseURL: anthropicURL,
			Auth:    AuthXAPIKey,
			Headers: map[string]string{"anthropic-version": anthropicVersion},
		},
		model.ProviderDeepSeek: {BaseURL: deepseekURL, Auth: AuthBearer},
	}
}

// DefaultEndpoints points at the public provider APIs.
func DefaultEndpoints() Endpoints {
	return NewEndpoints(
		"https://api.openai.com/v1",
		"https://api.anthropic.com/v1",
		"https://api.deepseek.com/v1",
		"2023-06-01",
	)
}

// Resolve returns the endpoint for p.
func (e Endpoints) Resolve(p model.Provider) (Endpoint, error) {
	ep, ok := e[p]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %q", app_errors.ErrUnknownProvider, p)
	}
	return ep, nil
}
