package model

import (
	"log/slog"
	"time"
)

// Provider identifies one of the supported upstream LLM services.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderDeepSeek  Provider = "deepseek"
)

// Providers lists the supported providers in display order.
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderDeepSeek}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderDeepSeek:
		return true
	}
	return false
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultSessionTitle is used until the first user message freezes a title.
const DefaultSessionTitle = "New Session"

// Message stores a single message in a session.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
	// Streaming marks the in-flight assistant message. It is never persisted.
	Streaming bool `json:"-"`
}

// Session is a single conversation thread with its committed history.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers cannot mutate store-owned history.
func (s Session) Clone() Session {
	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)
	s.Messages = msgs
	return s
}

// Settings holds the user's provider selection and API keys.
// Keys stay on the client; they only leave it inside a relay request.
type Settings struct {
	Provider Provider            `json:"provider" validate:"required,provider"`
	Model    string              `json:"model" validate:"required"`
	APIKeys  map[Provider]string `json:"apiKeys"`
}

// DefaultSettings mirrors a first launch: OpenAI, gpt-4o and no keys.
func DefaultSettings() Settings {
	return Settings{
		Provider: ProviderOpenAI,
		Model:    "gpt-4o",
		APIKeys: map[Provider]string{
			ProviderOpenAI:    "",
			ProviderAnthropic: "",
			ProviderDeepSeek:  "",
		},
	}
}

// ActiveKey returns the key configured for the selected provider.
func (s Settings) ActiveKey() string {
	return s.APIKeys[s.Provider]
}

// LogValue keeps API keys out of logs.
func (s Settings) LogValue() slog.Value {
	configured := make([]string, 0, len(s.APIKeys))
	for _, p := range Providers {
		if s.APIKeys[p] != "" {
			configured = append(configured, string(p))
		}
	}
	return slog.GroupValue(
		slog.String("provider", string(s.Provider)),
		slog.String("model", s.Model),
		slog.Any("keys_configured", configured),
	)
}

// ChatMessage is the wire form of a message inside a relay request.
type ChatMessage struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// ChatRequest is the body accepted by the relay endpoint.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	Model    string        `json:"model" validate:"required"`
	Provider Provider      `json:"provider" validate:"required"`
	APIKey   string        `json:"apiKey"`
}

// LogValue keeps the API key out of logs.
func (r ChatRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", string(r.Provider)),
		slog.String("model", r.Model),
		slog.Int("messages", len(r.Messages)),
		slog.Bool("api_key_present", r.APIKey != ""),
	)
}

// StreamResponse is the structure for a single chunk in a streaming response.
type StreamResponse struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
	// Status carries the relay status code for error chunks.
	Status int `json:"status,omitempty"`
}

// Theme names the terminal colour scheme kept in local storage.
type Theme string

const DefaultTheme Theme = "dark"

// Themes lists every accepted theme name.
var Themes = []Theme{
	"light",
	"dark",
	"catppuccin-mocha",
	"catppuccin-macchiato",
	"catppuccin-frappe",
	"catppuccin-latte",
	"gruvbox-dark-hard",
	"gruvbox-dark-medium",
	"gruvbox-dark-soft",
	"gruvbox-light-hard",
	"gruvbox-light-medium",
	"gruvbox-light-soft",
	"nord",
}
