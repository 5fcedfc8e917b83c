package llm

import (
	"slices"

	"ai-terminal/internal/model"
)

// catalog lists the models offered for each provider, first entry is the default.
var catalog = map[model.Provider][]string{
	model.ProviderOpenAI: {
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-3.5-turbo",
		"gpt-4.1",
		"gpt-4.1-mini",
		"gpt-4.1-nano",
	},
	model.ProviderAnthropic: {
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
		"claude-3-5-sonnet-20240620",
		"claude-3-5-sonnet-20241022",
		"claude-3-7-sonnet-20250219",
		"claude-4-sonnet-20250514",
		"claude-4-opus-20250514",
	},
	model.ProviderDeepSeek: {
		"deepseek-chat",
		"deepseek-coder",
		"deepseek-reasoner",
	},
}

// ProviderModels is one catalog entry as served by the relay.
type ProviderModels struct {
	Provider model.Provider `json:"provider"`
	Models   []string       `json:"models"`
}

// Catalog returns the model options for every provider, in display order.
func Catalog() []ProviderModels {
	out := make([]ProviderModels, 0, len(model.Providers))
	for _, p := range model.Providers {
		out = append(out, ProviderModels{Provider: p, Models: slices.Clone(catalog[p])})
	}
	return out
}

// Models returns the model options for p.
func Models(p model.Provider) []string {
	return slices.Clone(catalog[p])
}

// DefaultModel is the model selected when switching to p.
func DefaultModel(p model.Provider) string {
	if models := catalog[p]; len(models) > 0 {
		return models[0]
	}
	return ""
}

// SupportsModel reports whether name is offered for p.
func SupportsModel(p model.Provider, name string) bool {
	return slices.Contains(catalog[p], name)
}
