package service

import (
	"fmt"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/llm"
	"ai-terminal/internal/model"
)

// ModelService answers questions about which models each provider offers.
type ModelService struct{}

func NewModelService() *ModelService {
	return &ModelService{}
}

// List returns the catalog for every provider.
func (s *ModelService) List() []llm.ProviderModels {
	return llm.Catalog()
}

// Models returns the options for one provider.
func (s *ModelService) Models(p model.Provider) ([]string, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", app_errors.ErrUnknownProvider, p)
	}
	return llm.Models(p), nil
}

// Default is the model selected when the user switches to p.
func (s *ModelService) Default(p model.Provider) string {
	return llm.DefaultModel(p)
}

// Check reports whether name is offered for p.
func (s *ModelService) Check(p model.Provider, name string) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", app_errors.ErrUnknownProvider, p)
	}
	if !llm.SupportsModel(p, name) {
		return fmt.Errorf("%w: model %q is not offered by %s", app_errors.ErrValidation, name, p)
	}
	return nil
}
