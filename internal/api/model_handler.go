package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ai-terminal/internal/interfaces"
	"ai-terminal/internal/model"
)

// ModelHandler serves the provider model catalog.
type ModelHandler struct {
	service interfaces.ModelService
}

func NewModelHandler(svc interfaces.ModelService) *ModelHandler {
	return &ModelHandler{service: svc}
}

// ProviderModelsResponse lists the models of one provider.
type ProviderModelsResponse struct {
	Provider model.Provider `json:"provider"`
	Models   []string       `json:"models"`
}

// HandleListProviders godoc
// @Summary      List providers
// @Description  Returns every supported provider with the models offered for it. The first model is the provider default.
// @Tags         Models
// @Produce      json
// @Success      200  {array}   llm.ProviderModels
// @Router       /v1/providers [get]
func (h *ModelHandler) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.List())
}

// HandleListModels godoc
// @Summary      List models of a provider
// @Tags         Models
// @Produce      json
// @Param        provider  path      string  true  "openai, anthropic or deepseek"
// @Success      200       {object}  ProviderModelsResponse
// @Failure      400       {object}  ErrorResponse
// @Router       /v1/providers/{provider}/models [get]
func (h *ModelHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	provider := model.Provider(chi.URLParam(r, "provider"))
	models, err := h.service.Models(provider)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ProviderModelsResponse{Provider: provider, Models: models})
}
