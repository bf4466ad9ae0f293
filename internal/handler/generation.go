package handler

import (
	"encoding/json"
	"net/http"

	"github.com/articleai/articleai-server/internal/middleware"
	"github.com/articleai/articleai-server/internal/service"
)

type GenerationHandler struct {
	generationService *service.GenerationService
}

func NewGenerationHandler(generationService *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// Generate drafts an article for the signed-in user. Credits are charged
// before the upstream call and refunded if it fails.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req struct {
		Model string `json:"model"`
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	article, err := h.generationService.Generate(r.Context(), user.ID, req.Model, req.Topic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"article":      article,
		"creditsSpent": service.ModelCost(req.Model),
	})
}
