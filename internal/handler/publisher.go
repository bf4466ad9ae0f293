package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/articleai/articleai-server/internal/service"
	"github.com/articleai/articleai-server/internal/util"
)

// PublisherHandler lists active publishers to signed-in users. Admin CRUD
// lives on the admin router.
type PublisherHandler struct {
	publisherService *service.PublisherService
}

func NewPublisherHandler(publisherService *service.PublisherService) *PublisherHandler {
	return &PublisherHandler{publisherService: publisherService}
}

func (h *PublisherHandler) List(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	category := r.URL.Query().Get("category")

	publishers, total, err := h.publisherService.ListActive(r.Context(), category, p.Limit, p.Offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list publishers")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": publishers,
		"total": total,
	})
}

func (h *PublisherHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	publisher, err := h.publisherService.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, publisher)
}
