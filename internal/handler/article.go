package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/articleai/articleai-server/internal/middleware"
	"github.com/articleai/articleai-server/internal/service"
	"github.com/articleai/articleai-server/internal/util"
)

type ArticleHandler struct {
	articleService *service.ArticleService
}

func NewArticleHandler(articleService *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	p := ParsePagination(r)

	articles, total, err := h.articleService.ListByUser(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list articles")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": articles,
		"total": total,
	})
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	article, err := h.articleService.Create(r.Context(), user.ID, req.Title, req.Body, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, article)
}

func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	article, err := h.articleService.GetOwned(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	var req struct {
		Title *string `json:"title"`
		Body  *string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	article, err := h.articleService.Update(r.Context(), user.ID, id, req.Title, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	if err := h.articleService.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
