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

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	p := ParsePagination(r)

	orders, total, err := h.orderService.ListByUser(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list orders")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": orders,
		"total": total,
	})
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req struct {
		ArticleID   string `json:"articleId"`
		PublisherID string `json:"publisherId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if !util.IsValidUUID(req.ArticleID) || !util.IsValidUUID(req.PublisherID) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "articleId and publisherId are required"})
		return
	}

	order, err := h.orderService.Checkout(r.Context(), user.ID, req.ArticleID, req.PublisherID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	order, err := h.orderService.GetOwned(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	order, err := h.orderService.Pay(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	order, err := h.orderService.Cancel(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
