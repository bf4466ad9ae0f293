package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/articleai/articleai-server/internal/audit"
	"github.com/articleai/articleai-server/internal/middleware"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/service"
	"github.com/articleai/articleai-server/internal/util"
)

type AdminHandler struct {
	adminService      *service.AdminService
	orderService      *service.OrderService
	publisherService  *service.PublisherService
	articleService    *service.ArticleService
	sessionMiddleware func(http.Handler) http.Handler
	loginRateLimiter  *middleware.LoginRateLimiter
	cookieMaxAge      int
	isProduction      bool
}

func NewAdminHandler(
	adminService *service.AdminService,
	orderService *service.OrderService,
	publisherService *service.PublisherService,
	articleService *service.ArticleService,
	sessionMiddleware func(http.Handler) http.Handler,
	cookieMaxAge int,
	isProduction bool,
) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		orderService:      orderService,
		publisherService:  publisherService,
		articleService:    articleService,
		sessionMiddleware: sessionMiddleware,
		loginRateLimiter:  middleware.NewLoginRateLimiter(),
		cookieMaxAge:      cookieMaxAge,
		isProduction:      isProduction,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.loginRateLimiter.Handler).Post("/api/login", h.Login)
	r.Post("/api/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.Get("/api/me", h.Me)
		r.Get("/api/stats", h.Stats)
		r.Post("/api/password", h.ChangePassword)

		// Users
		r.Get("/api/users", h.ListUsers)
		r.Get("/api/users/{id}", h.GetUser)
		r.Patch("/api/users/{id}", h.UpdateUser)
		r.Delete("/api/users/{id}", h.DeleteUser)

		// Publishers
		r.Get("/api/publishers", h.ListPublishers)
		r.Post("/api/publishers", h.CreatePublisher)
		r.Get("/api/publishers/{id}", h.GetPublisher)
		r.Patch("/api/publishers/{id}", h.UpdatePublisher)
		r.Delete("/api/publishers/{id}", h.DeletePublisher)

		// Articles
		r.Get("/api/articles", h.ListArticles)

		// Orders
		r.Get("/api/orders", h.ListOrders)
		r.Post("/api/orders/{id}/publish", h.PublishOrder)
		r.Post("/api/orders/{id}/cancel", h.CancelOrder)
	})

	return r
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminID  string `json:"adminId"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	admin, token, err := h.adminService.Login(r.Context(), req.AdminID, req.Password)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventAdminLoginFailure,
			AdminID: req.AdminID,
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventAdminLoginSuccess,
		AdminID: admin.AdminID,
	})

	middleware.SetSessionCookie(w, middleware.AdminSessionCookie, token, "/admin", h.cookieMaxAge, h.isProduction)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"admin": formatAdmin(admin),
	})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r, middleware.AdminSessionCookie)
	if err := h.adminService.Logout(r.Context(), token); err != nil {
		log.Warn().Err(err).Msg("admin logout error")
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventAdminLogout})

	middleware.ClearSessionCookie(w, middleware.AdminSessionCookie, "/admin")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r.Context())
	writeJSON(w, http.StatusOK, formatAdmin(admin))
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.GetStats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to get stats")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := h.adminService.ChangePassword(r.Context(), admin, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	// Every session was revoked, including this one.
	middleware.ClearSessionCookie(w, middleware.AdminSessionCookie, "/admin")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Users

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	users, total, err := h.adminService.GetUsers(r.Context(), p.Limit, p.Offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": users,
		"total": total,
	})
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	user, err := h.adminService.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "isActive is required"})
		return
	}

	user, err := h.adminService.SetUserActive(r.Context(), id, *req.IsActive)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), id); err != nil {
		log.Error().Err(err).Msg("failed to delete user")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Publishers

func (h *AdminHandler) ListPublishers(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	publishers, total, err := h.publisherService.ListAll(r.Context(), p.Limit, p.Offset)
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

func (h *AdminHandler) CreatePublisher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		Website      string `json:"website"`
		Category     string `json:"category"`
		AudienceSize int    `json:"audienceSize"`
		PriceCents   int    `json:"priceCents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	publisher, err := h.publisherService.Create(r.Context(), model.CreatePublisherParams{
		Name:         req.Name,
		Website:      req.Website,
		Category:     req.Category,
		AudienceSize: req.AudienceSize,
		PriceCents:   req.PriceCents,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventPublisherCreate,
		Details: map[string]interface{}{"publisher_id": publisher.ID},
	})

	writeJSON(w, http.StatusCreated, publisher)
}

func (h *AdminHandler) GetPublisher(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminHandler) UpdatePublisher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	var req struct {
		Name         *string `json:"name"`
		Website      *string `json:"website"`
		Category     *string `json:"category"`
		AudienceSize *int    `json:"audienceSize"`
		PriceCents   *int    `json:"priceCents"`
		IsActive     *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	publisher, err := h.publisherService.Update(r.Context(), id, model.UpdatePublisherParams{
		Name:         req.Name,
		Website:      req.Website,
		Category:     req.Category,
		AudienceSize: req.AudienceSize,
		PriceCents:   req.PriceCents,
		IsActive:     req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, publisher)
}

func (h *AdminHandler) DeletePublisher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	if err := h.publisherService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventPublisherDelete,
		Details: map[string]interface{}{"publisher_id": id},
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Articles

var validArticleStatuses = []string{"draft", "submitted", "published", "rejected"}

func (h *AdminHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	status := r.URL.Query().Get("status")

	if !util.IsValidEnum(status, validArticleStatuses) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid status value"})
		return
	}

	articles, total, err := h.articleService.ListAll(r.Context(), status, p.Limit, p.Offset)
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

// Orders

var validOrderStatuses = []string{"pending", "paid", "published", "cancelled"}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)
	status := r.URL.Query().Get("status")

	if !util.IsValidEnum(status, validOrderStatuses) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid status value"})
		return
	}

	orders, total, err := h.orderService.ListAll(r.Context(), status, p.Limit, p.Offset)
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

func (h *AdminHandler) PublishOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	order, err := h.orderService.Publish(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventOrderPublish,
		Details: map[string]interface{}{"order_id": order.ID},
	})

	writeJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id format"})
		return
	}

	order, err := h.orderService.Cancel(r.Context(), "", id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
