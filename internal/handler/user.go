package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/articleai/articleai-server/internal/audit"
	"github.com/articleai/articleai-server/internal/middleware"
	"github.com/articleai/articleai-server/internal/service"
)

type UserHandler struct {
	userService      *service.UserService
	loginRateLimiter *middleware.LoginRateLimiter
	cookieMaxAge     int
	isProduction     bool
}

func NewUserHandler(userService *service.UserService, cookieMaxAge int, isProduction bool) *UserHandler {
	return &UserHandler{
		userService:      userService,
		loginRateLimiter: middleware.NewLoginRateLimiter(),
		cookieMaxAge:     cookieMaxAge,
		isProduction:     isProduction,
	}
}

// Routes returns the unauthenticated auth endpoints. /me is mounted by the
// caller inside the session-protected group.
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.With(h.loginRateLimiter.Handler).Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	return r
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.Signup(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventUserSignup,
		UserID: user.ID,
	})

	writeJSON(w, http.StatusCreated, formatUser(user))
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventUserLoginFailure})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventUserLoginSuccess,
		UserID: user.ID,
	})

	middleware.SetSessionCookie(w, middleware.UserSessionCookie, token, "/", h.cookieMaxAge, h.isProduction)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  formatUser(user),
	})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r, middleware.UserSessionCookie)
	if err := h.userService.Logout(r.Context(), token); err != nil {
		log.Warn().Err(err).Msg("user logout error")
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventUserLogout})

	middleware.ClearSessionCookie(w, middleware.UserSessionCookie, "/")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	writeJSON(w, http.StatusOK, formatUser(user))
}
