package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/articleai/articleai-server/internal/audit"
	apperrors "github.com/articleai/articleai-server/internal/errors"
	"github.com/articleai/articleai-server/internal/httputil"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/service"
)

const (
	AdminSessionCookie = "admin_session"
	UserSessionCookie  = "user_session"
)

type contextKey string

const (
	AdminContextKey contextKey = "admin"
	UserContextKey  contextKey = "user"
)

func GetAdmin(ctx context.Context) *model.Admin {
	if admin, ok := ctx.Value(AdminContextKey).(*model.Admin); ok {
		return admin
	}
	return nil
}

func GetUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(UserContextKey).(*model.User); ok {
		return user
	}
	return nil
}

// ExtractToken reads a bearer token from the Authorization header, falling
// back to a named cookie. The SDK sends the header; the browser console sends
// the cookie.
func ExtractToken(r *http.Request, cookieName string) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie(cookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// AdminSessionMiddleware gates the admin surface. Any validation failure,
// including a datastore error, denies access: ambiguity never grants entry.
type AdminSessionMiddleware struct {
	adminService *service.AdminService
}

func NewAdminSessionMiddleware(adminService *service.AdminService) *AdminSessionMiddleware {
	return &AdminSessionMiddleware{adminService: adminService}
}

func (m *AdminSessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r, AdminSessionCookie)
		if token == "" {
			httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
			return
		}

		admin, err := m.adminService.ValidateSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired) {
				audit.LogFromRequest(r, audit.Event{
					Type:    audit.EventAuthFailure,
					Details: map[string]interface{}{"surface": "admin"},
				})
				httputil.WriteError(w, err)
				return
			}
			log.Error().Err(err).Msg("admin session middleware: validation error")
			httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
			return
		}

		ctx := context.WithValue(r.Context(), AdminContextKey, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserSessionMiddleware gates the authenticated user API.
type UserSessionMiddleware struct {
	userService *service.UserService
}

func NewUserSessionMiddleware(userService *service.UserService) *UserSessionMiddleware {
	return &UserSessionMiddleware{userService: userService}
}

func (m *UserSessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r, UserSessionCookie)
		if token == "" {
			httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
			return
		}

		user, err := m.userService.ValidateSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired) {
				audit.LogFromRequest(r, audit.Event{
					Type:    audit.EventAuthFailure,
					Details: map[string]interface{}{"surface": "user"},
				})
				httputil.WriteError(w, err)
				return
			}
			log.Error().Err(err).Msg("user session middleware: validation error")
			httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SetSessionCookie(w http.ResponseWriter, name, token, path string, maxAgeSeconds int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     path,
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   path,
		MaxAge: -1,
	})
}
