package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/articleai/articleai-server/internal/middleware"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/service"
	"github.com/articleai/articleai-server/internal/util"
)

type stubAdminRepo struct {
	admin *model.Admin
}

func (m *stubAdminRepo) FindByAdminID(ctx context.Context, adminID string) (*model.Admin, error) {
	if m.admin != nil && m.admin.AdminID == adminID {
		return m.admin, nil
	}
	return nil, nil
}

func (m *stubAdminRepo) FindByID(ctx context.Context, id string) (*model.Admin, error) {
	if m.admin != nil && m.admin.ID == id {
		return m.admin, nil
	}
	return nil, nil
}

func (m *stubAdminRepo) Create(ctx context.Context, params model.CreateAdminParams) (*model.Admin, error) {
	return nil, nil
}

func (m *stubAdminRepo) UpdateLastLogin(ctx context.Context, id string) error {
	return nil
}

func (m *stubAdminRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return nil
}

type stubAdminSessionRepo struct {
	sessions map[string]*model.AdminSession
}

func newStubAdminSessionRepo() *stubAdminSessionRepo {
	return &stubAdminSessionRepo{sessions: make(map[string]*model.AdminSession)}
}

func (m *stubAdminSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.AdminSession, error) {
	return m.sessions[tokenHash], nil
}

func (m *stubAdminSessionRepo) Create(ctx context.Context, params model.CreateAdminSessionParams) (*model.AdminSession, error) {
	session := &model.AdminSession{
		ID:        "session-1",
		TokenHash: params.TokenHash,
		AdminID:   params.AdminID,
		ExpiresAt: params.ExpiresAt,
		CreatedAt: time.Now(),
	}
	m.sessions[params.TokenHash] = session
	return session, nil
}

func (m *stubAdminSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	delete(m.sessions, tokenHash)
	return nil
}

func (m *stubAdminSessionRepo) DeleteByAdminID(ctx context.Context, adminID string) error {
	for hash, s := range m.sessions {
		if s.AdminID == adminID {
			delete(m.sessions, hash)
		}
	}
	return nil
}

func (m *stubAdminSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func newTestAdminHandler(t *testing.T) (*AdminHandler, *stubAdminSessionRepo) {
	t.Helper()

	hash, err := util.HashPassword("AdminPass123!")
	require.NoError(t, err)

	adminRepo := &stubAdminRepo{admin: &model.Admin{
		ID:           "admin-uuid-1",
		AdminID:      "master_admin",
		PasswordHash: hash,
		FullName:     "Master Admin",
		Email:        "admin@example.com",
	}}
	sessionRepo := newStubAdminSessionRepo()

	adminService := service.NewAdminService(adminRepo, sessionRepo, nil, nil, nil, nil, "test-secret", time.Hour)
	sessionMw := middleware.NewAdminSessionMiddleware(adminService)

	return NewAdminHandler(adminService, nil, nil, nil, sessionMw.Handler, 3600, false), sessionRepo
}

func TestAdminLogin(t *testing.T) {
	t.Run("returns token and sets cookie on valid credentials", func(t *testing.T) {
		h, sessionRepo := newTestAdminHandler(t)

		body := `{"adminId":"master_admin","password":"AdminPass123!"}`
		req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"token"`)
		assert.Contains(t, rec.Body.String(), "master_admin")
		assert.Len(t, sessionRepo.sessions, 1)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, middleware.AdminSessionCookie, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("rejects wrong password with 401", func(t *testing.T) {
		h, sessionRepo := newTestAdminHandler(t)

		body := `{"adminId":"master_admin","password":"wrong"}`
		req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
		assert.Empty(t, sessionRepo.sessions)
	})

	t.Run("rejects unknown admin with the same 401 body", func(t *testing.T) {
		h, _ := newTestAdminHandler(t)

		body := `{"adminId":"nobody","password":"AdminPass123!"}`
		req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
	})

	t.Run("rejects missing password with 400", func(t *testing.T) {
		h, _ := newTestAdminHandler(t)

		body := `{"adminId":"master_admin"}`
		req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminLogout(t *testing.T) {
	t.Run("deletes the session and clears the cookie", func(t *testing.T) {
		h, sessionRepo := newTestAdminHandler(t)

		loginReq := httptest.NewRequest("POST", "/api/login",
			strings.NewReader(`{"adminId":"master_admin","password":"AdminPass123!"}`))
		loginRec := httptest.NewRecorder()
		h.Login(loginRec, loginReq)
		require.Equal(t, http.StatusOK, loginRec.Code)
		require.Len(t, sessionRepo.sessions, 1)

		req := httptest.NewRequest("POST", "/api/logout", nil)
		req.AddCookie(loginRec.Result().Cookies()[0])
		rec := httptest.NewRecorder()

		h.Logout(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, sessionRepo.sessions)
	})

	t.Run("succeeds without a session", func(t *testing.T) {
		h, _ := newTestAdminHandler(t)

		req := httptest.NewRequest("POST", "/api/logout", nil)
		rec := httptest.NewRecorder()

		h.Logout(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAdminSessionMiddleware(t *testing.T) {
	t.Run("passes a valid bearer token through to the handler", func(t *testing.T) {
		h, _ := newTestAdminHandler(t)

		loginRec := httptest.NewRecorder()
		h.Login(loginRec, httptest.NewRequest("POST", "/api/login",
			strings.NewReader(`{"adminId":"master_admin","password":"AdminPass123!"}`)))
		require.Equal(t, http.StatusOK, loginRec.Code)

		token := loginRec.Result().Cookies()[0].Value

		protected := h.sessionMiddleware(http.HandlerFunc(h.Me))
		req := httptest.NewRequest("GET", "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "master_admin")
	})

	t.Run("rejects an unknown token with 401", func(t *testing.T) {
		h, _ := newTestAdminHandler(t)

		protected := h.sessionMiddleware(http.HandlerFunc(h.Me))
		req := httptest.NewRequest("GET", "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+strings.Repeat("a", 64))
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please sign in again")
	})

	t.Run("rejects a missing token with 401", func(t *testing.T) {
		h, _ := newTestAdminHandler(t)

		protected := h.sessionMiddleware(http.HandlerFunc(h.Me))
		req := httptest.NewRequest("GET", "/api/me", nil)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
