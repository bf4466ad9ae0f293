package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSRFTestHandler() http.Handler {
	m := NewCSRFMiddleware(false)
	return m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func csrfCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("no csrf cookie set")
	return nil
}

func TestCSRFMiddleware(t *testing.T) {
	t.Run("GET sets the csrf cookie and passes", func(t *testing.T) {
		handler := newCSRFTestHandler()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/api/me", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		cookie := csrfCookieFrom(t, rec)
		assert.NotEmpty(t, cookie.Value)
		assert.False(t, cookie.HttpOnly)
	})

	t.Run("cookie-authenticated POST without header is rejected", func(t *testing.T) {
		handler := newCSRFTestHandler()
		req := httptest.NewRequest(http.MethodPost, "/admin/api/publishers", nil)
		req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: "session-token"})
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "csrf-value"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("cookie-authenticated POST with mismatched header is rejected", func(t *testing.T) {
		handler := newCSRFTestHandler()
		req := httptest.NewRequest(http.MethodPost, "/admin/api/publishers", nil)
		req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: "session-token"})
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "csrf-value"})
		req.Header.Set(CSRFHeaderName, "other-value")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("cookie-authenticated POST with matching header passes", func(t *testing.T) {
		handler := newCSRFTestHandler()
		req := httptest.NewRequest(http.MethodPost, "/admin/api/publishers", nil)
		req.AddCookie(&http.Cookie{Name: UserSessionCookie, Value: "session-token"})
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "csrf-value"})
		req.Header.Set(CSRFHeaderName, "csrf-value")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer POST bypasses the double-submit check", func(t *testing.T) {
		handler := newCSRFTestHandler()
		req := httptest.NewRequest(http.MethodPost, "/admin/api/logout", nil)
		req.Header.Set("Authorization", "Bearer some-session-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cookieless POST passes", func(t *testing.T) {
		// A sign-in from a non-browser client sends neither cookies nor
		// a bearer token.
		handler := newCSRFTestHandler()
		req := httptest.NewRequest(http.MethodPost, "/admin/api/login", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})
}
