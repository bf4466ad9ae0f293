package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/articleai/articleai-server/internal/errors"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/util"
)

const testAdminPassword = "AdminPass123!"

func newTestAdmin(t *testing.T) *model.Admin {
	t.Helper()
	hash, err := util.HashPassword(testAdminPassword)
	require.NoError(t, err)
	return &model.Admin{
		ID:           "admin-1",
		AdminID:      "master_admin",
		PasswordHash: hash,
		FullName:     "Master Admin",
		Email:        "admin@example.com",
	}
}

func newTestAdminService(t *testing.T) (*AdminService, *memAdminRepo, *memAdminSessionRepo) {
	t.Helper()
	adminRepo := newMemAdminRepo(newTestAdmin(t))
	sessionRepo := newMemAdminSessionRepo()
	svc := NewAdminService(adminRepo, sessionRepo, nil, nil, nil, nil, "test-secret", time.Hour)
	return svc, adminRepo, sessionRepo
}

func TestAdminAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts valid credentials", func(t *testing.T) {
		svc, _, _ := newTestAdminService(t)

		admin, err := svc.Authenticate(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)
		assert.Equal(t, "master_admin", admin.AdminID)
	})

	t.Run("unknown handle and wrong password are indistinguishable", func(t *testing.T) {
		svc, _, _ := newTestAdminService(t)

		_, errUnknown := svc.Authenticate(ctx, "nobody", testAdminPassword)
		_, errWrongPw := svc.Authenticate(ctx, "master_admin", "wrong-password")

		assert.Equal(t, ErrInvalidCredentials, errUnknown)
		assert.Equal(t, ErrInvalidCredentials, errWrongPw)
		assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	})

	t.Run("rejects empty inputs before touching the store", func(t *testing.T) {
		svc, adminRepo, _ := newTestAdminService(t)
		adminRepo.findErr = errors.New("db should not be hit")

		_, err := svc.Authenticate(ctx, "", testAdminPassword)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))

		_, err = svc.Authenticate(ctx, "master_admin", "")
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
	})

	t.Run("fails closed on a store error", func(t *testing.T) {
		svc, adminRepo, _ := newTestAdminService(t)
		adminRepo.findErr = errors.New("connection refused")

		_, err := svc.Authenticate(ctx, "master_admin", testAdminPassword)
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
	})

	t.Run("has no side effects on its own", func(t *testing.T) {
		svc, adminRepo, sessionRepo := newTestAdminService(t)

		_, err := svc.Authenticate(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)

		assert.Empty(t, sessionRepo.sessions)
		assert.Nil(t, adminRepo.admins["admin-1"].LastLoginAt)
	})
}

func TestAdminIssueSession(t *testing.T) {
	ctx := context.Background()

	t.Run("stores only a hash of the token", func(t *testing.T) {
		svc, _, sessionRepo := newTestAdminService(t)
		admin := newTestAdmin(t)

		token, err := svc.IssueSession(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, token, 64)

		require.Len(t, sessionRepo.sessions, 1)
		for hash := range sessionRepo.sessions {
			assert.NotEqual(t, token, hash)
			assert.Equal(t, util.HmacSHA256("test-secret", token), hash)
		}
	})

	t.Run("a store-write failure fails the whole sign-in", func(t *testing.T) {
		svc, _, sessionRepo := newTestAdminService(t)
		sessionRepo.createErr = errors.New("disk full")

		token, err := svc.IssueSession(ctx, newTestAdmin(t))
		assert.Empty(t, token)
		assert.Equal(t, apperrors.ErrCodeSessionIssue, apperrors.GetCode(err))
	})

	t.Run("records last login best-effort", func(t *testing.T) {
		svc, adminRepo, _ := newTestAdminService(t)

		_, err := svc.IssueSession(ctx, adminRepo.admins["admin-1"])
		require.NoError(t, err)
		assert.NotNil(t, adminRepo.admins["admin-1"].LastLoginAt)
	})

	t.Run("consecutive sessions get distinct tokens", func(t *testing.T) {
		svc, _, sessionRepo := newTestAdminService(t)
		admin := newTestAdmin(t)

		t1, err := svc.IssueSession(ctx, admin)
		require.NoError(t, err)
		t2, err := svc.IssueSession(ctx, admin)
		require.NoError(t, err)

		assert.NotEqual(t, t1, t2)
		assert.Len(t, sessionRepo.sessions, 2)
	})
}

func TestAdminValidateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves a live token to its admin", func(t *testing.T) {
		svc, _, _ := newTestAdminService(t)

		_, token, err := svc.Login(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)

		admin, err := svc.ValidateSession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "master_admin", admin.AdminID)
	})

	t.Run("unknown token reports not found", func(t *testing.T) {
		svc, _, _ := newTestAdminService(t)

		_, err := svc.ValidateSession(ctx, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
		assert.Equal(t, ErrSessionNotFound, err)
	})

	t.Run("expired token reports expired with the same user message", func(t *testing.T) {
		adminRepo := newMemAdminRepo(newTestAdmin(t))
		sessionRepo := newMemAdminSessionRepo()
		svc := NewAdminService(adminRepo, sessionRepo, nil, nil, nil, nil, "test-secret", -time.Minute)

		_, token, err := svc.Login(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)

		_, err = svc.ValidateSession(ctx, token)
		assert.Equal(t, ErrSessionExpired, err)
		assert.Equal(t, ErrSessionNotFound.Error(), ErrSessionExpired.Error())
	})

	t.Run("validation does not extend expiry", func(t *testing.T) {
		svc, _, sessionRepo := newTestAdminService(t)

		_, token, err := svc.Login(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)

		var before time.Time
		for _, s := range sessionRepo.sessions {
			before = s.ExpiresAt
		}

		_, err = svc.ValidateSession(ctx, token)
		require.NoError(t, err)

		for _, s := range sessionRepo.sessions {
			assert.Equal(t, before, s.ExpiresAt)
		}
	})

	t.Run("fails closed on a store error", func(t *testing.T) {
		svc, _, sessionRepo := newTestAdminService(t)
		sessionRepo.findErr = errors.New("connection reset")

		_, err := svc.ValidateSession(ctx, "sometoken")
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
	})

	t.Run("session whose admin is gone reports not found", func(t *testing.T) {
		svc, adminRepo, _ := newTestAdminService(t)

		_, token, err := svc.Login(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)

		delete(adminRepo.admins, "admin-1")

		_, err = svc.ValidateSession(ctx, token)
		assert.Equal(t, ErrSessionNotFound, err)
	})
}

func TestAdminLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidates the token server-side", func(t *testing.T) {
		svc, _, _ := newTestAdminService(t)

		_, token, err := svc.Login(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, token))

		_, err = svc.ValidateSession(ctx, token)
		assert.Equal(t, ErrSessionNotFound, err)
	})

	t.Run("repeated logout is a no-op", func(t *testing.T) {
		svc, _, _ := newTestAdminService(t)

		_, token, err := svc.Login(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)

		assert.NoError(t, svc.Logout(ctx, token))
		assert.NoError(t, svc.Logout(ctx, token))
		assert.NoError(t, svc.Logout(ctx, ""))
	})
}

func TestAdminChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes every session", func(t *testing.T) {
		svc, adminRepo, sessionRepo := newTestAdminService(t)

		_, t1, err := svc.Login(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)
		_, _, err = svc.Login(ctx, "master_admin", testAdminPassword)
		require.NoError(t, err)
		require.Len(t, sessionRepo.sessions, 2)

		admin := adminRepo.admins["admin-1"]
		require.NoError(t, svc.ChangePassword(ctx, admin, testAdminPassword, "NewPass456!"))

		assert.Empty(t, sessionRepo.sessions)
		_, err = svc.ValidateSession(ctx, t1)
		assert.Equal(t, ErrSessionNotFound, err)

		// New password works, old one does not.
		_, err = svc.Authenticate(ctx, "master_admin", "NewPass456!")
		assert.NoError(t, err)
		_, err = svc.Authenticate(ctx, "master_admin", testAdminPassword)
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		svc, adminRepo, _ := newTestAdminService(t)

		err := svc.ChangePassword(ctx, adminRepo.admins["admin-1"], "wrong", "NewPass456!")
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("rejects a short new password", func(t *testing.T) {
		svc, adminRepo, _ := newTestAdminService(t)

		err := svc.ChangePassword(ctx, adminRepo.admins["admin-1"], testAdminPassword, "short")
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
	})
}

func TestAdminGetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("counts users, publishers, and statuses", func(t *testing.T) {
		userRepo := newMemUserRepo(
			&model.User{ID: "user-1"},
			&model.User{ID: "user-2"},
		)
		articleRepo := newMemArticleRepo(
			&model.Article{ID: "art-1", Status: model.ArticleStatusDraft},
			&model.Article{ID: "art-2", Status: model.ArticleStatusPublished},
		)
		orderRepo := newMemOrderRepo(
			&model.Order{ID: "ord-1", Status: model.OrderStatusPending},
			&model.Order{ID: "ord-2", Status: model.OrderStatusPaid},
			&model.Order{ID: "ord-3", Status: model.OrderStatusPaid},
		)
		pubRepo := newMemPublisherRepo(&model.Publisher{ID: "pub-1"})

		svc := NewAdminService(newMemAdminRepo(), newMemAdminSessionRepo(),
			userRepo, articleRepo, orderRepo, pubRepo, "test-secret", time.Hour)

		stats, err := svc.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Users)
		assert.Equal(t, 1, stats.Publishers)
		assert.Equal(t, 1, stats.Articles.Draft)
		assert.Equal(t, 1, stats.Articles.Published)
		assert.Equal(t, 1, stats.Orders.Pending)
		assert.Equal(t, 2, stats.Orders.Paid)
		assert.Equal(t, 0, stats.Orders.Published)
	})

	t.Run("surfaces a datastore failure instead of zeroes", func(t *testing.T) {
		userRepo := newMemUserRepo()
		userRepo.countErr = errors.New("connection refused")

		svc := NewAdminService(newMemAdminRepo(), newMemAdminSessionRepo(),
			userRepo, newMemArticleRepo(), newMemOrderRepo(), newMemPublisherRepo(),
			"test-secret", time.Hour)

		stats, err := svc.GetStats(ctx)
		assert.Nil(t, stats)
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
	})
}
