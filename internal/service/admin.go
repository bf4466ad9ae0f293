package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/articleai/articleai-server/internal/errors"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/repository"
	"github.com/articleai/articleai-server/internal/util"
)

// Sentinel errors for the admin handshake. ErrInvalidCredentials is a single
// value so an unknown admin handle and a wrong password are indistinguishable
// to callers.
var (
	ErrInvalidCredentials = apperrors.InvalidCredentials()
	ErrSessionNotFound    = apperrors.SessionNotFound()
	ErrSessionExpired     = apperrors.SessionExpired()
)

type AdminService struct {
	adminRepo   repository.AdminRepository
	sessionRepo repository.AdminSessionRepository
	userRepo    repository.UserRepository
	articleRepo repository.ArticleRepository
	orderRepo   repository.OrderRepository
	pubRepo     repository.PublisherRepository

	sessionSecret string
	sessionTTL    time.Duration
}

func NewAdminService(
	adminRepo repository.AdminRepository,
	sessionRepo repository.AdminSessionRepository,
	userRepo repository.UserRepository,
	articleRepo repository.ArticleRepository,
	orderRepo repository.OrderRepository,
	pubRepo repository.PublisherRepository,
	sessionSecret string,
	sessionTTL time.Duration,
) *AdminService {
	return &AdminService{
		adminRepo:     adminRepo,
		sessionRepo:   sessionRepo,
		userRepo:      userRepo,
		articleRepo:   articleRepo,
		orderRepo:     orderRepo,
		pubRepo:       pubRepo,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}
}

// Authenticate checks an admin handle and password against the admins table.
// It has no side effects: last_login_at is recorded by IssueSession, so a
// failed issue after a successful check leaves at most a harmless timestamp
// gap, never a security hole.
func (s *AdminService) Authenticate(ctx context.Context, adminID, password string) (*model.Admin, error) {
	if adminID == "" {
		return nil, apperrors.MissingRequired("adminId")
	}
	if password == "" {
		return nil, apperrors.MissingRequired("password")
	}

	admin, err := s.adminRepo.FindByAdminID(ctx, adminID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}

	if !util.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}

// IssueSession mints an opaque bearer token for an already-authenticated
// admin and persists its HMAC hash. A store-write failure fails the whole
// sign-in; the last-login update is best-effort only.
func (s *AdminService) IssueSession(ctx context.Context, admin *model.Admin) (string, error) {
	token, err := util.GenerateToken()
	if err != nil {
		return "", apperrors.SessionIssueFailed(err)
	}

	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	expiresAt := time.Now().Add(s.sessionTTL)

	_, err = s.sessionRepo.Create(ctx, model.CreateAdminSessionParams{
		TokenHash: tokenHash,
		AdminID:   admin.ID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", apperrors.SessionIssueFailed(err)
	}

	if err := s.adminRepo.UpdateLastLogin(ctx, admin.ID); err != nil {
		log.Warn().Err(err).Str("adminId", admin.AdminID).Msg("failed to record last login")
	}

	return token, nil
}

// Login is Authenticate followed by IssueSession in one logical operation.
func (s *AdminService) Login(ctx context.Context, adminID, password string) (*model.Admin, string, error) {
	admin, err := s.Authenticate(ctx, adminID, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueSession(ctx, admin)
	if err != nil {
		return nil, "", err
	}

	return admin, token, nil
}

// ValidateSession resolves a bearer token back to the owning admin row.
// It is read-only: expiry is absolute and validation never extends it.
func (s *AdminService) ValidateSession(ctx context.Context, token string) (*model.Admin, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	session, err := s.sessionRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	admin, err := s.adminRepo.FindByID(ctx, session.AdminID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if admin == nil {
		// Session row outlived its admin; treat as unauthenticated.
		return nil, ErrSessionNotFound
	}

	return admin, nil
}

// Logout deletes the server-side session so the token cannot be replayed.
// Deleting an absent row is a no-op, which makes repeated sign-outs safe.
func (s *AdminService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	if err := s.sessionRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// RevokeAllSessions removes every live session for an admin, used when the
// password changes out-of-band.
func (s *AdminService) RevokeAllSessions(ctx context.Context, adminID string) error {
	if err := s.sessionRepo.DeleteByAdminID(ctx, adminID); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every live session for the admin. Callers must sign in again.
func (s *AdminService) ChangePassword(ctx context.Context, admin *model.Admin, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return apperrors.MissingRequired("currentPassword")
	}
	if len(newPassword) < 8 {
		return apperrors.InvalidInput("newPassword", "must be at least 8 characters")
	}

	if !util.CheckPasswordHash(currentPassword, admin.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal("Could not hash password").WithCause(err)
	}
	if err := s.adminRepo.UpdatePassword(ctx, admin.ID, hash); err != nil {
		return apperrors.Database(err)
	}

	return s.RevokeAllSessions(ctx, admin.ID)
}

// Dashboard stats

type Stats struct {
	Users      int `json:"users"`
	Publishers int `json:"publishers"`
	Articles   struct {
		Draft     int `json:"draft"`
		Submitted int `json:"submitted"`
		Published int `json:"published"`
	} `json:"articles"`
	Orders struct {
		Pending   int `json:"pending"`
		Paid      int `json:"paid"`
		Published int `json:"published"`
	} `json:"orders"`
}

func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error

	if stats.Users, err = s.userRepo.Count(ctx); err != nil {
		return nil, apperrors.Database(err)
	}
	if stats.Publishers, err = s.pubRepo.Count(ctx); err != nil {
		return nil, apperrors.Database(err)
	}

	if stats.Articles.Draft, err = s.articleRepo.CountByStatus(ctx, model.ArticleStatusDraft); err != nil {
		return nil, apperrors.Database(err)
	}
	if stats.Articles.Submitted, err = s.articleRepo.CountByStatus(ctx, model.ArticleStatusSubmitted); err != nil {
		return nil, apperrors.Database(err)
	}
	if stats.Articles.Published, err = s.articleRepo.CountByStatus(ctx, model.ArticleStatusPublished); err != nil {
		return nil, apperrors.Database(err)
	}

	if stats.Orders.Pending, err = s.orderRepo.CountByStatus(ctx, model.OrderStatusPending); err != nil {
		return nil, apperrors.Database(err)
	}
	if stats.Orders.Paid, err = s.orderRepo.CountByStatus(ctx, model.OrderStatusPaid); err != nil {
		return nil, apperrors.Database(err)
	}
	if stats.Orders.Published, err = s.orderRepo.CountByStatus(ctx, model.OrderStatusPublished); err != nil {
		return nil, apperrors.Database(err)
	}

	return stats, nil
}

// User management

func (s *AdminService) GetUsers(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	users, err := s.userRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return users, total, nil
}

func (s *AdminService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}
	return user, nil
}

func (s *AdminService) SetUserActive(ctx context.Context, id string, isActive bool) (*model.User, error) {
	if err := s.userRepo.SetActive(ctx, id, isActive); err != nil {
		return nil, apperrors.Database(err)
	}
	return s.GetUserByID(ctx, id)
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return apperrors.Database(err)
	}
	return nil
}
