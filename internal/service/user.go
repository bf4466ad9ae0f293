package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/articleai/articleai-server/internal/errors"
	"github.com/articleai/articleai-server/internal/model"
	"github.com/articleai/articleai-server/internal/repository"
	"github.com/articleai/articleai-server/internal/util"
)

const minPasswordLength = 8

type UserService struct {
	userRepo      repository.UserRepository
	sessionRepo   repository.UserSessionRepository
	sessionSecret string
	sessionTTL    time.Duration
}

func NewUserService(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	sessionSecret string,
	sessionTTL time.Duration,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}
}

func (s *UserService) Signup(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !util.IsValidEmail(email) {
		return nil, apperrors.InvalidInput("email", "not a valid address")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.InvalidInput("password", "must be at least 8 characters")
	}
	if displayName == "" {
		displayName = email
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("Account")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal("could not hash password").WithCause(err)
	}

	user, err := s.userRepo.Create(ctx, model.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Str("userId", user.ID).Msg("user signed up")

	return user, nil
}

// Login mirrors the admin handshake: one failure value for unknown email and
// wrong password, token issued only after the credential check passes.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", apperrors.MissingRequired("email")
	}
	if password == "" {
		return nil, "", apperrors.MissingRequired("password")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", apperrors.Database(err)
	}
	if user == nil || !util.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", apperrors.Forbidden("Account is disabled")
	}

	token, err := util.GenerateToken()
	if err != nil {
		return nil, "", apperrors.SessionIssueFailed(err)
	}

	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	_, err = s.sessionRepo.Create(ctx, model.CreateUserSessionParams{
		TokenHash: tokenHash,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	})
	if err != nil {
		return nil, "", apperrors.SessionIssueFailed(err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("userId", user.ID).Msg("failed to record last login")
	}

	return user, token, nil
}

func (s *UserService) ValidateSession(ctx context.Context, token string) (*model.User, error) {
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

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	if err := s.sessionRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		return apperrors.Database(err)
	}
	return nil
}
