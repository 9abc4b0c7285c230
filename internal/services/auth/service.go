// Package auth issues and checks session tokens.
package auth

import (
	"context"
	"errors"
	"time"

	appErrors "kosh/internal/errors"
	"kosh/internal/logging"
	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)

	// Logout revokes every token issued to the user so far.
	Logout(ctx context.Context, userID uint) error

	// Authenticate verifies a bearer token and checks it has not been
	// revoked.
	Authenticate(ctx context.Context, token string) (*models.UserClaims, error)
}

type service struct {
	users  repositories.UserRepository
	secret string
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(users repositories.UserRepository, secret string, ttl time.Duration, logger *zap.Logger) Service {
	return &service{
		users:  users,
		secret: secret,
		ttl:    ttl,
		logger: logging.OrNop(logger),
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Info("login failed: unknown email")
			return nil, "", appErrors.ErrUnauthorized
		}
		return nil, "", err
	}

	if !user.IsActive {
		s.logger.Info("login failed: inactive user", zap.Uint("user_id", user.ID))
		return nil, "", appErrors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Info("login failed: incorrect password", zap.Uint("user_id", user.ID))
		return nil, "", appErrors.ErrUnauthorized
	}

	token, err := utils.GenerateToken(s.secret, s.ttl, &models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.users.IncrementTokenVersion(ctx, userID)
}

func (s *service) Authenticate(ctx context.Context, token string) (*models.UserClaims, error) {
	claims, err := utils.ParseToken(s.secret, token)
	if err != nil {
		return nil, appErrors.ErrUnauthorized.Withf("invalid token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, appErrors.ErrUnauthorized.Withf("invalid token")
		}
		return nil, err
	}
	if !user.IsActive || user.TokenVersion != claims.TokenVersion {
		return nil, appErrors.ErrUnauthorized.Withf("session expired")
	}
	return claims, nil
}
