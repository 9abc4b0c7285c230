// Package middleware provides HTTP middleware for the fiber app.
package middleware

import (
	"context"
	"errors"
	"strings"

	appErrors "kosh/internal/errors"
	"kosh/internal/logging"
	"kosh/internal/models"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Authenticator verifies a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.UserClaims, error)
}

// AuthMiddleware handles JWT token validation and user authentication.
type AuthMiddleware struct {
	auth   Authenticator
	cookie string
	logger *zap.Logger
}

// NewAuthMiddleware creates the middleware. Tokens are read from the
// Authorization header, falling back to cookie when it is non-empty.
func NewAuthMiddleware(auth Authenticator, cookie string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, cookie: cookie, logger: logging.OrNop(logger)}
}

// Handler validates the token, checks its version against the user's
// current one and stores the claims under utils.ClaimsKey.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	token, err := m.token(c)
	if err != nil {
		return utils.Unauthorized(c, err.Error())
	}

	claims, err := m.auth.Authenticate(c.UserContext(), token)
	if err != nil {
		var de *appErrors.DomainError
		if errors.As(err, &de) {
			return utils.Unauthorized(c, de.Message)
		}
		m.logger.Error("token check failed", zap.Error(err))
		return utils.InternalError(c, "An unexpected error occurred.")
	}

	c.Locals(utils.ClaimsKey, claims)
	return c.Next()
}

func (m *AuthMiddleware) token(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", errors.New("invalid authorization format")
		}
		return strings.TrimPrefix(header, "Bearer "), nil
	}
	if m.cookie != "" {
		if token := c.Cookies(m.cookie); token != "" {
			return token, nil
		}
	}
	return "", errors.New("missing authorization header")
}
