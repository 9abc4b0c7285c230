package handlers

import (
	"time"

	"kosh/internal/config"
	"kosh/internal/logging"
	"kosh/internal/services/auth"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccessTokenCookie carries the session token for browser clients.
const AccessTokenCookie = "access_token"

type AuthHandler struct {
	authService auth.Service
	tokenTTL    time.Duration
	logger      *zap.Logger
}

func NewAuthHandler(authService auth.Service, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokenTTL:    tokenTTL,
		logger:      logging.OrNop(logger),
	}
}

// Login handles POST /api/users/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "Email and password are required")
	}

	user, token, err := h.authService.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(h.tokenTTL.Seconds()),
	})

	return utils.Success(c, fiber.Map{
		"message":      "Login successful",
		"access_token": token,
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
		},
	})
}

// Logout handles POST /api/users/logout. Every token issued so far stops
// working.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	if err := h.authService.Logout(c.UserContext(), caller.UserID); err != nil {
		return respondError(c, h.logger, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
	})

	return utils.Success(c, fiber.Map{"message": "Logout successful"})
}
