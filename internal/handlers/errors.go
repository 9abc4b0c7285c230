package handlers

import (
	"errors"

	appErrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const internalErrorMessage = "An unexpected error occurred."

// respondError writes err as a JSON error. Domain errors keep their message
// and status; anything else is logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var pinErr *appErrors.PinInvalidError
	if errors.As(err, &pinErr) {
		return utils.Respond(c, appErrors.StatusOf(err), fiber.Map{
			"error":              appErrors.ErrPinInvalid.Message,
			"code":               appErrors.ErrPinInvalid.Code,
			"remaining_attempts": pinErr.Remaining,
		})
	}

	var de *appErrors.DomainError
	if errors.As(err, &de) {
		return utils.Respond(c, de.Status, fiber.Map{
			"error": de.Message,
			"code":  de.Code,
		})
	}

	logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return utils.InternalError(c, internalErrorMessage)
}

// callerOf returns the authenticated caller set by the auth middleware.
func callerOf(c *fiber.Ctx) (models.Caller, bool) {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return models.Caller{}, false
	}
	return claims.Caller(), true
}
