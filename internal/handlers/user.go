package handlers

import (
	"context"

	"kosh/internal/logging"
	"kosh/internal/services/transfer"
	"kosh/internal/services/user"
	"kosh/internal/services/wallet"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PinSetter stores a caller's transaction PIN.
type PinSetter interface {
	SetPin(ctx context.Context, userID uint, rawPin string) error
}

// UserHandler serves registration, PIN setup and the caller's wallet views.
type UserHandler struct {
	users     user.Service
	wallets   wallet.Service
	pins      PinSetter
	summaries transfer.SummaryInvalidator
	logger    *zap.Logger
}

func NewUserHandler(
	users user.Service,
	wallets wallet.Service,
	pins PinSetter,
	summaries transfer.SummaryInvalidator,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		users:     users,
		wallets:   wallets,
		pins:      pins,
		summaries: summaries,
		logger:    logging.OrNop(logger),
	}
}

// Signup handles POST /api/users/signup.
func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var input user.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	u, err := h.users.Register(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.Created(c, fiber.Map{
		"message": "User created successfully",
		"user": fiber.Map{
			"id":         u.ID,
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"wallet_id":  u.Wallet.WalletID,
		},
	})
}

// SetPin handles POST /api/users/set-pin.
func (h *UserHandler) SetPin(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input struct {
		Pin string `json:"pin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	if err := h.pins.SetPin(c.UserContext(), caller.UserID, input.Pin); err != nil {
		return respondError(c, h.logger, err)
	}
	if h.summaries != nil {
		h.summaries.Invalidate(c.UserContext(), caller.UserID)
	}

	return utils.Created(c, fiber.Map{"message": "Transaction PIN set successfully"})
}

// Balance handles GET /api/users/balance.
func (h *UserHandler) Balance(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	summary, err := h.wallets.Summary(c.UserContext(), caller)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.Success(c, summary)
}

// Search handles GET /api/users/search?q=.
func (h *UserHandler) Search(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	results, err := h.wallets.Search(c.UserContext(), caller, c.Query("q"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.Success(c, results)
}
