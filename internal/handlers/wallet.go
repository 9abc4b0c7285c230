package handlers

import (
	"kosh/internal/logging"
	"kosh/internal/services/transfer"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WalletHandler exposes credits and peer-to-peer transfers.
type WalletHandler struct {
	service transfer.Service
	logger  *zap.Logger
}

func NewWalletHandler(s transfer.Service, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{service: s, logger: logging.OrNop(logger)}
}

type creditRequest struct {
	Amount         int64  `json:"amount"`
	IdempotencyKey string `json:"idempotency_key"`
}

type transferRequest struct {
	To             string `json:"to"`
	Amount         int64  `json:"amount"`
	Pin            string `json:"pin"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Credit handles POST /api/wallet/credit.
func (h *WalletHandler) Credit(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var req creditRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	result, err := h.service.Credit(c.UserContext(), caller, req.Amount, req.IdempotencyKey)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	body := fiber.Map{
		"transaction_id": result.TransactionID,
		"balance":        utils.FormatAmount(result.Balance),
	}
	if result.Replayed {
		body["message"] = "Already processed"
		body["replayed"] = true
		return utils.Success(c, body)
	}
	body["message"] = "Wallet credited successfully"
	return utils.Created(c, body)
}

// Transfer handles POST /api/wallet/transfer.
func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	result, err := h.service.Transfer(c.UserContext(), caller, transfer.TransferRequest{
		To:             req.To,
		Amount:         req.Amount,
		Pin:            req.Pin,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	body := fiber.Map{
		"reference_id":   result.ReferenceID.String(),
		"transaction_id": result.TransactionID,
		"balance":        utils.FormatAmount(result.Balance),
	}
	if result.Replayed {
		body["message"] = "Transfer already processed"
		body["replayed"] = true
		return utils.Success(c, body)
	}
	body["message"] = "Transfer successful"
	return utils.Created(c, body)
}
