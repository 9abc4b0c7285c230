package handlers

import (
	"kosh/internal/logging"
	"kosh/internal/services/wallet"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultHistoryPageSize = 20

// TransactionHandler serves the caller's ledger history.
type TransactionHandler struct {
	wallets wallet.Service
	logger  *zap.Logger
}

func NewTransactionHandler(wallets wallet.Service, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{wallets: wallets, logger: logging.OrNop(logger)}
}

// List handles GET /api/wallet/transactions. Without page or limit the
// whole history is returned as a bare array, newest first.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	if !utils.Requested(c) {
		history, err := h.wallets.History(c.UserContext(), caller, 0, 0)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return utils.Success(c, history.Entries)
	}

	p := utils.GetPagination(c, 1, defaultHistoryPageSize)
	history, err := h.wallets.History(c.UserContext(), caller, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	p.SetTotal(history.Total)

	return utils.Success(c, fiber.Map{
		"transactions": history.Entries,
		"pagination":   p,
	})
}
