package handlers

import (
	"kosh/internal/logging"
	"kosh/internal/models"
	"kosh/internal/services/moneyrequest"
	"kosh/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MoneyRequestHandler exposes request-to-pay.
type MoneyRequestHandler struct {
	service moneyrequest.Service
	logger  *zap.Logger
}

func NewMoneyRequestHandler(s moneyrequest.Service, logger *zap.Logger) *MoneyRequestHandler {
	return &MoneyRequestHandler{service: s, logger: logging.OrNop(logger)}
}

type createMoneyRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

type respondMoneyRequest struct {
	Action string `json:"action"`
	Pin    string `json:"pin"`
}

type moneyRequestView struct {
	RequestID string `json:"request_id"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Amount    string `json:"amount"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

// Create handles POST /api/wallet/requests.
func (h *MoneyRequestHandler) Create(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var req createMoneyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	mr, err := h.service.Create(c.UserContext(), caller, moneyrequest.CreateRequest{
		To:     req.To,
		Amount: req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.Created(c, fiber.Map{
		"message":    "Money request created",
		"request_id": mr.RequestID,
	})
}

// List handles GET /api/wallet/requests.
func (h *MoneyRequestHandler) List(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	listing, err := h.service.List(c.UserContext(), caller)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	incoming := make([]moneyRequestView, 0, len(listing.Incoming))
	for _, r := range listing.Incoming {
		v := viewOf(r)
		if r.FromWallet != nil {
			v.From = r.FromWallet.WalletID
		}
		incoming = append(incoming, v)
	}
	outgoing := make([]moneyRequestView, 0, len(listing.Outgoing))
	for _, r := range listing.Outgoing {
		v := viewOf(r)
		if r.ToWallet != nil {
			v.To = r.ToWallet.WalletID
		}
		outgoing = append(outgoing, v)
	}

	return utils.Success(c, fiber.Map{
		"incoming": incoming,
		"outgoing": outgoing,
	})
}

// Respond handles POST /api/wallet/requests/:id/respond.
func (h *MoneyRequestHandler) Respond(c *fiber.Ctx) error {
	caller, ok := callerOf(c)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var req respondMoneyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	status, err := h.service.Respond(c.UserContext(), caller, c.Params("id"), req.Action, req.Pin)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	message := "Request rejected"
	if status == models.MoneyRequestAccepted {
		message = "Request accepted"
	}
	return utils.Success(c, fiber.Map{
		"message": message,
		"status":  status,
	})
}

func viewOf(r *models.MoneyRequest) moneyRequestView {
	return moneyRequestView{
		RequestID: r.RequestID,
		Amount:    utils.FormatAmount(r.Amount),
		Note:      r.Note,
		CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
