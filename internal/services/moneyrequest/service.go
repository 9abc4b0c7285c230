// Package moneyrequest implements request-to-pay: a requester asks another
// wallet owner for money, and the addressee accepts (paying) or rejects it.
package moneyrequest

import (
	"context"
	"errors"
	"strings"
	"time"

	appErrors "kosh/internal/errors"
	"kosh/internal/logging"
	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/services/pin"
	"kosh/internal/services/transfer"
	"kosh/internal/validation"

	"go.uber.org/zap"
)

// Actions accepted by Respond.
const (
	ActionAccept = "ACCEPT"
	ActionReject = "REJECT"
)

const (
	operationCreate = "request_create"
	operationAccept = "request_accept"
	operationReject = "request_reject"
)

type Service interface {
	Create(ctx context.Context, caller models.Caller, req CreateRequest) (*models.MoneyRequest, error)
	List(ctx context.Context, caller models.Caller) (*Listing, error)
	Accept(ctx context.Context, caller models.Caller, requestID, rawPin string) error
	Reject(ctx context.Context, caller models.Caller, requestID string) error

	// Respond dispatches action to Accept or Reject and returns the
	// request's new status.
	Respond(ctx context.Context, caller models.Caller, requestID, action, rawPin string) (string, error)
}

type CreateRequest struct {
	To     string
	Amount int64
	Note   string
}

// Listing holds the caller's pending requests, newest first. Incoming are
// addressed to the caller; outgoing were raised by the caller.
type Listing struct {
	Incoming []*models.MoneyRequest
	Outgoing []*models.MoneyRequest
}

type service struct {
	store   *repositories.Store
	pins    pin.Verifier
	cache   transfer.SummaryInvalidator
	metrics transfer.MetricsCollector
	logger  *zap.Logger
	now     func() time.Time
}

type Option func(*service)

// WithClock replaces time.Now for responded_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithCache(cache transfer.SummaryInvalidator) Option {
	return func(s *service) { s.cache = cache }
}

func WithMetrics(metrics transfer.MetricsCollector) Option {
	return func(s *service) { s.metrics = metrics }
}

func NewService(store *repositories.Store, pins pin.Verifier, logger *zap.Logger, opts ...Option) Service {
	if store == nil {
		panic("store is required")
	}
	if pins == nil {
		panic("pin verifier is required")
	}
	s := &service{
		store:   store,
		pins:    pins,
		metrics: &transfer.NoopMetricsCollector{},
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, caller models.Caller, req CreateRequest) (*models.MoneyRequest, error) {
	switch {
	case strings.TrimSpace(req.To) == "":
		return nil, s.fail(operationCreate, caller, appErrors.ErrValidation.Withf("to: this field is required"))
	case req.Amount <= 0:
		return nil, s.fail(operationCreate, caller, appErrors.ErrValidation.Withf("amount: must be greater than 0"))
	case len(req.Note) > validation.MaxNoteLength:
		return nil, s.fail(operationCreate, caller, appErrors.ErrValidation.Withf("note: must be at most %d characters", validation.MaxNoteLength))
	}

	requester, err := s.store.Wallets.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, s.fail(operationCreate, caller, err)
	}
	payer, err := s.store.Wallets.Resolve(ctx, req.To)
	if err != nil {
		return nil, s.fail(operationCreate, caller, err)
	}
	if requester.ID == payer.ID {
		return nil, s.fail(operationCreate, caller, appErrors.ErrSelfRequest)
	}

	mr := &models.MoneyRequest{
		FromWalletID: requester.ID,
		ToWalletID:   payer.ID,
		Amount:       req.Amount,
		Note:         strings.TrimSpace(req.Note),
	}
	if err := s.store.Requests.Create(ctx, mr); err != nil {
		return nil, s.fail(operationCreate, caller, err)
	}
	mr.FromWallet = requester
	mr.ToWallet = payer

	s.metrics.RecordOperationResult(operationCreate, transfer.ResultSuccess)
	s.logger.Info("money request created",
		zap.String("request_id", mr.RequestID),
		zap.String("from_wallet", requester.WalletID),
		zap.String("to_wallet", payer.WalletID),
		zap.Int64("amount", mr.Amount))
	return mr, nil
}

func (s *service) List(ctx context.Context, caller models.Caller) (*Listing, error) {
	wallet, err := s.store.Wallets.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	incoming, outgoing, err := s.store.Requests.ListPending(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}
	return &Listing{Incoming: incoming, Outgoing: outgoing}, nil
}

// Reject closes a pending request addressed to the caller without moving
// money.
func (s *service) Reject(ctx context.Context, caller models.Caller, requestID string) error {
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		req, _, err := lockPending(ctx, tx, caller, requestID)
		if err != nil {
			return err
		}
		return tx.Requests.MarkResponded(ctx, req, models.MoneyRequestRejected, s.now())
	})
	if err != nil {
		return s.fail(operationReject, caller, err)
	}

	s.metrics.RecordOperationResult(operationReject, transfer.ResultSuccess)
	s.logger.Info("money request rejected", zap.String("request_id", requestID))
	return nil
}

// Accept pays a pending request addressed to the caller. The PIN is checked
// before any lock is taken. A failed payment leaves the request pending.
func (s *service) Accept(ctx context.Context, caller models.Caller, requestID, rawPin string) error {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(operationAccept, time.Since(start)) }()

	if err := s.pins.Verify(ctx, caller.UserID, rawPin); err != nil {
		return s.fail(operationAccept, caller, err)
	}

	var (
		outcome *transfer.Outcome
		amount  int64
	)
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		req, payer, err := lockPending(ctx, tx, caller, requestID)
		if err != nil {
			return err
		}
		amount = req.Amount

		outcome, err = transfer.Post(ctx, tx, transfer.Posting{
			From:   payer.ID,
			To:     req.FromWalletID,
			Amount: req.Amount,
			Key:    req.IdempotencyKey(),
		})
		if err != nil {
			return err
		}
		return tx.Requests.MarkResponded(ctx, req, models.MoneyRequestAccepted, s.now())
	})
	if err != nil {
		return s.fail(operationAccept, caller, err)
	}

	if outcome.Replayed {
		s.metrics.RecordOperationResult(operationAccept, transfer.ResultReplayed)
	} else {
		s.metrics.RecordOperationResult(operationAccept, transfer.ResultSuccess)
		s.metrics.RecordTransaction(operationAccept, amount)
		if s.cache != nil {
			s.cache.Invalidate(ctx, outcome.FromUserID, outcome.ToUserID)
		}
	}
	s.logger.Info("money request accepted",
		zap.String("request_id", requestID),
		zap.String("reference_id", outcome.ReferenceID.String()),
		zap.Bool("replayed", outcome.Replayed))
	return nil
}

func (s *service) Respond(ctx context.Context, caller models.Caller, requestID, action, rawPin string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case ActionAccept:
		if err := s.Accept(ctx, caller, requestID, rawPin); err != nil {
			return "", err
		}
		return models.MoneyRequestAccepted, nil
	case ActionReject:
		if err := s.Reject(ctx, caller, requestID); err != nil {
			return "", err
		}
		return models.MoneyRequestRejected, nil
	default:
		return "", appErrors.ErrValidation.Withf("Invalid action")
	}
}

// lockPending locks the request row and confirms it is still pending and
// addressed to the caller. Anything else is reported as an invalid request,
// so callers cannot probe requests that are not theirs.
func lockPending(ctx context.Context, tx *repositories.Store, caller models.Caller, requestID string) (*models.MoneyRequest, *models.Wallet, error) {
	payer, err := tx.Wallets.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, nil, err
	}

	req, err := tx.Requests.GetForUpdate(ctx, strings.TrimSpace(requestID))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, appErrors.ErrInvalidRequestState
		}
		return nil, nil, err
	}
	if req.Status != models.MoneyRequestPending || req.ToWalletID != payer.ID {
		return nil, nil, appErrors.ErrInvalidRequestState
	}
	return req, payer, nil
}

func (s *service) fail(operation string, caller models.Caller, err error) error {
	s.metrics.RecordOperationResult(operation, transfer.ResultFailed)
	s.metrics.RecordError(operation, appErrors.CodeOf(err))
	if !appErrors.IsDomain(err) {
		s.logger.Error("money request operation failed",
			zap.String("operation", operation),
			zap.Uint("user_id", caller.UserID),
			zap.Error(err))
	}
	return err
}
