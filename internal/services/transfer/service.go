package transfer

import (
	"context"
	"strings"
	"time"

	appErrors "kosh/internal/errors"
	"kosh/internal/logging"
	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/services/pin"

	"go.uber.org/zap"
)

type service struct {
	store   *repositories.Store
	pins    pin.Verifier
	cache   SummaryInvalidator
	metrics MetricsCollector
	logger  *zap.Logger
}

// NewService creates a new transfer service. cache, metrics and logger are
// optional.
func NewService(
	store *repositories.Store,
	pins pin.Verifier,
	cache SummaryInvalidator,
	metrics MetricsCollector,
	logger *zap.Logger,
) Service {
	if store == nil {
		panic("store is required")
	}
	if pins == nil {
		panic("pin verifier is required")
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		store:   store,
		pins:    pins,
		cache:   cache,
		metrics: metrics,
		logger:  logging.OrNop(logger),
	}
}

func (s *service) Credit(ctx context.Context, caller models.Caller, amount int64, idempotencyKey string) (*CreditResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OperationCredit, time.Since(start)) }()

	if amount <= 0 {
		return nil, s.fail(OperationCredit, caller, appErrors.ErrValidation.Withf("amount: must be greater than 0"))
	}
	if err := checkClientKey(idempotencyKey); err != nil {
		return nil, s.fail(OperationCredit, caller, err)
	}

	var result *CreditResult
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		owned, err := tx.Wallets.GetByUserID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		wallet, err := tx.Wallets.GetForUpdate(ctx, owned.ID)
		if err != nil {
			return err
		}

		key := StoredKey(wallet.ID, idempotencyKey)
		prior, err := priorEntry(ctx, tx, wallet.ID, key, models.TransactionTypeCredit)
		if err != nil {
			return err
		}
		if prior != nil {
			result = &CreditResult{TransactionID: prior.TransactionID, Balance: wallet.Balance, Replayed: true}
			return nil
		}

		if err := tx.Wallets.ApplyDelta(ctx, wallet, amount); err != nil {
			return err
		}
		entry := &models.Transaction{
			WalletID:       wallet.ID,
			Amount:         amount,
			Type:           models.TransactionTypeCredit,
			IdempotencyKey: key,
		}
		if err := tx.Ledger.Append(ctx, entry); err != nil {
			return err
		}

		result = &CreditResult{TransactionID: entry.TransactionID, Balance: wallet.Balance}
		return nil
	})
	if err != nil {
		return nil, s.fail(OperationCredit, caller, err)
	}

	s.succeed(ctx, OperationCredit, result.Replayed, amount, caller.UserID)
	s.logger.Info("wallet credited",
		zap.Uint("user_id", caller.UserID),
		zap.String("transaction_id", result.TransactionID),
		zap.Int64("amount", amount),
		zap.Bool("replayed", result.Replayed))
	return result, nil
}

func (s *service) Transfer(ctx context.Context, caller models.Caller, req TransferRequest) (*TransferResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OperationTransfer, time.Since(start)) }()

	if err := validateTransfer(req); err != nil {
		return nil, s.fail(OperationTransfer, caller, err)
	}

	// A wrong PIN must be rejected before any wallet lock is taken, and its
	// counter update must survive even though no money moves.
	if err := s.pins.Verify(ctx, caller.UserID, req.Pin); err != nil {
		return nil, s.fail(OperationTransfer, caller, err)
	}

	var (
		result   *TransferResult
		receiver *models.Wallet
	)
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		sender, err := tx.Wallets.GetByUserID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		receiver, err = tx.Wallets.Resolve(ctx, req.To)
		if err != nil {
			return err
		}
		if sender.ID == receiver.ID {
			return appErrors.ErrSelfTransfer
		}

		outcome, err := Post(ctx, tx, Posting{
			From:   sender.ID,
			To:     receiver.ID,
			Amount: req.Amount,
			Key:    StoredKey(sender.ID, req.IdempotencyKey),
		})
		if err != nil {
			return err
		}

		result = &TransferResult{
			ReferenceID:   outcome.ReferenceID,
			TransactionID: outcome.TransactionID,
			Balance:       outcome.FromBalance,
			Replayed:      outcome.Replayed,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(OperationTransfer, caller, err)
	}

	s.succeed(ctx, OperationTransfer, result.Replayed, req.Amount, caller.UserID, receiver.UserID)
	s.logger.Info("transfer completed",
		zap.Uint("user_id", caller.UserID),
		zap.String("receiver_wallet", receiver.WalletID),
		zap.String("reference_id", result.ReferenceID.String()),
		zap.Int64("amount", req.Amount),
		zap.Bool("replayed", result.Replayed))
	return result, nil
}

func validateTransfer(req TransferRequest) error {
	switch {
	case strings.TrimSpace(req.To) == "":
		return appErrors.ErrValidation.Withf("to: this field is required")
	case req.Amount <= 0:
		return appErrors.ErrValidation.Withf("amount: must be greater than 0")
	case req.Pin == "":
		return appErrors.ErrValidation.Withf("pin: this field is required")
	case strings.TrimSpace(req.IdempotencyKey) == "":
		return appErrors.ErrValidation.Withf("idempotency_key: this field is required")
	}
	return checkClientKey(req.IdempotencyKey)
}

func (s *service) succeed(ctx context.Context, operation string, replayed bool, amount int64, userIDs ...uint) {
	if replayed {
		s.metrics.RecordOperationResult(operation, ResultReplayed)
		return
	}
	s.metrics.RecordOperationResult(operation, ResultSuccess)
	s.metrics.RecordTransaction(operation, amount)
	s.cache.Invalidate(ctx, userIDs...)
}

// fail records err and returns it. Errors outside the domain taxonomy are
// logged here since the HTTP layer only reports them generically.
func (s *service) fail(operation string, caller models.Caller, err error) error {
	s.metrics.RecordOperationResult(operation, ResultFailed)
	s.metrics.RecordError(operation, appErrors.CodeOf(err))
	if !appErrors.IsDomain(err) {
		s.logger.Error("ledger operation failed",
			zap.String("operation", operation),
			zap.Uint("user_id", caller.UserID),
			zap.Error(err))
	}
	return err
}
