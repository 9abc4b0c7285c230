package transfer

import (
	"context"
	"time"

	"kosh/internal/models"
)

// Service moves money into and between wallets. Each call is a single
// atomic unit of work.
type Service interface {
	// Credit adds amount to the caller's own wallet.
	Credit(ctx context.Context, caller models.Caller, amount int64, idempotencyKey string) (*CreditResult, error)

	// Transfer moves money from the caller's wallet to the wallet named by
	// req.To after verifying the caller's PIN.
	Transfer(ctx context.Context, caller models.Caller, req TransferRequest) (*TransferResult, error)
}

// MetricsCollector defines the interface for collecting ledger metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordError(operation, code string)
	RecordTransaction(txType string, amount int64)
}

// SummaryInvalidator drops cached balance views after a commit changes them.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...uint)
}
