package transfer

import "github.com/google/uuid"

// Operation names used for metrics and logs.
const (
	OperationCredit   = "credit"
	OperationTransfer = "transfer"
)

// Operation results.
const (
	ResultSuccess  = "success"
	ResultReplayed = "replayed"
	ResultFailed   = "failed"
)

// MaxIdempotencyKeyLength bounds the client-supplied key.
const MaxIdempotencyKeyLength = 100

type CreditResult struct {
	TransactionID string
	Balance       int64
	Replayed      bool
}

type TransferRequest struct {
	To             string
	Amount         int64
	Pin            string
	IdempotencyKey string
}

type TransferResult struct {
	ReferenceID   uuid.UUID
	TransactionID string
	Balance       int64
	Replayed      bool
}
