package transfer

import (
	"context"

	appErrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/repositories"

	"github.com/google/uuid"
)

// Posting moves Amount from wallet From to wallet To under ledger key Key.
type Posting struct {
	From   uint
	To     uint
	Amount int64
	Key    string
}

// Outcome describes a completed or replayed posting.
type Outcome struct {
	ReferenceID   uuid.UUID
	TransactionID string
	FromBalance   int64
	Replayed      bool

	// Owners of the two wallets, for cache invalidation.
	FromUserID uint
	ToUserID   uint
}

// Post executes p inside tx. Both wallets are locked through LockWallets,
// a posting already recorded under p.Key is replayed without writing, and
// the payer's balance is checked only once the locks are held. A completed
// posting leaves a DEBIT on From and a CREDIT on To sharing one reference.
func Post(ctx context.Context, tx *repositories.Store, p Posting) (*Outcome, error) {
	if p.Amount <= 0 {
		return nil, appErrors.ErrValidation.Withf("amount: must be greater than 0")
	}
	if p.From == p.To {
		return nil, appErrors.ErrSelfTransfer
	}

	locked, err := tx.Wallets.LockWallets(ctx, p.From, p.To)
	if err != nil {
		return nil, err
	}
	from, to := locked[p.From], locked[p.To]

	prior, err := priorEntry(ctx, tx, from.ID, p.Key, models.TransactionTypeDebit)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		outcome := &Outcome{
			TransactionID: prior.TransactionID,
			FromBalance:   from.Balance,
			Replayed:      true,
			FromUserID:    from.UserID,
			ToUserID:      to.UserID,
		}
		if prior.ReferenceID != nil {
			outcome.ReferenceID = *prior.ReferenceID
		}
		return outcome, nil
	}

	if from.Balance < p.Amount {
		return nil, appErrors.ErrInsufficientFunds
	}
	if err := tx.Wallets.ApplyDelta(ctx, from, -p.Amount); err != nil {
		return nil, err
	}
	if err := tx.Wallets.ApplyDelta(ctx, to, p.Amount); err != nil {
		return nil, err
	}

	ref := uuid.New()
	fromID, toID := from.ID, to.ID
	debit := &models.Transaction{
		WalletID:       fromID,
		CounterpartyID: &toID,
		Amount:         p.Amount,
		Type:           models.TransactionTypeDebit,
		ReferenceID:    &ref,
		IdempotencyKey: p.Key,
	}
	credit := &models.Transaction{
		WalletID:       toID,
		CounterpartyID: &fromID,
		Amount:         p.Amount,
		Type:           models.TransactionTypeCredit,
		ReferenceID:    &ref,
		IdempotencyKey: p.Key,
	}
	if err := tx.Ledger.Append(ctx, debit, credit); err != nil {
		return nil, err
	}

	return &Outcome{
		ReferenceID:   ref,
		TransactionID: debit.TransactionID,
		FromBalance:   from.Balance,
		FromUserID:    from.UserID,
		ToUserID:      to.UserID,
	}, nil
}
