package repositories

import (
	"context"
	"errors"
	"fmt"

	"kosh/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository is the append-only transaction log. Entries are never
// updated or deleted.
type LedgerRepository interface {
	Append(ctx context.Context, entries ...*models.Transaction) error

	// FindByIdempotencyKey returns the entry recorded for (walletID, key), or
	// nil when none exists.
	FindByIdempotencyKey(ctx context.Context, walletID uint, key string) (*models.Transaction, error)

	// History lists a wallet's entries newest first with the counterparty
	// wallet and its owner loaded. A limit of zero means no limit.
	History(ctx context.Context, walletID uint, limit, offset int) ([]*models.Transaction, error)
	Count(ctx context.Context, walletID uint) (int64, error)

	// Totals sums successful credits and debits of a wallet.
	Totals(ctx context.Context, walletID uint) (LedgerTotals, error)
}

// LedgerTotals are the successful credit and debit sums of one wallet.
type LedgerTotals struct {
	Credits int64
	Debits  int64
}

// Net is the balance the ledger implies.
func (t LedgerTotals) Net() int64 {
	return t.Credits - t.Debits
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Append(ctx context.Context, entries ...*models.Transaction) error {
	for _, entry := range entries {
		if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: ledger entry %q", ErrDuplicateEntry, entry.IdempotencyKey)
			}
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
	}
	return nil
}

func (r *ledgerRepository) FindByIdempotencyKey(ctx context.Context, walletID uint, key string) (*models.Transaction, error) {
	var entries []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ? AND idempotency_key = ?", walletID, key).
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

func (r *ledgerRepository) History(ctx context.Context, walletID uint, limit, offset int) ([]*models.Transaction, error) {
	q := r.db.WithContext(ctx).
		Preload("Counterparty.User").
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var entries []*models.Transaction
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return entries, nil
}

func (r *ledgerRepository) Count(ctx context.Context, walletID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("wallet_id = ?", walletID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *ledgerRepository) Totals(ctx context.Context, walletID uint) (LedgerTotals, error) {
	var totals LedgerTotals
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS credits, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS debits",
			models.TransactionTypeCredit, models.TransactionTypeDebit,
		).
		Where("wallet_id = ? AND status = ?", walletID, models.TransactionStatusSuccess).
		Scan(&totals).Error
	if err != nil {
		return LedgerTotals{}, fmt.Errorf("failed to sum ledger: %w", err)
	}
	return totals, nil
}
