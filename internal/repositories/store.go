package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one database handle. A Store created
// inside ExecuteInTransaction shares that transaction, so every lock taken
// through it is held until the callback returns.
type Store struct {
	db *gorm.DB

	Wallets  WalletRepository
	Ledger   LedgerRepository
	Requests MoneyRequestRepository
	Pins     PinRepository
	Users    UserRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Wallets:  NewWalletRepository(db),
		Ledger:   NewLedgerRepository(db),
		Requests: NewMoneyRequestRepository(db),
		Pins:     NewPinRepository(db),
		Users:    NewUserRepository(db),
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ExecuteInTransaction runs fn in a single database transaction. Returning
// an error rolls back every write made through tx.
func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
