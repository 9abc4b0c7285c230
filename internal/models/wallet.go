package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds one user's balance in minor units. ID is the lock-ordering
// identity; WalletID is the human-facing handle.
type Wallet struct {
	ID        uint   `gorm:"primarykey"`
	WalletID  string `gorm:"size:15;uniqueIndex;not null"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	User      *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Balance   int64  `gorm:"not null;default:0;check:balance_non_negative,balance >= 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Wallets always open empty; money only arrives through the ledger.
	w.Balance = 0
	return nil
}
