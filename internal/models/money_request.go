package models

import (
	"time"

	"gorm.io/gorm"
)

// Money request statuses. ACCEPTED and REJECTED are terminal.
const (
	MoneyRequestPending  = "PENDING"
	MoneyRequestAccepted = "ACCEPTED"
	MoneyRequestRejected = "REJECTED"
)

// MoneyRequest asks ToWallet's owner to pay Amount to FromWallet's owner.
type MoneyRequest struct {
	ID           uint    `gorm:"primarykey"`
	RequestID    string  `gorm:"size:20;uniqueIndex;not null"`
	FromWalletID uint    `gorm:"not null;index"`
	FromWallet   *Wallet `gorm:"foreignKey:FromWalletID;constraint:OnDelete:CASCADE"`
	ToWalletID   uint    `gorm:"not null;index"`
	ToWallet     *Wallet `gorm:"foreignKey:ToWalletID;constraint:OnDelete:CASCADE"`
	Amount       int64   `gorm:"not null;check:request_amount_positive,amount > 0"`
	Note         string  `gorm:"size:255"`
	Status       string  `gorm:"size:10;not null;default:'PENDING';index"`
	CreatedAt    time.Time
	RespondedAt  *time.Time
}

func (r *MoneyRequest) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == "" {
		r.RequestID = "REQ" + shortHex()
	}
	if r.Status == "" {
		r.Status = MoneyRequestPending
	}
	return nil
}

// IdempotencyKey is the ledger key used when the request is paid, so a
// retried acceptance can never move the funds twice.
func (r *MoneyRequest) IdempotencyKey() string {
	return "money-request-" + r.RequestID
}
