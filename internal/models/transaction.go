package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger entry types
const (
	TransactionTypeCredit = "CREDIT"
	TransactionTypeDebit  = "DEBIT"
)

// Ledger entry statuses. FAILED is reserved; no current flow writes it.
const (
	TransactionStatusSuccess = "SUCCESS"
	TransactionStatusFailed  = "FAILED"
)

// Transaction is an immutable ledger entry. The two legs of a transfer share
// ReferenceID and IdempotencyKey and name each other as counterparty.
type Transaction struct {
	ID             uint       `gorm:"primarykey"`
	TransactionID  string     `gorm:"size:20;uniqueIndex;not null"`
	WalletID       uint       `gorm:"not null;uniqueIndex:idx_wallet_idempotency,priority:1;index:idx_wallet_created,priority:1"`
	Wallet         *Wallet    `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE"`
	CounterpartyID *uint      `gorm:"index"`
	Counterparty   *Wallet    `gorm:"foreignKey:CounterpartyID;constraint:OnDelete:SET NULL"`
	Amount         int64      `gorm:"not null;check:amount_must_be_positive,amount > 0"`
	Type           string     `gorm:"size:10;not null"`
	Status         string     `gorm:"size:10;not null;default:'SUCCESS'"`
	ReferenceID    *uuid.UUID `gorm:"index"`
	IdempotencyKey string     `gorm:"size:150;not null;uniqueIndex:idx_wallet_idempotency,priority:2"`
	CreatedAt      time.Time  `gorm:"index:idx_wallet_created,priority:2,sort:desc"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == "" {
		t.TransactionID = NewTransactionID()
	}
	if t.Status == "" {
		t.Status = TransactionStatusSuccess
	}
	return nil
}

// NewTransactionID returns a TXN-prefixed identifier.
func NewTransactionID() string {
	return "TXN" + shortHex()
}

// DisplayReference renders the short form of a transfer reference, e.g.
// REF-1B4E28BA. Entries without a reference render as an empty string.
func (t *Transaction) DisplayReference() string {
	if t.ReferenceID == nil {
		return ""
	}
	head := strings.SplitN(t.ReferenceID.String(), "-", 2)[0]
	return fmt.Sprintf("REF-%s", strings.ToUpper(head))
}

func shortHex() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
