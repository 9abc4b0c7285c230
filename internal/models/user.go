package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primarykey"`
	Email        string `gorm:"uniqueIndex;not null"`
	FirstName    string `gorm:"size:50;not null"`
	LastName     string `gorm:"size:50;not null"`
	Password     string `gorm:"not null"`
	IsActive     bool   `gorm:"default:true"`
	TokenVersion int    `gorm:"default:1"`
	Wallet       *Wallet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Caller is the authenticated identity handed to every ledger operation.
type Caller struct {
	UserID uint
	Email  string
}
