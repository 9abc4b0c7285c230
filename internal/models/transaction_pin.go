package models

import "time"

// TransactionPin is the second factor gating money movement. Only the bcrypt
// hash of the PIN is stored.
type TransactionPin struct {
	ID             uint   `gorm:"primarykey"`
	UserID         uint   `gorm:"uniqueIndex;not null"`
	User           *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PinHash        string `gorm:"size:128;not null"`
	FailedAttempts int    `gorm:"not null;default:0"`
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocked reports whether a lockout window is active at now.
func (p *TransactionPin) IsLocked(now time.Time) bool {
	return p.LockedUntil != nil && now.Before(*p.LockedUntil)
}
