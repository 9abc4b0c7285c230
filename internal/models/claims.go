package models

import "github.com/golang-jwt/jwt/v5"

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion int    `json:"token_version"`
}

// Caller converts the verified token claims into the ledger caller.
func (c *UserClaims) Caller() Caller {
	return Caller{UserID: c.UserID, Email: c.Email}
}
