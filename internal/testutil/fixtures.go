package testutil

import (
	"strings"
	"testing"

	"kosh/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewWallet creates a user with a wallet holding balance minor units.
func NewWallet(t testing.TB, db *gorm.DB, email string, balance int64) *models.Wallet {
	t.Helper()

	user := &models.User{
		Email:     strings.ToLower(email),
		FirstName: strings.Split(email, "@")[0],
		LastName:  "Test",
		Password:  "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)

	wallet := &models.Wallet{
		WalletID: "WLT-" + strings.ToUpper(uuid.NewString()[:6]),
		UserID:   user.ID,
	}
	require.NoError(t, db.Create(wallet).Error)

	if balance != 0 {
		require.NoError(t, db.Model(wallet).Update("balance", balance).Error)
		wallet.Balance = balance
	}
	wallet.User = user
	return wallet
}

// Caller returns the ledger caller owning wallet.
func Caller(wallet *models.Wallet) models.Caller {
	return models.Caller{UserID: wallet.UserID, Email: wallet.User.Email}
}

// Balance reads a wallet's stored balance.
func Balance(t testing.TB, db *gorm.DB, walletPK uint) int64 {
	t.Helper()
	var wallet models.Wallet
	require.NoError(t, db.First(&wallet, walletPK).Error)
	return wallet.Balance
}
