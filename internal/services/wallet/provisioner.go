package wallet

import (
	"context"
	"fmt"

	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/utils"
)

// Provision creates the wallet of a newly created user. Call it with the
// transaction that created the user so both rows commit together. The
// wallet always opens with a zero balance.
func Provision(ctx context.Context, tx *repositories.Store, userID uint) (*models.Wallet, error) {
	walletID, err := utils.UniqueWalletID(ctx, tx.Wallets.ExistsWalletID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate wallet id: %w", err)
	}

	w := &models.Wallet{WalletID: walletID, UserID: userID}
	if err := tx.Wallets.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}
