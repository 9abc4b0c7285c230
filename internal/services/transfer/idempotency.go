package transfer

import (
	"context"
	"fmt"
	"strings"

	appErrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/repositories"

	"github.com/google/uuid"
)

const autoKeyPrefix = "auto-"

// StoredKey is the ledger form of a client idempotency key. Keys are scoped
// to the initiating wallet, so two senders reusing a key towards the same
// receiver never collide on the receiver's (wallet, key) constraint. An empty
// key yields a fresh one and so always runs as a new operation.
func StoredKey(initiator uint, clientKey string) string {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		return autoKeyPrefix + uuid.NewString()
	}
	return fmt.Sprintf("%d:%s", initiator, clientKey)
}

func checkClientKey(clientKey string) error {
	if len(strings.TrimSpace(clientKey)) > MaxIdempotencyKeyLength {
		return appErrors.ErrValidation.Withf("idempotency_key: must be at most %d characters", MaxIdempotencyKeyLength)
	}
	return nil
}

// priorEntry returns the entry already recorded on walletID under key. It
// must only be called while walletID is locked by tx; otherwise two
// concurrent requests with one key could both see no prior entry.
func priorEntry(ctx context.Context, tx *repositories.Store, walletID uint, key, wantType string) (*models.Transaction, error) {
	prior, err := tx.Ledger.FindByIdempotencyKey(ctx, walletID, key)
	if err != nil || prior == nil {
		return nil, err
	}
	if prior.Type != wantType {
		return nil, appErrors.ErrValidation.Withf("idempotency_key: already used by another operation")
	}
	return prior, nil
}
