package main

import (
	"context"
	"testing"

	"kosh/internal/repositories"
	"kosh/internal/services/pin"
	"kosh/internal/services/transfer"
	"kosh/internal/services/user"
	"kosh/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestSeed_IsRepeatable(t *testing.T) {
	db := testutil.NewDB(t)
	store := repositories.NewStore(db)
	pins := pin.NewService(store, nil, pin.WithBcryptCost(bcrypt.MinCost))
	in := seedInput{
		store:    store,
		users:    user.NewService(store, nil, user.WithBcryptCost(bcrypt.MinCost)),
		pins:     pins,
		ledger:   transfer.NewService(store, pins, nil, nil, nil),
		logger:   zap.NewNop(),
		email:    "demo@example.com",
		password: "demo-password",
		first:    "Demo",
		last:     "User",
		pin:      "1234",
		opening:  50000,
	}
	ctx := context.Background()

	require.NoError(t, seed(ctx, in))
	require.NoError(t, seed(ctx, in))

	u, err := store.Users.GetByEmail(ctx, "demo@example.com")
	require.NoError(t, err)
	w, err := store.Wallets.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), w.Balance)

	require.NoError(t, pins.Verify(ctx, u.ID, "1234"))
}
