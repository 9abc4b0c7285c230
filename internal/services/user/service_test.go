package user_test

import (
	"context"
	"testing"

	appErrors "kosh/internal/errors"
	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/services/user"
	"kosh/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (user.Service, *repositories.Store) {
	db := testutil.NewDB(t)
	store := repositories.NewStore(db)
	return user.NewService(store, nil, user.WithBcryptCost(bcrypt.MinCost)), store
}

func TestRegister(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, user.RegisterInput{
		Email:     "  Ada@Example.com ",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "analytical-engine",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEqual(t, "analytical-engine", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("analytical-engine")))

	w, err := store.Wallets.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Wallet.WalletID, w.WalletID)
	assert.Equal(t, int64(0), w.Balance)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	input := user.RegisterInput{Email: "ada@example.com", FirstName: "Ada", LastName: "L", Password: "analytical-engine"}

	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	input.Email = "ADA@example.com"
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, appErrors.ErrEmailTaken)

	var wallets int64
	require.NoError(t, store.DB().Model(&models.Wallet{}).Count(&wallets).Error)
	assert.Equal(t, int64(1), wallets)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t)

	tests := []struct {
		name  string
		input user.RegisterInput
	}{
		{"bad email", user.RegisterInput{Email: "nope", FirstName: "A", LastName: "B", Password: "long-enough"}},
		{"missing name", user.RegisterInput{Email: "a@example.com", LastName: "B", Password: "long-enough"}},
		{"short password", user.RegisterInput{Email: "a@example.com", FirstName: "A", LastName: "B", Password: "short"}},
		{"numeric password", user.RegisterInput{Email: "a@example.com", FirstName: "A", LastName: "B", Password: "12345678"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
}
