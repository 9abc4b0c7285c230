// Package user registers wallet owners.
package user

import (
	"context"
	"fmt"
	"strings"

	"kosh/internal/logging"
	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/services/wallet"
	"kosh/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	// Register creates the user and their empty wallet in one transaction.
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Password  string `json:"password" validate:"required,password"`
}

type service struct {
	store      *repositories.Store
	logger     *zap.Logger
	bcryptCost int
}

type Option func(*service)

func WithBcryptCost(cost int) Option {
	return func(s *service) { s.bcryptCost = cost }
}

func NewService(store *repositories.Store, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		store:      store,
		logger:     logging.OrNop(logger),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  string(hashed),
		IsActive:  true,
	}
	err = s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		w, err := wallet.Provision(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		user.Wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("wallet_id", user.Wallet.WalletID))
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.store.Users.GetByID(ctx, id)
}
