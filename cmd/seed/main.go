// Command seed creates a demo wallet owner. Re-running it is harmless.
package main

import (
	"context"
	"errors"
	"os"

	"kosh/internal/config"
	"kosh/internal/logging"
	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/services/pin"
	"kosh/internal/services/transfer"
	"kosh/internal/services/user"

	"go.uber.org/zap"
)

// openingCreditKey makes the opening credit apply once per wallet.
const openingCreditKey = "seed-opening-credit"

func main() {
	config.LoadEnv()
	cfg := config.Load()

	logger, sync := logging.New(config.IsProduction())
	defer func() { _ = sync() }()

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if email == "" || password == "" {
		logger.Fatal("SEED_EMAIL and SEED_PASSWORD must be set in environment")
	}

	db, err := repositories.Open(cfg.DB)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := repositories.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	store := repositories.NewStore(db)
	pins := pin.NewService(store, logger, pin.WithBcryptCost(cfg.BcryptCost))

	err = seed(context.Background(), seedInput{
		store:    store,
		users:    user.NewService(store, logger, user.WithBcryptCost(cfg.BcryptCost)),
		pins:     pins,
		ledger:   transfer.NewService(store, pins, nil, nil, logger),
		logger:   logger,
		email:    email,
		password: password,
		first:    config.GetEnv("SEED_FIRST_NAME", "Demo"),
		last:     config.GetEnv("SEED_LAST_NAME", "User"),
		pin:      os.Getenv("SEED_PIN"),
		opening:  int64(config.GetIntEnv("SEED_OPENING_BALANCE", 0)),
	})
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}

type seedInput struct {
	store  *repositories.Store
	users  user.Service
	pins   *pin.Service
	ledger transfer.Service
	logger *zap.Logger

	email, password, first, last string
	pin                          string
	opening                      int64
}

func seed(ctx context.Context, in seedInput) error {
	u, err := in.store.Users.GetByEmail(ctx, in.email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		u, err = in.users.Register(ctx, user.RegisterInput{
			Email:     in.email,
			FirstName: in.first,
			LastName:  in.last,
			Password:  in.password,
		})
		if err != nil {
			return err
		}
		in.logger.Info("demo user created", zap.String("email", u.Email), zap.String("wallet_id", u.Wallet.WalletID))
	case err != nil:
		return err
	default:
		in.logger.Info("demo user already exists", zap.String("email", u.Email))
	}

	if in.pin != "" {
		has, err := in.pins.HasPin(ctx, u.ID)
		if err != nil {
			return err
		}
		if !has {
			if err := in.pins.SetPin(ctx, u.ID, in.pin); err != nil {
				return err
			}
			in.logger.Info("demo PIN set")
		}
	}

	if in.opening > 0 {
		caller := models.Caller{UserID: u.ID, Email: u.Email}
		result, err := in.ledger.Credit(ctx, caller, in.opening, openingCreditKey)
		if err != nil {
			return err
		}
		in.logger.Info("opening credit",
			zap.String("transaction_id", result.TransactionID),
			zap.Bool("replayed", result.Replayed),
			zap.Int64("balance", result.Balance))
	}
	return nil
}
