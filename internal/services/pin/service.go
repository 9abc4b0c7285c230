// Package pin guards money movement behind a per-user transaction PIN with
// a failed-attempt lockout.
package pin

import (
	"context"
	"errors"
	"fmt"
	"time"

	appErrors "kosh/internal/errors"
	"kosh/internal/logging"
	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultMaxAttempts = 3
	DefaultLockout     = 10 * time.Minute
)

// Verifier checks a caller's PIN before money moves.
type Verifier interface {
	Verify(ctx context.Context, userID uint, rawPin string) error
}

type Service struct {
	store       *repositories.Store
	logger      *zap.Logger
	maxAttempts int
	lockout     time.Duration
	bcryptCost  int
	now         func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLimits sets how many wrong PINs trigger a lockout and for how long.
func WithLimits(maxAttempts int, lockout time.Duration) Option {
	return func(s *Service) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if lockout > 0 {
			s.lockout = lockout
		}
	}
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(store *repositories.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      logging.OrNop(logger),
		maxAttempts: DefaultMaxAttempts,
		lockout:     DefaultLockout,
		bcryptCost:  bcrypt.DefaultCost,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify checks rawPin against the stored hash. It runs in its own
// transaction with the PIN row locked, and the attempt counter it updates is
// committed whatever the outcome, so callers must invoke it before opening
// their own transaction.
func (s *Service) Verify(ctx context.Context, userID uint, rawPin string) error {
	var verdict error

	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		pin, err := tx.Pins.GetForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				verdict = appErrors.ErrPinNotSet
				return nil
			}
			return err
		}

		now := s.now()
		if pin.IsLocked(now) {
			verdict = appErrors.ErrPinLocked
			return nil
		}

		if rawPin == "" || bcrypt.CompareHashAndPassword([]byte(pin.PinHash), []byte(rawPin)) != nil {
			pin.FailedAttempts++
			if pin.FailedAttempts >= s.maxAttempts {
				until := now.Add(s.lockout)
				pin.LockedUntil = &until
				s.logger.Warn("transaction pin locked",
					zap.Uint("user_id", userID),
					zap.Time("locked_until", until))
			}
			verdict = &appErrors.PinInvalidError{Remaining: remaining(s.maxAttempts, pin.FailedAttempts)}
			return tx.Pins.Save(ctx, pin)
		}

		if pin.FailedAttempts == 0 && pin.LockedUntil == nil {
			return nil
		}
		pin.FailedAttempts = 0
		pin.LockedUntil = nil
		return tx.Pins.Save(ctx, pin)
	})
	if err != nil {
		return fmt.Errorf("failed to verify transaction pin: %w", err)
	}
	return verdict
}

// SetPin stores the hash of a 4 to 6 digit PIN, replacing any previous one.
// An active lockout survives the change.
func (s *Service) SetPin(ctx context.Context, userID uint, rawPin string) error {
	if !validation.IsPin(rawPin) {
		return appErrors.ErrValidation.Withf("pin: must be %d to %d digits", validation.MinPinLength, validation.MaxPinLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(rawPin), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}

	return s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		pin, err := tx.Pins.GetForUpdate(ctx, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			pin = &models.TransactionPin{UserID: userID}
		} else if err != nil {
			return err
		}
		pin.PinHash = string(hash)
		return tx.Pins.Save(ctx, pin)
	})
}

// HasPin reports whether the user has set a PIN.
func (s *Service) HasPin(ctx context.Context, userID uint) (bool, error) {
	return s.store.Pins.Exists(ctx, userID)
}

func remaining(maxAttempts, failed int) int {
	if failed >= maxAttempts {
		return 0
	}
	return maxAttempts - failed
}
