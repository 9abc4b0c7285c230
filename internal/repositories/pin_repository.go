package repositories

import (
	"context"
	"errors"
	"fmt"

	"kosh/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PinRepository interface {
	// GetForUpdate reads the user's PIN record and locks it.
	GetForUpdate(ctx context.Context, userID uint) (*models.TransactionPin, error)
	Exists(ctx context.Context, userID uint) (bool, error)
	// Save inserts a new record or overwrites every column of an existing one.
	Save(ctx context.Context, pin *models.TransactionPin) error
}

type pinRepository struct {
	db *gorm.DB
}

func NewPinRepository(db *gorm.DB) PinRepository {
	return &pinRepository{db: db}
}

func (r *pinRepository) GetForUpdate(ctx context.Context, userID uint) (*models.TransactionPin, error) {
	var pin models.TransactionPin
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&pin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction pin: %w", err)
	}
	return &pin, nil
}

func (r *pinRepository) Exists(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionPin{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check transaction pin: %w", err)
	}
	return count > 0, nil
}

func (r *pinRepository) Save(ctx context.Context, pin *models.TransactionPin) error {
	if err := r.db.WithContext(ctx).Save(pin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: transaction pin", ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save transaction pin: %w", err)
	}
	return nil
}
