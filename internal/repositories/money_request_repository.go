package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kosh/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MoneyRequestRepository interface {
	Create(ctx context.Context, req *models.MoneyRequest) error

	// GetForUpdate reads a request by its public ID and locks the row.
	GetForUpdate(ctx context.Context, requestID string) (*models.MoneyRequest, error)

	// ListPending returns pending requests addressed to the wallet (incoming)
	// and raised by it (outgoing), newest first.
	ListPending(ctx context.Context, walletID uint) (incoming, outgoing []*models.MoneyRequest, err error)

	MarkResponded(ctx context.Context, req *models.MoneyRequest, status string, at time.Time) error
}

type moneyRequestRepository struct {
	db *gorm.DB
}

func NewMoneyRequestRepository(db *gorm.DB) MoneyRequestRepository {
	return &moneyRequestRepository{db: db}
}

func (r *moneyRequestRepository) Create(ctx context.Context, req *models.MoneyRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create money request: %w", err)
	}
	return nil
}

func (r *moneyRequestRepository) GetForUpdate(ctx context.Context, requestID string) (*models.MoneyRequest, error) {
	var req models.MoneyRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get money request: %w", err)
	}
	return &req, nil
}

func (r *moneyRequestRepository) ListPending(ctx context.Context, walletID uint) ([]*models.MoneyRequest, []*models.MoneyRequest, error) {
	var incoming, outgoing []*models.MoneyRequest

	err := r.pending(ctx).
		Preload("FromWallet.User").
		Where("to_wallet_id = ?", walletID).
		Find(&incoming).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list incoming requests: %w", err)
	}

	err = r.pending(ctx).
		Preload("ToWallet.User").
		Where("from_wallet_id = ?", walletID).
		Find(&outgoing).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list outgoing requests: %w", err)
	}

	return incoming, outgoing, nil
}

func (r *moneyRequestRepository) pending(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("status = ?", models.MoneyRequestPending).
		Order("created_at DESC").
		Order("id DESC")
}

func (r *moneyRequestRepository) MarkResponded(ctx context.Context, req *models.MoneyRequest, status string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.MoneyRequest{}).
		Where("id = ?", req.ID).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update money request: %w", err)
	}
	req.Status = status
	req.RespondedAt = &at
	return nil
}
