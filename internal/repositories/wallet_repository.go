package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	appErrors "kosh/internal/errors"
	"kosh/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository defines the wallet store operations.
type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByPK(ctx context.Context, id uint) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	GetByWalletID(ctx context.Context, walletID string) (*models.Wallet, error)
	ExistsWalletID(ctx context.Context, walletID string) (bool, error)

	// Resolve finds a wallet by owner email (when ref contains "@") or by
	// its public wallet ID.
	Resolve(ctx context.Context, ref string) (*models.Wallet, error)

	// GetForUpdate reads a wallet and holds a row lock on it until the
	// enclosing transaction ends.
	GetForUpdate(ctx context.Context, id uint) (*models.Wallet, error)

	// LockWallets locks every listed wallet in ascending primary key order.
	// It is the only routine allowed to lock more than one wallet.
	LockWallets(ctx context.Context, ids ...uint) (map[uint]*models.Wallet, error)

	// ApplyDelta adds delta to a locked wallet's balance.
	ApplyDelta(ctx context.Context, wallet *models.Wallet, delta int64) error

	Search(ctx context.Context, query string, excludeUserID uint, limit int) ([]*models.Wallet, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: wallet", ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByPK(ctx context.Context, id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, id).Error; err != nil {
		return nil, walletLookupError(err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		return nil, walletLookupError(err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByWalletID(ctx context.Context, walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("wallet_id = ?", walletID).
		First(&wallet).Error
	if err != nil {
		return nil, walletLookupError(err)
	}
	return &wallet, nil
}

func (r *walletRepository) ExistsWalletID(ctx context.Context, walletID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("wallet_id = ?", walletID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check wallet id: %w", err)
	}
	return count > 0, nil
}

func (r *walletRepository) Resolve(ctx context.Context, ref string) (*models.Wallet, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, appErrors.ErrRecipientNotFound
	}

	query := r.db.WithContext(ctx).Preload("User")
	if strings.Contains(ref, "@") {
		query = query.
			Joins("JOIN users ON users.id = wallets.user_id").
			Where("users.email = ?", strings.ToLower(ref))
	} else {
		query = query.Where("wallets.wallet_id = ?", strings.ToUpper(ref))
	}

	var wallet models.Wallet
	if err := query.First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to resolve wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetForUpdate(ctx context.Context, id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&wallet, id).Error
	if err != nil {
		return nil, walletLookupError(err)
	}
	return &wallet, nil
}

func (r *walletRepository) LockWallets(ctx context.Context, ids ...uint) (map[uint]*models.Wallet, error) {
	locked := make(map[uint]*models.Wallet, len(ids))
	for _, id := range LockOrder(ids...) {
		wallet, err := r.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = wallet
	}
	return locked, nil
}

// LockOrder returns ids de-duplicated and sorted ascending. Any two
// operations locking an overlapping pair of wallets take the locks in the
// same order.
func LockOrder(ids ...uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	ordered := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	return ordered
}

func (r *walletRepository) ApplyDelta(ctx context.Context, wallet *models.Wallet, delta int64) error {
	balance := wallet.Balance + delta
	if balance < 0 {
		return appErrors.ErrInsufficientFunds
	}
	err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Update("balance", balance).Error
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	wallet.Balance = balance
	return nil
}

func (r *walletRepository) Search(ctx context.Context, query string, excludeUserID uint, limit int) ([]*models.Wallet, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	q := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = wallets.user_id").
		Where("(LOWER(users.email) LIKE ? OR LOWER(wallets.wallet_id) LIKE ?)", pattern, pattern).
		Where("wallets.user_id <> ?", excludeUserID).
		Order("wallets.wallet_id")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var wallets []*models.Wallet
	if err := q.Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to search wallets: %w", err)
	}
	return wallets, nil
}

func walletLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appErrors.ErrWalletNotFound
	}
	return fmt.Errorf("failed to get wallet: %w", err)
}
