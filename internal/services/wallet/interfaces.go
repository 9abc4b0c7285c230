package wallet

import (
	"context"
	"time"

	"kosh/internal/models"
)

// Service is the read side of the ledger.
type Service interface {
	Summary(ctx context.Context, caller models.Caller) (*Summary, error)
	History(ctx context.Context, caller models.Caller, limit, offset int) (*History, error)
	Search(ctx context.Context, caller models.Caller, query string) ([]SearchResult, error)
	Reconcile(ctx context.Context, caller models.Caller) (*Reconciliation, error)
}

// CacheStore is the subset of the cache service the summary cache needs.
type CacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
