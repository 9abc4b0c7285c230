package wallet

import (
	"context"

	"kosh/internal/logging"
	"kosh/internal/repositories/cache"

	"go.uber.org/zap"
)

// SummaryCache keeps balance summaries keyed by user. Cache failures are
// logged and otherwise ignored; the database stays authoritative.
type SummaryCache struct {
	store  CacheStore
	logger *zap.Logger
}

// NewSummaryCache returns a cache over store. A nil store disables caching.
func NewSummaryCache(store CacheStore, logger *zap.Logger) *SummaryCache {
	return &SummaryCache{store: store, logger: logging.OrNop(logger)}
}

func summaryKey(userID uint) string {
	return cache.GenerateKey(SummaryCacheEntity, SummaryCacheKind, userID)
}

func (c *SummaryCache) get(ctx context.Context, userID uint) (*Summary, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	var s Summary
	found, err := c.store.Get(ctx, summaryKey(userID), &s)
	if err != nil {
		c.logger.Warn("summary cache read failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, false
	}
	return &s, found
}

func (c *SummaryCache) put(ctx context.Context, userID uint, s *Summary) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, summaryKey(userID), s, CacheDuration); err != nil {
		c.logger.Warn("summary cache write failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// Invalidate drops the cached summaries of userIDs.
func (c *SummaryCache) Invalidate(ctx context.Context, userIDs ...uint) {
	if c == nil || c.store == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, summaryKey(id))
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn("summary cache invalidation failed", zap.Uints("user_ids", userIDs), zap.Error(err))
	}
}
