package wallet

import "time"

// Cache keys and durations
const (
	SummaryCacheEntity = "wallet"
	SummaryCacheKind   = "summary"
	CacheDuration      = 5 * time.Minute
)

// Search limits
const (
	DefaultSearchLimit = 20
)

// HistoryTimeLayout formats entry timestamps.
const HistoryTimeLayout = "2006-01-02 15:04:05"
