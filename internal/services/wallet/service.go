package wallet

import (
	"context"
	"strings"

	"kosh/internal/logging"
	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/utils"

	"go.uber.org/zap"
)

type service struct {
	store     *repositories.Store
	summaries *SummaryCache
	logger    *zap.Logger
}

// NewService creates a new wallet service. summaries may be nil.
func NewService(store *repositories.Store, summaries *SummaryCache, logger *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{
		store:     store,
		summaries: summaries,
		logger:    logging.OrNop(logger),
	}
}

func (s *service) Summary(ctx context.Context, caller models.Caller) (*Summary, error) {
	if cached, ok := s.summaries.get(ctx, caller.UserID); ok {
		return cached, nil
	}

	wallet, err := s.store.Wallets.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	hasPin, err := s.store.Pins.Exists(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		WalletID: wallet.WalletID,
		Balance:  utils.FormatAmount(wallet.Balance),
		HasPin:   hasPin,
	}
	if wallet.User != nil {
		summary.FirstName = wallet.User.FirstName
		summary.Email = wallet.User.Email
	}

	s.summaries.put(ctx, caller.UserID, summary)
	return summary, nil
}

func (s *service) History(ctx context.Context, caller models.Caller, limit, offset int) (*History, error) {
	wallet, err := s.store.Wallets.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.Ledger.History(ctx, wallet.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Ledger.Count(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}

	history := &History{Entries: make([]HistoryEntry, 0, len(entries)), Total: total}
	for _, e := range entries {
		history.Entries = append(history.Entries, toHistoryEntry(wallet, e))
	}
	return history, nil
}

func toHistoryEntry(owner *models.Wallet, t *models.Transaction) HistoryEntry {
	entry := HistoryEntry{
		TransactionID: t.TransactionID,
		Reference:     t.DisplayReference(),
		Type:          t.Type,
		Amount:        utils.FormatAmount(t.Amount),
		WalletID:      owner.WalletID,
		Timestamp:     t.CreatedAt.Format(HistoryTimeLayout),
	}
	if cp := t.Counterparty; cp != nil {
		walletID := cp.WalletID
		entry.CounterpartyWalletID = &walletID
		if cp.User != nil {
			email := cp.User.Email
			entry.CounterpartyEmail = &email
		}
	}
	return entry
}

// Search matches other users by email or wallet ID, case-insensitively.
// An empty query matches nothing.
func (s *service) Search(ctx context.Context, caller models.Caller, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}

	wallets, err := s.store.Wallets.Search(ctx, query, caller.UserID, DefaultSearchLimit)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(wallets))
	seen := make(map[string]struct{}, len(wallets))
	for _, w := range wallets {
		if _, dup := seen[w.WalletID]; dup || w.User == nil {
			continue
		}
		seen[w.WalletID] = struct{}{}
		results = append(results, SearchResult{
			Email:     w.User.Email,
			WalletID:  w.WalletID,
			FirstName: w.User.FirstName,
			LastName:  w.User.LastName,
		})
	}
	return results, nil
}

// Reconcile compares the caller's stored balance with the sum of their
// ledger entries. Balances are only ever changed alongside ledger rows, so
// any difference points at writes made outside the ledger.
func (s *service) Reconcile(ctx context.Context, caller models.Caller) (*Reconciliation, error) {
	wallet, err := s.store.Wallets.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.Ledger.Totals(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}

	rec := &Reconciliation{
		WalletID:      wallet.WalletID,
		Balance:       wallet.Balance,
		LedgerCredits: totals.Credits,
		LedgerDebits:  totals.Debits,
	}
	if !rec.Consistent() {
		s.logger.Warn("wallet balance differs from ledger",
			zap.String("wallet_id", wallet.WalletID),
			zap.Int64("balance", rec.Balance),
			zap.Int64("ledger_net", totals.Net()))
	}
	return rec, nil
}
