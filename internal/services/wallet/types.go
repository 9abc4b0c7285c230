package wallet

// Summary is the caller's balance view. Balance is in display units.
type Summary struct {
	WalletID  string `json:"walletId"`
	Balance   string `json:"balance"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	HasPin    bool   `json:"has_pin"`
}

// HistoryEntry is one ledger row as shown to its wallet owner.
type HistoryEntry struct {
	TransactionID        string  `json:"transaction_id"`
	Reference            string  `json:"reference"`
	Type                 string  `json:"type"`
	Amount               string  `json:"amount"`
	WalletID             string  `json:"wallet_id"`
	Timestamp            string  `json:"timestamp"`
	CounterpartyEmail    *string `json:"counterparty_email"`
	CounterpartyWalletID *string `json:"counterparty_wallet_id"`
}

// History is one page of a wallet's ledger.
type History struct {
	Entries []HistoryEntry
	Total   int64
}

type SearchResult struct {
	Email     string `json:"email"`
	WalletID  string `json:"wallet_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Reconciliation compares a stored balance with what the ledger implies.
type Reconciliation struct {
	WalletID      string
	Balance       int64
	LedgerCredits int64
	LedgerDebits  int64
}

// Consistent reports whether the stored balance equals the ledger net.
func (r Reconciliation) Consistent() bool {
	return r.Balance == r.LedgerCredits-r.LedgerDebits
}
