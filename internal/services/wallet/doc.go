/*
Package wallet provides the read side of the ledger and wallet provisioning.

The wallet service handles:
- Balance summaries (cached in redis, dropped after every mutation)
- Transaction history with counterparty details
- Counterparty search by email or wallet ID
- Reconciliation of stored balances against the ledger

Usage:

	// Create a new wallet service
	svc := wallet.NewService(store, summaries, logger)

	// Balance view for the caller
	summary, err := svc.Summary(ctx, caller)

	// Most recent entries first
	history, err := svc.History(ctx, caller, limit, offset)

Money never moves through this package; see package transfer.

Provisioning:

Provision creates the single wallet of a newly registered user inside the
registration transaction, drawing WLT- identifiers until a free one is found.
*/
package wallet
