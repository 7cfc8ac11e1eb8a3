package ports

import (
	"context"
	"time"

	"subsidy-wallet-service/internal/core/domain"
)

// LedgerStore is the single source of truth for subsidy state and the
// session flag. All operations are atomic with respect to each other.
type LedgerStore interface {
	// Snapshot returns a deep copy of all program records plus the derived
	// total balance. No side effects.
	Snapshot() domain.LedgerSnapshot
	// Get returns a copy of one program record, or apperror.ErrSubsidyNotFound.
	Get(id string) (domain.Subsidy, error)
	// MarkClaimed overwrites the program status to CLAIMED. It returns
	// NotFound for an unknown id; re-claiming an already-claimed program is
	// a permitted no-op in effect.
	MarkClaimed(id string) error
	// MarkIneligible moves the program into its terminal INELIGIBLE state.
	MarkIneligible(id string) error
	// RecordSpend adds amount to the program's spent counter. It returns
	// InvalidAmount when amount <= 0 or amount > remaining, and NotFound
	// for an unknown id. The spent <= amount invariant is enforced here as
	// well as by callers.
	RecordSpend(id string, amount int64) error
	// SetAuthenticated sets the session flag. Always succeeds.
	SetAuthenticated(v bool)
	// Authenticated reads the session flag.
	Authenticated() bool
	// Reset reseeds the store from its catalog and clears the session flag.
	Reset()
}

// MerchantDirectory resolves mock merchants for the spending flow.
type MerchantDirectory interface {
	// Lookup simulates a QR scan: it returns the merchant for a code after
	// the configured scan delay, or apperror.ErrMerchantNotFound.
	Lookup(ctx context.Context, code string) (*domain.Merchant, error)
	// Get resolves a merchant immediately, without the scan delay.
	Get(code string) (*domain.Merchant, error)
}

// OutcomeCache stores terminal transaction outcomes so a client can fetch
// the result of a finished flow after reconnecting. Entries are ephemeral.
type OutcomeCache interface {
	// Get returns the cached outcome JSON, or nil, nil when absent.
	Get(ctx context.Context, txID string) ([]byte, error)
	Set(ctx context.Context, txID string, value []byte, ttl time.Duration) error
}

// Notifier publishes outbound events for the UI: a fresh ledger snapshot
// after every mutation, and every transaction phase transition.
type Notifier interface {
	PublishSnapshot(snapshot domain.LedgerSnapshot)
	PublishPhase(tx domain.Transaction)
}
