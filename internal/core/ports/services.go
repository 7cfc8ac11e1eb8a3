package ports

import (
	"context"
	"time"

	"subsidy-wallet-service/internal/core/domain"

	"github.com/google/uuid"
)

// TokenService handles session token operations.
type TokenService interface {
	Generate(cardNumber string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed session token claims.
type TokenClaims struct {
	CardNumber string
}

// EligibilityPolicy decides claim eligibility per program. It is a policy
// table, not a real computation: the default policy denies a fixed set of
// program ids and allows everything else.
type EligibilityPolicy interface {
	Eligible(subsidyID string) bool
}

// SessionService is the session gate: it flips the authenticated flag on a
// verified identity scan and issues the token the routing layer checks.
type SessionService interface {
	// Login verifies a simulated identity-card scan and starts a session.
	Login(ctx context.Context, card domain.IdentityCard) (*LoginResult, error)
	// Logout unconditionally clears the session flag.
	Logout(ctx context.Context)
	// Authenticated reports the current session state.
	Authenticated() bool
}

// LoginResult holds the issued session token and the verified holder.
type LoginResult struct {
	Token      string
	ExpiresAt  time.Time
	CardNumber string
	HolderName string
}

// IdentityService simulates the identity-card scan hardware.
type IdentityService interface {
	// Scan simulates reading a card, returning mock card data after the
	// configured scan delay.
	Scan(ctx context.Context) (*domain.IdentityCard, error)
	// Verify checks a scan payload's format.
	Verify(card domain.IdentityCard) error
}

// TransactionService orchestrates the simulated multi-phase claim and
// spend flows against the ledger store.
type TransactionService interface {
	// InitiateClaim starts a claim flow for the program. The returned
	// transaction is in its initial CHECKING phase; the flow advances
	// asynchronously through the simulated delays.
	InitiateClaim(ctx context.Context, subsidyID string) (*domain.Transaction, error)
	// InitiateSpend validates the request synchronously (amount > 0,
	// amount <= remaining, program claimed, merchant accepts it) and then
	// starts the simulated settlement. Validation failures return an error
	// without starting a flow or consuming a delay.
	InitiateSpend(ctx context.Context, req SpendRequest) (*domain.Transaction, error)
	// Get returns the current state of a transaction instance.
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// Cancel dismisses a transaction before its terminal phase. An
	// already-applied ledger mutation is never rolled back; cancellation
	// before the settlement edge guarantees no mutation happens.
	Cancel(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// Dismiss drops a terminal transaction from the active registry after
	// the user closes the outcome dialog. The cached outcome remains
	// fetchable until its TTL expires.
	Dismiss(ctx context.Context, id uuid.UUID) error
}

// SpendRequest holds validated input for a spend flow.
type SpendRequest struct {
	SubsidyID    string
	Amount       int64
	MerchantCode string
}
