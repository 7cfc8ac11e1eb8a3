package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind represents the kind of ledger operation.
type TransactionKind string

const (
	TransactionKindClaim TransactionKind = "CLAIM"
	TransactionKindSpend TransactionKind = "SPEND"
)

// TransactionPhase represents the lifecycle phase of a simulated transaction.
type TransactionPhase string

const (
	TransactionPhaseIdle      TransactionPhase = "IDLE"
	TransactionPhaseChecking  TransactionPhase = "CHECKING"
	TransactionPhasePending   TransactionPhase = "PENDING"
	TransactionPhaseSettling  TransactionPhase = "SETTLING"
	TransactionPhaseSuccess   TransactionPhase = "SUCCESS"
	TransactionPhaseFailed    TransactionPhase = "FAILED"
	TransactionPhaseCancelled TransactionPhase = "CANCELLED"
)

// Transaction represents one simulated claim or spend flow. The ledger is
// mutated exactly once, at the transition into SUCCESS; failure and
// cancellation paths never touch it.
type Transaction struct {
	ID           uuid.UUID        `json:"id"`
	Kind         TransactionKind  `json:"kind"`
	SubsidyID    string           `json:"subsidy_id"`
	Amount       int64            `json:"amount,omitempty"` // zero for claims
	MerchantCode string           `json:"merchant_code,omitempty"`
	Phase        TransactionPhase `json:"phase"`
	Message      string           `json:"message"`
	Reference    string           `json:"reference,omitempty"` // display-only token, set on success
	FailureCode  string           `json:"failure_code,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	FinishedAt   *time.Time       `json:"finished_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final phase.
func (t *Transaction) IsTerminal() bool {
	return t.Phase == TransactionPhaseSuccess ||
		t.Phase == TransactionPhaseFailed ||
		t.Phase == TransactionPhaseCancelled
}

// Succeeded returns true if the transaction settled and mutated the ledger.
func (t *Transaction) Succeeded() bool {
	return t.Phase == TransactionPhaseSuccess
}
