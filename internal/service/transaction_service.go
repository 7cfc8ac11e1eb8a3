package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"subsidy-wallet-service/internal/core/domain"
	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/internal/metrics"
	"subsidy-wallet-service/pkg/apperror"
	"subsidy-wallet-service/pkg/clock"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Timings holds the simulated phase delays.
type Timings struct {
	EligibilityCheck time.Duration
	Settlement       time.Duration
	Spend            time.Duration
	OutcomeTTL       time.Duration
}

// TransactionServiceImpl implements ports.TransactionService. Each claim
// or spend runs as its own instance through the simulated phases; the
// ledger is mutated exactly once, at the settlement edge, under the
// instance lock so cancellation can never race the mutation.
type TransactionServiceImpl struct {
	ledger    ports.LedgerStore
	policy    ports.EligibilityPolicy
	merchants ports.MerchantDirectory
	notifier  ports.Notifier
	outcomes  ports.OutcomeCache
	clk       clock.Clock
	timings   Timings
	log       zerolog.Logger

	mu  sync.RWMutex
	txs map[uuid.UUID]*txInstance
}

// txInstance guards one flow. The instance mutex serializes the terminal
// transition against Cancel.
type txInstance struct {
	mu        sync.Mutex
	tx        domain.Transaction
	cancelled bool
}

// NewTransactionService creates a new TransactionServiceImpl.
func NewTransactionService(
	ledger ports.LedgerStore,
	policy ports.EligibilityPolicy,
	merchants ports.MerchantDirectory,
	notifier ports.Notifier,
	outcomes ports.OutcomeCache,
	clk clock.Clock,
	timings Timings,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		ledger:    ledger,
		policy:    policy,
		merchants: merchants,
		notifier:  notifier,
		outcomes:  outcomes,
		clk:       clk,
		timings:   timings,
		log:       log,
		txs:       make(map[uuid.UUID]*txInstance),
	}
}

// InitiateClaim starts the claim flow: CHECKING, then either a failure on
// the eligibility policy or SETTLING and the single ledger mutation.
func (s *TransactionServiceImpl) InitiateClaim(ctx context.Context, subsidyID string) (*domain.Transaction, error) {
	program, err := s.ledger.Get(subsidyID)
	if err != nil {
		return nil, err
	}

	inst := &txInstance{
		tx: domain.Transaction{
			ID:        uuid.New(),
			Kind:      domain.TransactionKindClaim,
			SubsidyID: subsidyID,
			Phase:     domain.TransactionPhaseChecking,
			Message:   "Checking eligibility...",
			CreatedAt: s.clk.Now(),
		},
	}
	s.register(inst)
	s.notifier.PublishPhase(inst.tx)

	// Copy before the goroutine starts: the flow writes inst.tx under its
	// own lock from here on.
	out := inst.tx
	go s.runClaim(inst, program)

	return &out, nil
}

// InitiateSpend validates synchronously, then starts the PENDING flow.
// Validation failures return immediately without consuming a delay and
// without mutating the store.
func (s *TransactionServiceImpl) InitiateSpend(ctx context.Context, req ports.SpendRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount("Amount must be greater than zero")
	}

	program, err := s.ledger.Get(req.SubsidyID)
	if err != nil {
		return nil, err
	}
	if !program.IsClaimed() {
		return nil, apperror.ErrNotClaimed(program.Name)
	}

	merchant, err := s.merchants.Get(req.MerchantCode)
	if err != nil {
		return nil, err
	}
	if !merchant.Accepts(req.SubsidyID) {
		return nil, apperror.ErrSubsidyNotAccepted(merchant.Name)
	}

	if req.Amount > program.Remaining() {
		return nil, apperror.ErrInvalidAmount("Amount exceeds remaining balance")
	}

	inst := &txInstance{
		tx: domain.Transaction{
			ID:           uuid.New(),
			Kind:         domain.TransactionKindSpend,
			SubsidyID:    req.SubsidyID,
			Amount:       req.Amount,
			MerchantCode: req.MerchantCode,
			Phase:        domain.TransactionPhasePending,
			Message:      "Please wait while we confirm your transaction.",
			CreatedAt:    s.clk.Now(),
		},
	}
	s.register(inst)
	s.notifier.PublishPhase(inst.tx)

	out := inst.tx
	go s.runSpend(inst, merchant.Name)

	return &out, nil
}

// Get returns a transaction's current state, falling back to the outcome
// cache for flows that finished and were dismissed.
func (s *TransactionServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	inst, ok := s.txs[id]
	s.mu.RUnlock()

	if ok {
		inst.mu.Lock()
		out := inst.tx
		inst.mu.Unlock()
		return &out, nil
	}

	cached, err := s.outcomes.Get(ctx, id.String())
	if err != nil {
		s.log.Warn().Err(err).Str("tx_id", id.String()).Msg("outcome cache lookup failed")
	}
	if cached != nil {
		var tx domain.Transaction
		if err := json.Unmarshal(cached, &tx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("unmarshal cached outcome: %w", err))
		}
		return &tx, nil
	}

	return nil, apperror.ErrTransactionNotFound()
}

// Cancel dismisses an in-flight transaction. The pending phase's effect is
// discarded: the settlement edge checks the flag under the instance lock,
// so no ledger mutation happens after a user-visible cancellation.
func (s *TransactionServiceImpl) Cancel(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	inst, ok := s.txs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrTransactionNotFound()
	}

	inst.mu.Lock()
	if inst.tx.IsTerminal() {
		inst.mu.Unlock()
		return nil, apperror.ErrTransactionFinished()
	}
	inst.cancelled = true
	now := s.clk.Now()
	inst.tx.Phase = domain.TransactionPhaseCancelled
	inst.tx.Message = "Transaction cancelled."
	inst.tx.FinishedAt = &now
	out := inst.tx
	inst.mu.Unlock()

	s.finish(out)
	return &out, nil
}

// Dismiss drops a terminal transaction from the active registry.
func (s *TransactionServiceImpl) Dismiss(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.txs[id]
	if !ok {
		return apperror.ErrTransactionNotFound()
	}

	inst.mu.Lock()
	terminal := inst.tx.IsTerminal()
	inst.mu.Unlock()
	if !terminal {
		return apperror.Validation("Transaction is still in progress")
	}

	delete(s.txs, id)
	return nil
}

func (s *TransactionServiceImpl) runClaim(inst *txInstance, program domain.Subsidy) {
	_ = s.clk.Sleep(context.Background(), s.timings.EligibilityCheck)

	if !s.policy.Eligible(program.ID) {
		s.fail(inst, apperror.ErrIneligible(program.Name))
		return
	}

	if !s.transition(inst, domain.TransactionPhaseSettling, "Submitting claim to ledger...") {
		return
	}

	_ = s.clk.Sleep(context.Background(), s.timings.Settlement)

	inst.mu.Lock()
	if inst.cancelled {
		inst.mu.Unlock()
		return
	}
	if err := s.ledger.MarkClaimed(program.ID); err != nil {
		s.failLocked(inst, err)
		out := inst.tx
		inst.mu.Unlock()
		s.finish(out)
		return
	}
	now := s.clk.Now()
	inst.tx.Phase = domain.TransactionPhaseSuccess
	inst.tx.Reference = newReference()
	inst.tx.Message = fmt.Sprintf("%s claimed successfully.", program.Name)
	inst.tx.FinishedAt = &now
	out := inst.tx
	inst.mu.Unlock()

	s.finish(out)
	s.publishSnapshot()
}

func (s *TransactionServiceImpl) runSpend(inst *txInstance, merchantName string) {
	_ = s.clk.Sleep(context.Background(), s.timings.Spend)

	inst.mu.Lock()
	if inst.cancelled {
		inst.mu.Unlock()
		return
	}
	// Revalidated here: a concurrent spend may have consumed the balance
	// since initiation.
	if err := s.ledger.RecordSpend(inst.tx.SubsidyID, inst.tx.Amount); err != nil {
		s.failLocked(inst, err)
		out := inst.tx
		inst.mu.Unlock()
		s.finish(out)
		return
	}
	now := s.clk.Now()
	inst.tx.Phase = domain.TransactionPhaseSuccess
	inst.tx.Reference = newReference()
	inst.tx.Message = fmt.Sprintf("Paid RM%d to %s", inst.tx.Amount, merchantName)
	inst.tx.FinishedAt = &now
	out := inst.tx
	inst.mu.Unlock()

	s.finish(out)
	s.publishSnapshot()
}

// transition advances a non-terminal, non-cancelled instance and publishes
// the new phase. Returns false if the instance was already cancelled.
func (s *TransactionServiceImpl) transition(inst *txInstance, phase domain.TransactionPhase, message string) bool {
	inst.mu.Lock()
	if inst.cancelled {
		inst.mu.Unlock()
		return false
	}
	inst.tx.Phase = phase
	inst.tx.Message = message
	out := inst.tx
	inst.mu.Unlock()

	s.notifier.PublishPhase(out)
	return true
}

func (s *TransactionServiceImpl) fail(inst *txInstance, err error) {
	inst.mu.Lock()
	if inst.cancelled {
		inst.mu.Unlock()
		return
	}
	s.failLocked(inst, err)
	out := inst.tx
	inst.mu.Unlock()

	s.finish(out)
}

// failLocked records a failure outcome. Caller holds inst.mu.
func (s *TransactionServiceImpl) failLocked(inst *txInstance, err error) {
	now := s.clk.Now()
	inst.tx.Phase = domain.TransactionPhaseFailed
	inst.tx.Message = err.Error()
	inst.tx.FailureCode = "SYS_001"
	if appErr, ok := err.(*apperror.AppError); ok {
		inst.tx.Message = appErr.Message
		inst.tx.FailureCode = appErr.Code
	}
	inst.tx.FinishedAt = &now
}

// finish publishes a terminal phase, caches the outcome, and updates
// metrics.
func (s *TransactionServiceImpl) finish(tx domain.Transaction) {
	s.notifier.PublishPhase(tx)

	metrics.TransactionsTotal.WithLabelValues(string(tx.Kind), string(tx.Phase)).Inc()
	metrics.TransactionsInFlight.Dec()

	outcomeJSON, err := json.Marshal(tx)
	if err != nil {
		s.log.Error().Err(err).Str("tx_id", tx.ID.String()).Msg("marshal outcome")
		return
	}
	// Best effort: a cold cache only means the client cannot re-fetch a
	// dismissed outcome.
	if err := s.outcomes.Set(context.Background(), tx.ID.String(), outcomeJSON, s.timings.OutcomeTTL); err != nil {
		s.log.Warn().Err(err).Str("tx_id", tx.ID.String()).Msg("failed to cache transaction outcome")
	}

	s.log.Info().
		Str("tx_id", tx.ID.String()).
		Str("kind", string(tx.Kind)).
		Str("phase", string(tx.Phase)).
		Str("subsidy_id", tx.SubsidyID).
		Msg("transaction finished")
}

func (s *TransactionServiceImpl) publishSnapshot() {
	snap := s.ledger.Snapshot()
	metrics.LedgerTotalBalance.Set(float64(snap.TotalBalance))
	s.notifier.PublishSnapshot(snap)
}

func (s *TransactionServiceImpl) register(inst *txInstance) {
	s.mu.Lock()
	s.txs[inst.tx.ID] = inst
	s.mu.Unlock()
	metrics.TransactionsInFlight.Inc()
}

// newReference generates the opaque display-only reference token shown on
// success. It has no cryptographic meaning.
func newReference() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "0x000000000000"
	}
	return "0x" + hex.EncodeToString(b)
}
