// Package memory holds the in-memory ledger store. The wallet is a mock:
// all subsidy state lives in process memory, seeded from a fixed catalog,
// and is reset only by process restart (or an explicit Reset).
package memory

import (
	"sync"

	"subsidy-wallet-service/internal/core/domain"
	"subsidy-wallet-service/pkg/apperror"
)

// LedgerStore implements ports.LedgerStore. Every operation takes the
// store mutex, so each mutation is atomic and snapshots never observe a
// half-applied update.
type LedgerStore struct {
	mu            sync.RWMutex
	catalog       []domain.Subsidy
	programs      []domain.Subsidy
	authenticated bool
}

// NewLedgerStore creates a store seeded from the given catalog. The
// catalog is copied; later mutations never touch the seed data.
func NewLedgerStore(catalog []domain.Subsidy) *LedgerStore {
	s := &LedgerStore{catalog: cloneSubsidies(catalog)}
	s.programs = cloneSubsidies(catalog)
	return s
}

// Snapshot returns a deep copy of all records plus the derived total balance.
func (s *LedgerStore) Snapshot() domain.LedgerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.BuildSnapshot(cloneSubsidies(s.programs))
}

// Get returns a copy of a single program record.
func (s *LedgerStore) Get(id string) (domain.Subsidy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.programs {
		if s.programs[i].ID == id {
			return s.programs[i], nil
		}
	}
	return domain.Subsidy{}, apperror.ErrSubsidyNotFound(id)
}

// MarkClaimed overwrites the program status to CLAIMED. Re-claiming an
// already-claimed program is a no-op in effect: the status is simply
// overwritten and spent/amount are untouched.
func (s *LedgerStore) MarkClaimed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.programs {
		if s.programs[i].ID == id {
			s.programs[i].Status = domain.SubsidyStatusClaimed
			return nil
		}
	}
	return apperror.ErrSubsidyNotFound(id)
}

// MarkIneligible moves the program into its terminal INELIGIBLE state.
func (s *LedgerStore) MarkIneligible(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.programs {
		if s.programs[i].ID == id {
			s.programs[i].Status = domain.SubsidyStatusIneligible
			return nil
		}
	}
	return apperror.ErrSubsidyNotFound(id)
}

// RecordSpend adds amount to the program's spent counter. The store
// enforces spent <= amount even though callers validate first, so no call
// sequence can break the invariant.
func (s *LedgerStore) RecordSpend(id string, amount int64) error {
	if amount <= 0 {
		return apperror.ErrInvalidAmount("Amount must be greater than zero")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.programs {
		if s.programs[i].ID != id {
			continue
		}
		if amount > s.programs[i].Remaining() {
			return apperror.ErrInvalidAmount("Amount exceeds remaining balance")
		}
		s.programs[i].Spent += amount
		return nil
	}
	return apperror.ErrSubsidyNotFound(id)
}

// SetAuthenticated sets the session flag. No validation; always succeeds.
func (s *LedgerStore) SetAuthenticated(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = v
}

// Authenticated reads the session flag.
func (s *LedgerStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Reset reseeds the store from its catalog and clears the session flag.
func (s *LedgerStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs = cloneSubsidies(s.catalog)
	s.authenticated = false
}

func cloneSubsidies(in []domain.Subsidy) []domain.Subsidy {
	out := make([]domain.Subsidy, len(in))
	copy(out, in)
	return out
}
