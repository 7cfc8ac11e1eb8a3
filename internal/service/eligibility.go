package service

import "subsidy-wallet-service/internal/core/ports"

// DenylistPolicy implements ports.EligibilityPolicy as a policy table:
// a fixed set of program ids is denied, everything else is eligible.
// There is no real eligibility computation behind it.
type DenylistPolicy struct {
	denied map[string]struct{}
}

// NewDenylistPolicy creates a policy denying the given program ids.
func NewDenylistPolicy(denied []string) *DenylistPolicy {
	m := make(map[string]struct{}, len(denied))
	for _, id := range denied {
		m[id] = struct{}{}
	}
	return &DenylistPolicy{denied: m}
}

// Eligible returns false for denied programs, true otherwise.
func (p *DenylistPolicy) Eligible(subsidyID string) bool {
	_, denied := p.denied[subsidyID]
	return !denied
}

// PolicyFunc adapts a plain function to ports.EligibilityPolicy.
type PolicyFunc func(subsidyID string) bool

func (f PolicyFunc) Eligible(subsidyID string) bool { return f(subsidyID) }

var _ ports.EligibilityPolicy = (*DenylistPolicy)(nil)
var _ ports.EligibilityPolicy = (PolicyFunc)(nil)
