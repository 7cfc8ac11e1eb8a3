package domain

// SubsidyStatus represents the lifecycle state of a subsidy grant.
type SubsidyStatus string

const (
	SubsidyStatusAvailable  SubsidyStatus = "AVAILABLE_TO_CLAIM"
	SubsidyStatusClaimed    SubsidyStatus = "CLAIMED"
	SubsidyStatusIneligible SubsidyStatus = "INELIGIBLE"
)

// Subsidy represents a government aid program with a fixed grant ceiling.
// Amounts are whole RM units.
type Subsidy struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Amount      int64         `json:"amount"`
	Spent       int64         `json:"spent"`
	Status      SubsidyStatus `json:"status"`
}

// Remaining returns the unspent portion of the grant.
func (s *Subsidy) Remaining() int64 {
	return s.Amount - s.Spent
}

// IsClaimed returns true if the grant balance has been activated for spending.
func (s *Subsidy) IsClaimed() bool {
	return s.Status == SubsidyStatusClaimed
}

// LedgerSnapshot is a read-only view of all subsidy programs plus the
// derived total balance: the sum of remaining amounts over claimed programs.
type LedgerSnapshot struct {
	Programs     []Subsidy `json:"programs"`
	TotalBalance int64     `json:"total_balance"`
}

// BuildSnapshot assembles a snapshot from program records, computing the
// derived total balance. The caller passes already-copied records; the
// snapshot does not alias store state.
func BuildSnapshot(programs []Subsidy) LedgerSnapshot {
	var total int64
	for i := range programs {
		if programs[i].IsClaimed() {
			total += programs[i].Remaining()
		}
	}
	return LedgerSnapshot{Programs: programs, TotalBalance: total}
}
