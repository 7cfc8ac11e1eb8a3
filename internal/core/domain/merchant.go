package domain

// Merchant represents a mock acceptance point for subsidy spending.
// There is no real merchant network; the directory is seeded at startup.
type Merchant struct {
	Code              string   `json:"code"`
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	AcceptedSubsidies []string `json:"accepted_subsidies"`
}

// Accepts returns true if the merchant takes payment from the given program.
func (m *Merchant) Accepts(subsidyID string) bool {
	for _, id := range m.AcceptedSubsidies {
		if id == subsidyID {
			return true
		}
	}
	return false
}
