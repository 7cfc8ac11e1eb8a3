package domain

import "regexp"

// cardNumberPattern matches the national identity card number format:
// six digits, two digits, four digits, dash-separated.
var cardNumberPattern = regexp.MustCompile(`^\d{6}-\d{2}-\d{4}$`)

// IdentityCard holds the fields read from a simulated identity-card scan.
// No real document parsing happens; only the card number format is checked.
type IdentityCard struct {
	CardNumber  string `json:"card_number"`
	Name        string `json:"name"`
	Sex         string `json:"sex,omitempty"`
	BirthDate   string `json:"birth_date"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	State       string `json:"state,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	CardExpiry  string `json:"card_expiry,omitempty"`
	CardStatus  string `json:"card_status,omitempty"`
}

// Valid reports whether the scan payload carries the minimum fields in the
// expected format.
func (c *IdentityCard) Valid() bool {
	return c.Name != "" &&
		c.BirthDate != "" &&
		cardNumberPattern.MatchString(c.CardNumber)
}
