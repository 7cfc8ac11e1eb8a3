package dto

import (
	"time"

	"subsidy-wallet-service/internal/core/domain"
)

// VerifyRequest is the request body for identity verification. The payload
// mirrors a simulated identity-card scan.
type VerifyRequest struct {
	CardNumber  string `json:"card_number" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Sex         string `json:"sex,omitempty"`
	BirthDate   string `json:"birth_date" binding:"required"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	State       string `json:"state,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	CardExpiry  string `json:"card_expiry,omitempty"`
	CardStatus  string `json:"card_status,omitempty"`
}

// Card converts the request payload to the domain type.
func (r VerifyRequest) Card() domain.IdentityCard {
	return domain.IdentityCard{
		CardNumber:  r.CardNumber,
		Name:        r.Name,
		Sex:         r.Sex,
		BirthDate:   r.BirthDate,
		Address:     r.Address,
		City:        r.City,
		Postcode:    r.Postcode,
		State:       r.State,
		Nationality: r.Nationality,
		CardExpiry:  r.CardExpiry,
		CardStatus:  r.CardStatus,
	}
}

// VerifyResponse is the response body for a started session.
type VerifyResponse struct {
	Token      string `json:"token"`
	Expiry     int64  `json:"expiry"` // Unix timestamp
	CardNumber string `json:"card_number"`
	HolderName string `json:"holder_name"`
}

// ClaimRequest is the request body for starting a claim flow.
type ClaimRequest struct {
	SubsidyID string `json:"subsidy_id" binding:"required"`
}

// SpendRequest is the request body for starting a spend flow.
type SpendRequest struct {
	SubsidyID    string `json:"subsidy_id" binding:"required"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	MerchantCode string `json:"merchant_code" binding:"required"`
}

// TransactionResponse is the response body for transaction state.
type TransactionResponse struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	SubsidyID    string  `json:"subsidy_id"`
	Amount       int64   `json:"amount,omitempty"`
	MerchantCode string  `json:"merchant_code,omitempty"`
	Phase        string  `json:"phase"`
	Message      string  `json:"message"`
	Reference    string  `json:"reference,omitempty"`
	FailureCode  string  `json:"failure_code,omitempty"`
	CreatedAt    string  `json:"created_at"`
	FinishedAt   *string `json:"finished_at,omitempty"`
}

// FromTransaction maps a domain transaction to its response shape.
func FromTransaction(tx *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           tx.ID.String(),
		Kind:         string(tx.Kind),
		SubsidyID:    tx.SubsidyID,
		Amount:       tx.Amount,
		MerchantCode: tx.MerchantCode,
		Phase:        string(tx.Phase),
		Message:      tx.Message,
		Reference:    tx.Reference,
		FailureCode:  tx.FailureCode,
		CreatedAt:    tx.CreatedAt.UTC().Format(time.RFC3339),
	}
	if tx.FinishedAt != nil {
		finished := tx.FinishedAt.UTC().Format(time.RFC3339)
		resp.FinishedAt = &finished
	}
	return resp
}

// SubsidyResponse is one program record in the ledger response.
type SubsidyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Amount      int64  `json:"amount"`
	Spent       int64  `json:"spent"`
	Remaining   int64  `json:"remaining"`
	Status      string `json:"status"`
}

// LedgerResponse is the response body for the ledger snapshot.
type LedgerResponse struct {
	Programs     []SubsidyResponse `json:"programs"`
	TotalBalance int64             `json:"total_balance"`
}

// FromSnapshot maps a ledger snapshot to its response shape.
func FromSnapshot(snap domain.LedgerSnapshot) LedgerResponse {
	resp := LedgerResponse{
		Programs:     make([]SubsidyResponse, 0, len(snap.Programs)),
		TotalBalance: snap.TotalBalance,
	}
	for _, p := range snap.Programs {
		resp.Programs = append(resp.Programs, SubsidyResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Amount:      p.Amount,
			Spent:       p.Spent,
			Remaining:   p.Remaining(),
			Status:      string(p.Status),
		})
	}
	return resp
}

// MerchantResponse is the response body for a resolved merchant.
type MerchantResponse struct {
	Code              string   `json:"code"`
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	AcceptedSubsidies []string `json:"accepted_subsidies"`
}

// FromMerchant maps a domain merchant to its response shape.
func FromMerchant(m *domain.Merchant) MerchantResponse {
	return MerchantResponse{
		Code:              m.Code,
		Name:              m.Name,
		Location:          m.Location,
		AcceptedSubsidies: m.AcceptedSubsidies,
	}
}

// CardResponse is the response body for a simulated identity-card scan.
type CardResponse struct {
	CardNumber  string `json:"card_number"`
	Name        string `json:"name"`
	Sex         string `json:"sex"`
	BirthDate   string `json:"birth_date"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Postcode    string `json:"postcode"`
	State       string `json:"state"`
	Nationality string `json:"nationality"`
	CardExpiry  string `json:"card_expiry"`
	CardStatus  string `json:"card_status"`
}

// FromCard maps a scanned card to its response shape.
func FromCard(card *domain.IdentityCard) CardResponse {
	return CardResponse{
		CardNumber:  card.CardNumber,
		Name:        card.Name,
		Sex:         card.Sex,
		BirthDate:   card.BirthDate,
		Address:     card.Address,
		City:        card.City,
		Postcode:    card.Postcode,
		State:       card.State,
		Nationality: card.Nationality,
		CardExpiry:  card.CardExpiry,
		CardStatus:  card.CardStatus,
	}
}
