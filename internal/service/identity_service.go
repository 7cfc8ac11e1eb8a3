package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"subsidy-wallet-service/internal/core/domain"
	"subsidy-wallet-service/pkg/apperror"
	"subsidy-wallet-service/pkg/clock"

	"github.com/rs/zerolog"
)

// MockIdentityService implements ports.IdentityService. There is no card
// reader behind it: Scan fabricates plausible card data after the
// configured delay, and Verify only checks the payload format.
type MockIdentityService struct {
	clk       clock.Clock
	scanDelay time.Duration
	log       zerolog.Logger
}

var (
	mockNames  = []string{"AHMAD IBRAHIM", "SITI NURHALIZA", "MUHAMMAD AZHAR", "NURUL AISYAH"}
	mockCities = []string{"KUALA LUMPUR", "SHAH ALAM", "SELANGOR", "PETALING JAYA"}
	mockStates = []string{"WILAYAH PERSEKUTUAN", "SELANGOR", "JOHOR", "PENANG"}
)

// NewMockIdentityService creates the simulated card reader.
func NewMockIdentityService(clk clock.Clock, scanDelay time.Duration, log zerolog.Logger) *MockIdentityService {
	return &MockIdentityService{clk: clk, scanDelay: scanDelay, log: log}
}

// Scan simulates reading an identity card.
func (s *MockIdentityService) Scan(ctx context.Context) (*domain.IdentityCard, error) {
	if err := s.clk.Sleep(ctx, s.scanDelay); err != nil {
		return nil, err
	}

	card := randomCard()
	s.log.Debug().Str("card_number", card.CardNumber).Msg("simulated card scan complete")
	return card, nil
}

// Verify checks the scan payload format.
func (s *MockIdentityService) Verify(card domain.IdentityCard) error {
	if !card.Valid() {
		return apperror.ErrInvalidCard()
	}
	return nil
}

func randomCard() *domain.IdentityCard {
	cardNumber := fmt.Sprintf("%06d-%02d-%04d",
		rand.Intn(900000)+100000,
		rand.Intn(90)+10,
		rand.Intn(9000)+1000,
	)
	sex := "FEMALE"
	if rand.Intn(2) == 0 {
		sex = "MALE"
	}
	return &domain.IdentityCard{
		CardNumber:  cardNumber,
		Name:        mockNames[rand.Intn(len(mockNames))],
		Sex:         sex,
		BirthDate:   fmt.Sprintf("%02d-%02d-%d", rand.Intn(28)+1, rand.Intn(12)+1, rand.Intn(40)+1960),
		Address:     "NO 123, JALAN MERDEKA",
		City:        mockCities[rand.Intn(len(mockCities))],
		Postcode:    fmt.Sprintf("%05d", rand.Intn(40000)+50000),
		State:       mockStates[rand.Intn(len(mockStates))],
		Nationality: "WARGANEGARA",
		CardExpiry:  fmt.Sprintf("%02d-%02d-%d", rand.Intn(28)+1, rand.Intn(12)+1, rand.Intn(10)+2030),
		CardStatus:  "ACTIVE",
	}
}
