package service

import (
	"context"
	"fmt"

	"subsidy-wallet-service/internal/core/domain"
	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// SessionServiceImpl implements ports.SessionService. It is the session
// gate: the identity-verification collaborator calls Login on its own
// success signal, and the routing layer checks the issued token on every
// navigation into ledger-consuming routes.
type SessionServiceImpl struct {
	ledger      ports.LedgerStore
	identitySvc ports.IdentityService
	tokenSvc    ports.TokenService
	log         zerolog.Logger
}

// NewSessionService creates a new SessionServiceImpl.
func NewSessionService(
	ledger ports.LedgerStore,
	identitySvc ports.IdentityService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *SessionServiceImpl {
	return &SessionServiceImpl{
		ledger:      ledger,
		identitySvc: identitySvc,
		tokenSvc:    tokenSvc,
		log:         log,
	}
}

// Login verifies the simulated card scan, flips the session flag, and
// issues a session token. No credential verification happens beyond the
// payload format check — the scan itself is the credential.
func (s *SessionServiceImpl) Login(ctx context.Context, card domain.IdentityCard) (*ports.LoginResult, error) {
	if err := s.identitySvc.Verify(card); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokenSvc.Generate(card.CardNumber)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate session token: %w", err))
	}

	s.ledger.SetAuthenticated(true)

	s.log.Info().
		Str("card_number", card.CardNumber).
		Msg("identity verified, session started")

	return &ports.LoginResult{
		Token:      token,
		ExpiresAt:  expiresAt,
		CardNumber: card.CardNumber,
		HolderName: card.Name,
	}, nil
}

// Logout unconditionally clears the session flag.
func (s *SessionServiceImpl) Logout(ctx context.Context) {
	s.ledger.SetAuthenticated(false)
	s.log.Info().Msg("session ended")
}

// Authenticated reports the current session state.
func (s *SessionServiceImpl) Authenticated() bool {
	return s.ledger.Authenticated()
}
