package service

import (
	"context"
	"time"

	"subsidy-wallet-service/internal/core/domain"
	"subsidy-wallet-service/pkg/apperror"
	"subsidy-wallet-service/pkg/clock"
)

// StaticMerchantDirectory implements ports.MerchantDirectory over a fixed
// seed list. Lookup simulates the QR scan delay before resolving.
type StaticMerchantDirectory struct {
	clk       clock.Clock
	scanDelay time.Duration
	merchants map[string]domain.Merchant
}

// NewStaticMerchantDirectory creates a directory from seed merchants.
func NewStaticMerchantDirectory(clk clock.Clock, scanDelay time.Duration, merchants []domain.Merchant) *StaticMerchantDirectory {
	m := make(map[string]domain.Merchant, len(merchants))
	for _, merchant := range merchants {
		m[merchant.Code] = merchant
	}
	return &StaticMerchantDirectory{clk: clk, scanDelay: scanDelay, merchants: m}
}

// Lookup resolves a merchant QR code after the simulated scan delay.
func (d *StaticMerchantDirectory) Lookup(ctx context.Context, code string) (*domain.Merchant, error) {
	if err := d.clk.Sleep(ctx, d.scanDelay); err != nil {
		return nil, err
	}

	merchant, ok := d.merchants[code]
	if !ok {
		return nil, apperror.ErrMerchantNotFound(code)
	}
	return &merchant, nil
}

// Get resolves a merchant without the scan delay. Used by the spend flow
// for validation.
func (d *StaticMerchantDirectory) Get(code string) (*domain.Merchant, error) {
	merchant, ok := d.merchants[code]
	if !ok {
		return nil, apperror.ErrMerchantNotFound(code)
	}
	return &merchant, nil
}
