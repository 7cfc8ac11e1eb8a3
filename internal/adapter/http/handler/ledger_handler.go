package handler

import (
	"subsidy-wallet-service/internal/adapter/http/dto"
	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles the ledger snapshot endpoint.
type LedgerHandler struct {
	ledger ports.LedgerStore
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger ports.LedgerStore) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// GetLedger handles GET /api/v1/ledger.
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	response.OK(c, dto.FromSnapshot(h.ledger.Snapshot()))
}
