package handler

import (
	"subsidy-wallet-service/internal/adapter/http/dto"
	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/pkg/apperror"
	"subsidy-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles the claim and spend flow endpoints.
type TransactionHandler struct {
	txSvc ports.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txSvc ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc}
}

// CreateClaim handles POST /api/v1/transactions/claims. The flow advances
// asynchronously; the 202 body carries the transaction in its initial phase.
func (h *TransactionHandler) CreateClaim(c *gin.Context) {
	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	tx, err := h.txSvc.InitiateClaim(c.Request.Context(), req.SubsidyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, dto.FromTransaction(tx))
}

// CreateSpend handles POST /api/v1/transactions/spends.
func (h *TransactionHandler) CreateSpend(c *gin.Context) {
	var req dto.SpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	tx, err := h.txSvc.InitiateSpend(c.Request.Context(), ports.SpendRequest{
		SubsidyID:    req.SubsidyID,
		Amount:       req.Amount,
		MerchantCode: req.MerchantCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, dto.FromTransaction(tx))
}

// GetTransaction handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid transaction id"))
		return
	}

	tx, err := h.txSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransaction(tx))
}

// CancelTransaction handles POST /api/v1/transactions/:id/cancel.
func (h *TransactionHandler) CancelTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid transaction id"))
		return
	}

	tx, err := h.txSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransaction(tx))
}

// DismissTransaction handles DELETE /api/v1/transactions/:id — drops a
// finished transaction from the active registry once the client has shown
// its outcome.
func (h *TransactionHandler) DismissTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid transaction id"))
		return
	}

	if err := h.txSvc.Dismiss(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"dismissed": true})
}
