package handler

import (
	"subsidy-wallet-service/internal/adapter/http/dto"
	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/pkg/apperror"
	"subsidy-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// MerchantHandler handles the mock merchant QR scan endpoint.
type MerchantHandler struct {
	directory ports.MerchantDirectory
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(directory ports.MerchantDirectory) *MerchantHandler {
	return &MerchantHandler{directory: directory}
}

// Scan handles GET /api/v1/merchants/scan?code=... — resolves a merchant
// QR code after the simulated scan delay.
func (h *MerchantHandler) Scan(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.Error(c, apperror.Validation("Merchant code is required"))
		return
	}

	merchant, err := h.directory.Lookup(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromMerchant(merchant))
}
