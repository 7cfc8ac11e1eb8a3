package handler

import (
	"net/http"

	"subsidy-wallet-service/internal/adapter/http/dto"
	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/pkg/apperror"
	"subsidy-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles the identity-verification and session endpoints.
type AuthHandler struct {
	sessionSvc  ports.SessionService
	identitySvc ports.IdentityService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessionSvc ports.SessionService, identitySvc ports.IdentityService) *AuthHandler {
	return &AuthHandler{sessionSvc: sessionSvc, identitySvc: identitySvc}
}

// Scan handles GET /api/v1/auth/scan — simulates reading an identity card
// and returns the mock card payload the client then submits to Verify.
func (h *AuthHandler) Scan(c *gin.Context) {
	card, err := h.identitySvc.Scan(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromCard(card))
}

// Verify handles POST /api/v1/auth/verify — the card scan payload is the
// credential; a valid payload opens the session gate and issues a token.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.sessionSvc.Login(c.Request.Context(), req.Card())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.VerifyResponse{
		Token:      result.Token,
		Expiry:     result.ExpiresAt.Unix(),
		CardNumber: result.CardNumber,
		HolderName: result.HolderName,
	})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessionSvc.Logout(c.Request.Context())
	response.OK(c, gin.H{"logged_out": true})
}

// HealthCheck handles GET /health — verifies external dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
