package middleware

import (
	"net/http"
	"strings"
	"time"

	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/pkg/apperror"
	"subsidy-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Context keys
	CtxRequestID  = "request_id"
	CtxCardNumber = "card_number"
)

// RequestID assigns each request an id for the response envelope and logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(CtxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// SessionAuth guards the ledger-consuming routes. A request passes only
// when it carries a valid session token AND the session gate is open; a
// logout closes the gate for every outstanding token.
func SessionAuth(sessionSvc ports.SessionService, tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Error(c, apperror.ErrNotAuthenticated())
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		if !sessionSvc.Authenticated() {
			response.Error(c, apperror.ErrNotAuthenticated())
			c.Abort()
			return
		}

		c.Set(CtxCardNumber, claims.CardNumber)
		c.Next()
	}
}

// WSAuth authenticates websocket upgrade requests. Browsers cannot set an
// Authorization header on the upgrade, so the token rides a query param. The
// session gate applies here the same as on REST routes: logout closes the
// event feed even for tokens that are still valid.
func WSAuth(sessionSvc ports.SessionService, tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tokenSvc.Validate(c.Query("token"))
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}
		if !sessionSvc.Authenticated() {
			response.Error(c, apperror.ErrNotAuthenticated())
			c.Abort()
			return
		}
		c.Set(CtxCardNumber, claims.CardNumber)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
