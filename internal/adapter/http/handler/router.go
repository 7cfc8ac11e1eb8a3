package handler

import (
	"subsidy-wallet-service/internal/adapter/http/middleware"
	redisStore "subsidy-wallet-service/internal/adapter/storage/redis"
	"subsidy-wallet-service/internal/adapter/ws"
	"subsidy-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	SessionSvc     ports.SessionService
	IdentitySvc    ports.IdentityService
	TransactionSvc ports.TransactionService
	MerchantDir    ports.MerchantDirectory
	LedgerStore    ports.LedgerStore
	TokenSvc       ports.TokenService
	Hub            *ws.Hub                   // nil = websocket feed disabled
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no session required) ---
	authHandler := NewAuthHandler(deps.SessionSvc, deps.IdentitySvc)
	auth := v1.Group("/auth")
	{
		auth.GET("/scan", rl("auth_verify"), authHandler.Scan)
		auth.POST("/verify", rl("auth_verify"), authHandler.Verify)
		auth.POST("/logout", authHandler.Logout)
	}

	// --- Session-gated routes ---
	sessionAuth := middleware.SessionAuth(deps.SessionSvc, deps.TokenSvc, deps.Logger)

	ledgerHandler := NewLedgerHandler(deps.LedgerStore)
	ledger := v1.Group("/ledger", sessionAuth)
	{
		ledger.GET("", rl("ledger"), ledgerHandler.GetLedger)
	}

	txHandler := NewTransactionHandler(deps.TransactionSvc)
	transactions := v1.Group("/transactions", sessionAuth)
	{
		transactions.POST("/claims", rl("transactions"), txHandler.CreateClaim)
		transactions.POST("/spends", rl("transactions"), txHandler.CreateSpend)
		transactions.GET("/:id", rl("transactions"), txHandler.GetTransaction)
		transactions.POST("/:id/cancel", rl("transactions"), txHandler.CancelTransaction)
		transactions.DELETE("/:id", rl("transactions"), txHandler.DismissTransaction)
	}

	merchantHandler := NewMerchantHandler(deps.MerchantDir)
	merchants := v1.Group("/merchants", sessionAuth)
	{
		merchants.GET("/scan", rl("merchants"), merchantHandler.Scan)
	}

	// --- Websocket event feed ---
	if deps.Hub != nil {
		r.GET("/ws", middleware.WSAuth(deps.SessionSvc, deps.TokenSvc, deps.Logger), deps.Hub.Handle)
	}

	return r
}
