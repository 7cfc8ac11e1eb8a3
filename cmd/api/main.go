package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subsidy-wallet-service/config"
	httpHandler "subsidy-wallet-service/internal/adapter/http/handler"
	"subsidy-wallet-service/internal/adapter/storage/memory"
	redisStorage "subsidy-wallet-service/internal/adapter/storage/redis"
	"subsidy-wallet-service/internal/adapter/ws"
	"subsidy-wallet-service/internal/core/ports"
	"subsidy-wallet-service/internal/service"
	"subsidy-wallet-service/pkg/clock"
	"subsidy-wallet-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Subsidy Wallet Service")

	ctx := context.Background()

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// In-memory ledger seeded from the configured catalog
	ledgerStore := memory.NewLedgerStore(cfg.CatalogSubsidies())

	// Redis-backed stores (ephemeral only: rate limits and outcome cache)
	outcomeCache := redisStorage.NewOutcomeCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Websocket event hub
	hub := ws.NewHub(logger.Component(log, "ws"))
	defer hub.Close()

	// Core services
	clk := clock.Real{}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	identitySvc := service.NewMockIdentityService(clk, cfg.Simulator.ScanDelay, logger.Component(log, "identity"))
	merchantDir := service.NewStaticMerchantDirectory(clk, cfg.Simulator.ScanDelay, cfg.DirectoryMerchants())
	policy := service.NewDenylistPolicy(cfg.Simulator.DeniedPrograms)

	sessionSvc := service.NewSessionService(ledgerStore, identitySvc, tokenSvc, logger.Component(log, "session"))
	transactionSvc := service.NewTransactionService(
		ledgerStore,
		policy,
		merchantDir,
		hub,
		outcomeCache,
		clk,
		service.Timings{
			EligibilityCheck: cfg.Simulator.EligibilityCheckDelay,
			Settlement:       cfg.Simulator.SettlementDelay,
			Spend:            cfg.Simulator.SpendDelay,
			OutcomeTTL:       cfg.Simulator.OutcomeTTL,
		},
		logger.Component(log, "simulator"),
	)

	// Health checkers
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		SessionSvc:     sessionSvc,
		IdentitySvc:    identitySvc,
		TransactionSvc: transactionSvc,
		MerchantDir:    merchantDir,
		LedgerStore:    ledgerStore,
		TokenSvc:       tokenSvc,
		Hub:            hub,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
