package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digital-payment-service/config"
	fxClient "digital-payment-service/internal/adapter/fx"
	gatewayClient "digital-payment-service/internal/adapter/gateway"
	httpHandler "digital-payment-service/internal/adapter/http/handler"
	pgStorage "digital-payment-service/internal/adapter/storage/postgres"
	redisStorage "digital-payment-service/internal/adapter/storage/redis"
	"digital-payment-service/internal/core/ports"
	"digital-payment-service/internal/service"
	"digital-payment-service/pkg/logger"
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
		Msg("Starting Digital Payment Service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	productRepo := pgStorage.NewProductRepo(pool)
	promotionRepo := pgStorage.NewPromotionRepo(pool)
	exchangeRateRepo := pgStorage.NewExchangeRateRepo(pool)
	webhookEventRepo := pgStorage.NewWebhookEventRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	rateCache := redisStorage.NewRateCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize outbound clients
	httpClient := &http.Client{Timeout: 30 * time.Second}
	gwClient := gatewayClient.NewClient(cfg.Gateway, httpClient, log)
	rateProvider := fxClient.NewClient(cfg.FX, httpClient)

	// Initialize core services
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	exchangeSvc := service.NewExchangeService(exchangeRateRepo, rateCache, rateProvider, cfg.FX, log)
	pricingSvc := service.NewPricingService(promotionRepo, log)

	// Initialize business services
	paymentSvc := service.NewPaymentService(
		paymentRepo,
		productRepo,
		pricingSvc,
		exchangeSvc,
		gwClient,
		transactor,
		cfg.Gateway,
		log,
	)
	webhookSvc := service.NewWebhookService(webhookEventRepo, paymentRepo, paymentSvc, gwClient, cfg.Gateway, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		PaymentSvc:     paymentSvc,
		WebhookSvc:     webhookSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
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
