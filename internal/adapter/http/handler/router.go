package handler

import (
	"digital-payment-service/internal/adapter/http/middleware"
	redisStore "digital-payment-service/internal/adapter/storage/redis"
	"digital-payment-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	PaymentSvc     ports.PaymentService
	WebhookSvc     ports.WebhookService
	TokenSvc       ports.TokenService
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
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

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

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	optionalAuth := middleware.OptionalJWTAuth(deps.TokenSvc, deps.Logger)

	v1 := r.Group("/api/v1")

	// Creation accepts anonymous buyers; the payment is claimed at verification.
	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	payments := v1.Group("/payments")
	{
		payments.POST("", optionalAuth, rl("payments_create"), paymentHandler.Create)
		payments.POST("/:id/verify", jwtAuth, rl("payments_verify"), paymentHandler.Verify)
		payments.POST("/:id/cancel", jwtAuth, rl("payments_cancel"), paymentHandler.Cancel)
		payments.POST("/:id/refund", jwtAuth, rl("payments_cancel"), paymentHandler.Refund)
		payments.GET("/:id", rl("payments_read"), paymentHandler.Get)
		payments.GET("", jwtAuth, rl("payments_read"), paymentHandler.List)
		payments.PUT("/:id/user", jwtAuth, rl("payments_read"), paymentHandler.Claim)
	}

	// Gateway callbacks (no user auth; payload is validated against the store).
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)
	v1.POST("/webhooks/gateway", rl("webhooks"), webhookHandler.Handle)

	return r
}
