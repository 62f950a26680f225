package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digital-payment-service/internal/adapter/http/middleware"
	redisStore "digital-payment-service/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(store *redisStore.RateLimitStore, rule middleware.RateLimitRule) *gin.Engine {
	r := gin.New()
	r.GET("/limited",
		middleware.RateLimiter(store, "payments_read", rule, zerolog.Nop()),
		func(c *gin.Context) { c.String(http.StatusOK, "ok") },
	)
	return r
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redisStore.NewRateLimitStore(client)
	r := rateLimitedRouter(store, middleware.RateLimitRule{Limit: 2, Window: time.Minute})

	t.Run("allows within limit and sets headers", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/limited", nil)
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("blocks over limit with retry-after", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("store failure degrades open", func(t *testing.T) {
		broken := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		require.NoError(t, broken.Close())
		degraded := rateLimitedRouter(redisStore.NewRateLimitStore(broken), middleware.RateLimitRule{Limit: 1, Window: time.Minute})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		degraded.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestDefaultRateLimitRules_CoverEndpointGroups(t *testing.T) {
	rules := middleware.DefaultRateLimitRules()
	for _, group := range []string{"payments_create", "payments_verify", "payments_cancel", "payments_read", "webhooks"} {
		rule, ok := rules[group]
		require.True(t, ok, group)
		assert.Positive(t, rule.Limit)
		assert.Positive(t, rule.Window)
	}
}
