package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// Max 20 ajouts au panier par minute
	CartAddMaxRequests = 20
	CartAddWindow      = 1 * time.Minute
)

// RateCounter est satisfait par cache.RedisCache
type RateCounter interface {
	Count(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// CartRateLimit limite les ajouts au panier (anti-spam) par cart_id
func CartRateLimit(counter RateCounter, max int64, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		cartID := CartID(c)
		if cartID == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "cart_add:" + cartID

		requests, err := counter.Count(ctx, key)
		if err != nil {
			// Redis indisponible : on laisse passer plutôt que bloquer le panier
			log.Warn("⚠️ Rate limit indisponible", zap.Error(err))
			c.Next()
			return
		}
		if requests >= max {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many cart additions, slow down",
				"retry_after": int(window.Seconds()),
			})
			c.Abort()
			return
		}

		if _, err := counter.Increment(ctx, key, window); err != nil {
			log.Warn("⚠️ Incrément rate limit impossible", zap.Error(err))
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max-requests-1))

		c.Next()
	}
}
