package httpapi

import (
	"net/http"
	"time"

	"callboard/pkg/logger"
	"callboard/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig caps mutation traffic per client. Reads are uncapped; the
// board polls them.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	out := c
	if out.Limit <= 0 {
		out.Limit = 60
	}
	if out.Window <= 0 {
		out.Window = time.Minute
	}
	return out
}

// RateLimit returns middleware enforcing a per-client-IP fixed window via
// redis. Limiter trouble fails open: a broken redis must not take the board's
// mutations down with it.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		key := "callboard:ratelimit:" + c.ClientIP()
		ok, err := utils.AllowRate(c.Request.Context(), rdb, key, cfg.Limit, cfg.Window)
		if err != nil {
			logger.FromGin(c).Warn("rate limiter unavailable", "err", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
