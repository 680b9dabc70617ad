package middleware

import (
	"errors"
	"net/http"
	"time"

	"backend/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit throttles an operation per caller IP with a fixed one-minute
// window. Redis failures fail open: a cache outage must not lock every
// caller out of login.
func RateLimit(limiter *ratelimit.Limiter, op string, perMinute int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "throttle:" + op + ":" + c.ClientIP()
		err := limiter.Allow(c.Request.Context(), key, perMinute, time.Minute)
		if err != nil {
			if errors.Is(err, ratelimit.ErrRateLimited) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Request was throttled. Try again later."})
				c.Abort()
				return
			}
			logger.Error("Rate limit check failed", zap.String("op", op), zap.Error(err))
		}
		c.Next()
	}
}
