package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WindowCounter counts hits per key within a fixed window.
type WindowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit rejects clients that exceed limit requests per window. Counter
// failures let the request through.
func RateLimit(counter WindowCounter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := counter.IncrementWindow(c.Request.Context(), c.ClientIP(), window)
		if err != nil {
			c.Next()
			return
		}

		if current > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
