package middleware

import (
	"net/http"

	"github.com/Miraines/rbac-auth-service/internal/infra/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimitPerIP keys the limiter by gin's resolved client address. Forwarded
// headers only count when the engine trusts the peer (SetTrustedProxies).
func RateLimitPerIP(limiter *ratelimit.PerKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
