package middleware

import (
	"context"
	"net/http"
	"strings"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/Miraines/rbac-auth-service/internal/infra/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	identityKey = "identity"
)

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (model.Identity, error)
}

// Authenticate resolves the caller and stores it on the context. Any failure
// aborts with 401; store faults abort with 500.
func Authenticate(a Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := a.Authenticate(c.Request.Context(), ExtractToken(c))
		switch {
		case err == nil:
			c.Set(identityKey, ident)
			c.Next()
		case customErrors.IsUnauthenticated(err):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		default:
			log.Error("authentication failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
	}
}

// ExtractToken prefers the bearer header over the access cookie.
func ExtractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if v, err := c.Cookie(AccessCookie); err == nil {
		return v
	}
	return ""
}

func IdentityFrom(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return model.Identity{}, false
	}
	ident, ok := v.(model.Identity)
	return ident, ok
}

// RequirePermissions allows the request only if the identity holds every
// permission in required.
func RequirePermissions(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if missing := Missing(ident, required); len(missing) > 0 {
			metrics.AuthzDeniedTotal.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"missing": missing,
			})
			return
		}
		c.Next()
	}
}

// Missing returns the required permissions the identity lacks, in order.
func Missing(ident model.Identity, required []string) []string {
	if len(required) == 0 {
		return nil
	}
	var missing []string
	for _, p := range required {
		if !ident.HasPermission(p) {
			missing = append(missing, p)
		}
	}
	return missing
}
