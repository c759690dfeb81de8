package handler

import (
	"net/http"
	"time"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
)

func (h *Handler) setAuthCookies(c *gin.Context, pair model.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessCookie, pair.AccessToken, maxAge(pair.AccessTTL),
		"/", h.CookieDomain, h.CookieSecure, true)
	c.SetCookie(middleware.RefreshCookie, pair.RefreshToken, maxAge(pair.RefreshTTL),
		"/", h.CookieDomain, h.CookieSecure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessCookie, "", -1, "/", h.CookieDomain, h.CookieSecure, true)
	c.SetCookie(middleware.RefreshCookie, "", -1, "/", h.CookieDomain, h.CookieSecure, true)
}

func maxAge(ttl time.Duration) int {
	return int(ttl.Round(time.Second).Seconds())
}
