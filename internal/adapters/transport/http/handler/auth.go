package handler

import (
	"crypto/sha256"
	"fmt"
	"net/http"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// hashedEmail keeps addresses out of the logs while staying correlatable.
func hashedEmail(addr string) zap.Field {
	return zap.String("user", fmt.Sprintf("%x", sha256.Sum256([]byte(addr))))
}

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bad(c, err)
		return
	}
	h.Log.Info("/auth/register", hashedEmail(body.Email))

	u, pair, err := h.Auth.Register(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	h.setAuthCookies(c, pair)
	c.JSON(http.StatusCreated, dto.LoginResponse{User: dto.NewUserResponse(u), Token: dto.NewTokenResponse(pair)})
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bad(c, err)
		return
	}
	h.Log.Info("/auth/login", hashedEmail(body.Email))

	u, pair, err := h.Auth.Login(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	h.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, dto.LoginResponse{User: dto.NewUserResponse(u), Token: dto.NewTokenResponse(pair)})
}

// refreshToken reads the refresh token from its cookie, falling back to the body.
func refreshToken(c *gin.Context) string {
	if v, err := c.Cookie(middleware.RefreshCookie); err == nil && v != "" {
		return v
	}
	var body dto.RefreshDTO
	// an empty body is fine when the cookie carries the token
	_ = c.ShouldBindJSON(&body)
	return body.RefreshToken
}

func (h *Handler) refresh(c *gin.Context) {
	pair, err := h.Auth.Refresh(c.Request.Context(), dto.RefreshDTO{RefreshToken: refreshToken(c)})
	if err != nil {
		h.clearAuthCookies(c)
		handleError(c, err)
		return
	}
	h.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{"accessToken": pair.AccessToken})
}

func (h *Handler) logout(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	if err := h.Auth.Logout(c.Request.Context(), ident.ID, refreshToken(c)); err != nil {
		handleError(c, err)
		return
	}
	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) me(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	c.JSON(http.StatusOK, ident)
}
