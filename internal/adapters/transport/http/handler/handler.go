// Package handler binds the application services to gin routes.
package handler

import (
	"context"
	"net/http"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/service"
	"github.com/Miraines/rbac-auth-service/internal/app/iam"
	"github.com/Miraines/rbac-auth-service/internal/app/user"
	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/email"
	"github.com/Miraines/rbac-auth-service/internal/infra/health"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mailer is the admin side of the email queue.
type Mailer interface {
	Stats(ctx context.Context) (email.Stats, error)
	Jobs(ctx context.Context, status email.JobStatus, start, end int64) ([]email.Job, error)
	Job(ctx context.Context, id string) (email.Job, email.JobStatus, error)
	SendNotification(ctx context.Context, to []string, subject, text string) error
}

type Deps struct {
	Auth   service.Service
	Users  *user.Service
	IAM    *iam.Service
	Queue  Mailer
	Health *health.Checker
	Log    *zap.Logger

	CookieDomain string
	CookieSecure bool
}

type Handler struct {
	Deps
	v *validator.Validate
}

func New(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Handler{Deps: d, v: dto.NewValidator()}
}

func handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case customErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case customErrors.IsInvalidToken(err), customErrors.IsUnauthenticated(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case customErrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "missing": customErrors.MissingPermissions(err)})
	case customErrors.IsAlreadyExists(err), customErrors.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case customErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bad(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
