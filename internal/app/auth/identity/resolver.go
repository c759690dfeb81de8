package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/jwt"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/repo"
	"github.com/Miraines/rbac-auth-service/internal/infra/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userKeyPattern = "user:*"

func UserKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// Resolver loads identities cache-first. The cache is only an optimisation:
// any fault on the read side falls through to the user store.
type Resolver struct {
	users repo.UserRepo
	cache repo.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewResolver(users repo.UserRepo, cache repo.Cache, ttl time.Duration, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{users: users, cache: cache, ttl: ttl, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, id uuid.UUID) (model.Identity, error) {
	key := UserKey(id)

	if raw, ok := r.cache.Get(ctx, key); ok {
		var ident model.Identity
		if err := json.Unmarshal([]byte(raw), &ident); err == nil && ident.ID == id {
			metrics.IdentityCacheTotal.WithLabelValues("hit").Inc()
			return ident, nil
		}
		r.log.Warn("dropping unreadable cached identity", zap.String("key", key))
	}
	metrics.IdentityCacheTotal.WithLabelValues("miss").Inc()

	user, err := r.users.GetUserByID(ctx, id)
	if err != nil {
		return model.Identity{}, err
	}
	ident := model.NewIdentity(user)

	if payload, err := json.Marshal(ident); err == nil {
		// write-back failure only costs a future miss
		_ = r.cache.Set(ctx, key, string(payload), r.ttl)
	}
	return ident, nil
}

// Evict drops the cached identity of one user.
func (r *Resolver) Evict(ctx context.Context, id uuid.UUID) {
	if _, err := r.cache.Delete(ctx, UserKey(id)); err != nil {
		r.log.Warn("identity cache eviction failed", zap.String("user_id", id.String()), zap.Error(err))
	}
}

// EvictAll drops every cached identity, used when a role definition changes.
func (r *Resolver) EvictAll(ctx context.Context) {
	n, err := r.cache.DeletePattern(ctx, userKeyPattern)
	if err != nil {
		r.log.Warn("identity cache flush failed", zap.Error(err))
		return
	}
	r.log.Debug("identity cache flushed", zap.Int("keys", n))
}

// Authenticator turns a raw access token into an identity.
type Authenticator struct {
	jwt      jwt.JWTUtil
	resolver *Resolver
}

func NewAuthenticator(j jwt.JWTUtil, resolver *Resolver) *Authenticator {
	return &Authenticator{jwt: j, resolver: resolver}
}

// Authenticate never says which check failed: every rejection is ErrUnauthenticated.
// Store faults surface as internal errors.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (model.Identity, error) {
	if raw == "" {
		return model.Identity{}, customErrors.ErrUnauthenticated
	}
	claims, err := a.jwt.ValidateAccessToken(raw)
	if err != nil {
		return model.Identity{}, customErrors.ErrUnauthenticated
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return model.Identity{}, customErrors.ErrUnauthenticated
	}

	ident, err := a.resolver.Resolve(ctx, id)
	switch {
	case customErrors.IsNotFound(err):
		return model.Identity{}, customErrors.ErrUnauthenticated
	case err != nil:
		return model.Identity{}, customErrors.WrapInternal(err, "Authenticate")
	}
	return ident, nil
}
