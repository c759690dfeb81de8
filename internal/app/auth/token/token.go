// Package token issues access/refresh pairs and rotates refresh tokens.
//
// Only a fingerprint of each refresh token is kept, under
// r_token:{userId}:{tokenId}, for as long as the token itself is valid.
// A refresh succeeds only for the caller whose delete of that key removed it,
// so a token can be exchanged at most once.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/jwt"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/repo"
	"github.com/Miraines/rbac-auth-service/internal/infra/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func RefreshKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("r_token:%s:%s", userID, tokenID)
}

// Fingerprint is the stored one-way form of a raw refresh token.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

type Service struct {
	jwt   jwt.JWTUtil
	cache repo.Cache
	users repo.UserRepo
	log   *zap.Logger
}

func NewService(j jwt.JWTUtil, cache repo.Cache, users repo.UserRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{jwt: j, cache: cache, users: users, log: log}
}

func (s *Service) IssueTokens(ctx context.Context, userID uuid.UUID, roles []string) (model.TokenPair, error) {
	tokenID := uuid.NewString()

	var (
		at, rt       string
		atExp, rtExp time.Time
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		at, atExp, err = s.jwt.GenerateAccessToken(userID, roles)
		return err
	})
	g.Go(func() (err error) {
		rt, rtExp, err = s.jwt.GenerateRefreshToken(userID, tokenID)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "IssueTokens")
	}

	now := time.Now()
	if err := s.cache.Set(ctx, RefreshKey(userID, tokenID), Fingerprint(rt), rtExp.Sub(now)); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "store refresh token")
	}

	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		UserId:       userID,
		TokenID:      tokenID,
	}, nil
}

// Refresh exchanges a valid, unused refresh token for a new pair.
// Every rejection is reported as ErrInvalidRefreshToken.
func (s *Service) Refresh(ctx context.Context, raw string) (model.TokenPair, error) {
	pair, err := s.refresh(ctx, raw)
	switch {
	case err == nil:
		metrics.RefreshTotal.WithLabelValues("ok").Inc()
	case customErrors.IsInternal(err):
		metrics.RefreshTotal.WithLabelValues("error").Inc()
	default:
		metrics.RefreshTotal.WithLabelValues("rejected").Inc()
	}
	return pair, err
}

func (s *Service) refresh(ctx context.Context, raw string) (model.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(raw)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	}

	key := RefreshKey(userID, claims.TokenID)
	if !s.cache.Equal(ctx, key, Fingerprint(raw)) {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	}

	// the delete decides the winner between concurrent refreshes
	deleted, err := s.cache.Delete(ctx, key)
	if err != nil {
		s.log.Warn("refresh rotation delete failed", zap.String("user_id", userID.String()), zap.Error(err))
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	}
	if !deleted {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	switch {
	case customErrors.IsNotFound(err):
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	return s.IssueTokens(ctx, userID, user.RoleNames())
}

// Logout forgets the refresh token identified by (userID, tokenID).
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, tokenID string) error {
	if _, err := s.cache.Delete(ctx, RefreshKey(userID, tokenID)); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

// Inspect validates a raw refresh token and returns its owner and token id
// without consuming it.
func (s *Service) Inspect(raw string) (uuid.UUID, string, error) {
	claims, err := s.jwt.ValidateRefreshToken(raw)
	if err != nil {
		return uuid.Nil, "", customErrors.ErrInvalidRefreshToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, "", customErrors.ErrInvalidRefreshToken
	}
	return userID, claims.TokenID, nil
}
