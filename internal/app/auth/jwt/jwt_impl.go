package jwt

import (
	"os"
	"time"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/rbac-auth-service/internal/domain/auth/jwt"
	"github.com/Miraines/rbac-auth-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const leeway = 30 * time.Second

type JwtUtilImpl struct {
	method     jwt.SigningMethod
	signKey    any
	verifyKey  any
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
}

// NewJWTUtil signs with RS256 when both PEM paths are configured, otherwise
// with HS256 over JWT_SECRET.
func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	j := &JwtUtilImpl{
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}

	if cfg.JWTPrivateKeyPath == "" || cfg.JWTPublicKeyPath == "" {
		if cfg.JWTSecret == "" {
			return nil, customErrors.NewInvalidArgument("no JWT signing key configured")
		}
		j.method = jwt.SigningMethodHS256
		j.signKey = []byte(cfg.JWTSecret)
		j.verifyKey = []byte(cfg.JWTSecret)
		return j, nil
	}

	privPem, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse private key")
	}

	pubPem, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse public key")
	}

	j.method = jwt.SigningMethodRS256
	j.signKey = privKey
	j.verifyKey = pubKey
	return j, nil
}

func (j *JwtUtilImpl) registered(userID uuid.UUID, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    j.issuer,
		Audience:  jwt.ClaimStrings{j.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func (j *JwtUtilImpl) GenerateAccessToken(userID uuid.UUID, roles []string) (string, time.Time, error) {
	if roles == nil {
		roles = []string{}
	}
	claims := jwt2.AccessClaims{
		RegisteredClaims: j.registered(userID, j.accessTTL),
		UserID:           userID.String(),
		Type:             jwt2.AccessToken,
		Roles:            roles,
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.signKey)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign access token")
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) GenerateRefreshToken(userID uuid.UUID, tokenID string) (string, time.Time, error) {
	claims := jwt2.RefreshClaims{
		RegisteredClaims: j.registered(userID, j.refreshTTL),
		UserID:           userID.String(),
		Type:             jwt2.RefreshToken,
		TokenID:          tokenID,
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.signKey)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign refresh token")
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) parse(raw string, claims jwt.Claims) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(leeway),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return j.verifyKey, nil
	}, opts...)
	if err != nil || !token.Valid {
		return customErrors.ErrInvalidToken
	}
	return nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (jwt2.AccessClaims, error) {
	var claims jwt2.AccessClaims
	if err := j.parse(raw, &claims); err != nil {
		return jwt2.AccessClaims{}, err
	}
	if claims.Type != jwt2.AccessToken {
		return jwt2.AccessClaims{}, customErrors.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return jwt2.AccessClaims{}, customErrors.ErrInvalidToken
	}
	return claims, nil
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (jwt2.RefreshClaims, error) {
	var claims jwt2.RefreshClaims
	if err := j.parse(raw, &claims); err != nil {
		return jwt2.RefreshClaims{}, err
	}
	if claims.Type != jwt2.RefreshToken || claims.TokenID == "" {
		return jwt2.RefreshClaims{}, customErrors.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return jwt2.RefreshClaims{}, customErrors.ErrInvalidToken
	}
	return claims, nil
}
