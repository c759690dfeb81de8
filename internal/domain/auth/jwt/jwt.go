package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "ACCESS"
	RefreshToken TokenType = "REFRESH"
)

type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string    `json:"userId"`
	Type   TokenType `json:"type"`
	Roles  []string  `json:"roles"`
}

type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID  string    `json:"userId"`
	Type    TokenType `json:"type"`
	TokenID string    `json:"tokenId"`
}

type JWTUtil interface {
	GenerateAccessToken(userID uuid.UUID, roles []string) (token string, exp time.Time, err error)
	GenerateRefreshToken(userID uuid.UUID, tokenID string) (token string, exp time.Time, err error)
	ValidateAccessToken(token string) (claims AccessClaims, err error)
	ValidateRefreshToken(token string) (claims RefreshClaims, err error)
}
