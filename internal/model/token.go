package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenIssuer creates signed access tokens and opaque refresh tokens.
type TokenIssuer interface {
	// GenerateAccessToken signs a self-contained bearer credential for the
	// user. The returned expiry is the exact time embedded in the token's
	// claims, computed from a single clock read.
	GenerateAccessToken(user User) (token string, expiresAt time.Time, err error)
	// GenerateRefreshToken returns a cryptographically random opaque string.
	// It carries no claims; it is a pure lookup key.
	GenerateRefreshToken() (string, error)
	AccessTokenExpiration() time.Time
	RefreshTokenExpiration() time.Time
	ParseAccessToken(token string) (AccessClaims, error)
}

// AccessClaims is the identity extracted from a verified access token.
type AccessClaims struct {
	UserID   uuid.UUID
	Email    string
	Username string
	TokenID  string
}

// TokenPair is the result of a successful register, login or refresh.
// ExpiresAt is the access token's expiry.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
