package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/skycast/skycast-server/internal/model"
)

// Claims represents access token JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// JWT implements TokenIssuer. Access tokens are HS256-signed JWTs carrying
// the user's identity; refresh tokens are opaque random strings with no
// embedded claims.
type JWT struct {
	secretKey  string
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

const (
	minSecretLength = 32
	// refreshTokenBytes gives 256 bits of entropy per refresh token.
	refreshTokenBytes = 32
)

var _ model.TokenIssuer = (*JWT)(nil)

// NewJWT creates a token issuer. An undersized secret or empty
// issuer/audience is a configuration fault and rejected here, at startup.
func NewJWT(secretKey, issuer, audience string, accessTTL, refreshTTL time.Duration) (*JWT, error) {
	if len(secretKey) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	if issuer == "" || audience == "" {
		return nil, fmt.Errorf("jwt issuer and audience are required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("token ttls must be positive")
	}
	return &JWT{
		secretKey:  secretKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// GenerateAccessToken creates a short-lived signed access token. The
// returned expiry is the same instant written into the exp claim.
func (j *JWT) GenerateAccessToken(user model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.accessTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
		Name:  user.Username,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// GenerateRefreshToken creates an opaque random refresh token string.
func (j *JWT) GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// AccessTokenExpiration computes now + access TTL at call time.
func (j *JWT) AccessTokenExpiration() time.Time {
	return time.Now().Add(j.accessTTL)
}

// RefreshTokenExpiration computes now + refresh TTL at call time.
func (j *JWT) RefreshTokenExpiration() time.Time {
	return time.Now().Add(j.refreshTTL)
}

// ParseAccessToken validates the signature, expiry, issuer and audience of
// an access token and extracts the identity claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.AccessClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithIssuer(j.issuer), jwt.WithAudience(j.audience), jwt.WithExpirationRequired())
	if err != nil {
		return model.AccessClaims{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return model.AccessClaims{}, fmt.Errorf("access token is invalid")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.AccessClaims{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	return model.AccessClaims{
		UserID:   userID,
		Email:    claims.Email,
		Username: claims.Name,
		TokenID:  claims.ID,
	}, nil
}
