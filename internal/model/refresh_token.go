package model

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists issued refresh tokens and their revocation
// state. Rows are never deleted; revocation is a soft, monotonic
// false->true flag. Methods take the raw opaque token string presented by
// the client; implementations store and look up a digest of it.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByToken(ctx context.Context, token string) (RefreshToken, error)
	// Revoke flips the revoked flag and reports whether this call performed
	// the transition. Revoking an already-revoked token is a no-op returning
	// false, not an error. The transition is atomic per token, which makes it
	// the serialization point for concurrent rotation of the same token.
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// HashToken computes the digest under which a refresh token is stored.
// Only the digest is persisted; a leaked store cannot be replayed.
func HashToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

// RefreshToken represents a stored refresh token record.
type RefreshToken struct {
	ID        uuid.UUID
	TokenHash []byte
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}
