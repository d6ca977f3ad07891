package memory

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"github.com/skycast/skycast-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	mu     sync.Mutex
	byHash map[string]model.RefreshToken
}

func NewRefreshTokenRepository() *RefreshTokenRepository {
	return &RefreshTokenRepository{
		byHash: make(map[string]model.RefreshToken),
	}
}

func key(token string) string {
	return hex.EncodeToString(model.HashToken(token))
}

func (r *RefreshTokenRepository) Create(_ context.Context, token model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHash[hex.EncodeToString(token.TokenHash)] = token
	return nil
}

func (r *RefreshTokenRepository) GetByToken(_ context.Context, token string) (model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.byHash[key(token)]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	return rt, nil
}

// Revoke flips the revoked flag under the lock; the flag check and the
// write are one atomic step, so of N concurrent calls exactly one gets true.
func (r *RefreshTokenRepository) Revoke(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(token)
	rt, ok := r.byHash[k]
	if !ok || rt.Revoked {
		return false, nil
	}
	rt.Revoked = true
	r.byHash[k] = rt
	return true, nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, rt := range r.byHash {
		if rt.UserID == userID && !rt.Revoked {
			rt.Revoked = true
			r.byHash[k] = rt
		}
	}
	return nil
}
