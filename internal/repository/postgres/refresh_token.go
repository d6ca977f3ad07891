package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skycast/skycast-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (
            id, token_hash, user_id, created_at, expires_at, revoked
        ) VALUES ($1,$2,$3,$4,$5,$6)
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		token.ID, token.TokenHash, token.UserID, token.CreatedAt, token.ExpiresAt, token.Revoked,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	const query = `
        SELECT id, token_hash, user_id, created_at, expires_at, revoked
        FROM refresh_tokens WHERE token_hash = $1
    `

	var rt model.RefreshToken
	err := r.db.QueryRow(ctx, query, model.HashToken(token)).Scan(
		&rt.ID, &rt.TokenHash, &rt.UserID, &rt.CreatedAt, &rt.ExpiresAt, &rt.Revoked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return rt, nil
}

// Revoke performs the compare-and-swap on the revoked flag: the WHERE
// clause only matches an unrevoked row, so of two concurrent calls exactly
// one reports a flipped row.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) (bool, error) {
	const query = `
        UPDATE refresh_tokens SET revoked = TRUE
        WHERE token_hash = $1 AND revoked = FALSE
    `

	tag, err := r.db.Exec(ctx, query, model.HashToken(token))
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	const query = `
        UPDATE refresh_tokens SET revoked = TRUE
        WHERE user_id = $1 AND revoked = FALSE
    `

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	return nil
}
