//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/skycast/skycast-server/internal/model"
	repo "github.com/skycast/skycast-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "skycast_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/skycast_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func makeUser(t *testing.T, ctx context.Context, ur *repo.UserRepository, email, username string) model.User {
	t.Helper()
	u := model.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: []byte("$2a$10$fakefakefakefakefakefake"),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	return saved
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	t.Run("user_repository", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		u := makeUser(t, ctx, ur, "user@example.com", "user")

		exists, err := ur.ExistsByEmail(ctx, "user@example.com")
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = ur.ExistsByUsername(ctx, "user")
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = ur.ExistsByEmail(ctx, "other@example.com")
		require.NoError(t, err)
		require.False(t, exists)

		byEmail, err := ur.GetByEmail(ctx, u.Email)
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		byID, err := ur.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, byID.Email)

		_, err = ur.GetByEmail(ctx, "missing@example.com")
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("refresh_token_repository", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		rr := repo.NewRefreshTokenRepository(conn)

		owner := makeUser(t, ctx, ur, "owner@example.com", "owner")

		raw := "opaque-refresh-token"
		rt := model.RefreshToken{
			ID:        uuid.New(),
			TokenHash: model.HashToken(raw),
			UserID:    owner.ID,
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, rr.Create(ctx, rt))

		got, err := rr.GetByToken(ctx, raw)
		require.NoError(t, err)
		require.Equal(t, owner.ID, got.UserID)
		require.False(t, got.Revoked)

		_, err = rr.GetByToken(ctx, "unknown-token")
		require.ErrorIs(t, err, model.ErrNotFound)

		flipped, err := rr.Revoke(ctx, raw)
		require.NoError(t, err)
		require.True(t, flipped)

		flipped, err = rr.Revoke(ctx, raw)
		require.NoError(t, err)
		require.False(t, flipped)

		got, err = rr.GetByToken(ctx, raw)
		require.NoError(t, err)
		require.True(t, got.Revoked)
	})

	t.Run("revoke_all_for_user", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		rr := repo.NewRefreshTokenRepository(conn)

		owner := makeUser(t, ctx, ur, "bulk@example.com", "bulk")

		for _, raw := range []string{"bulk-1", "bulk-2"} {
			require.NoError(t, rr.Create(ctx, model.RefreshToken{
				ID:        uuid.New(),
				TokenHash: model.HashToken(raw),
				UserID:    owner.ID,
				CreatedAt: time.Now(),
				ExpiresAt: time.Now().Add(time.Hour),
			}))
		}

		require.NoError(t, rr.RevokeAllForUser(ctx, owner.ID))

		for _, raw := range []string{"bulk-1", "bulk-2"} {
			got, err := rr.GetByToken(ctx, raw)
			require.NoError(t, err)
			require.True(t, got.Revoked)
		}

		require.NoError(t, rr.RevokeAllForUser(ctx, owner.ID))
	})
}
