package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/skycast/skycast-server/internal/hash"
	"github.com/skycast/skycast-server/internal/model"
	"github.com/skycast/skycast-server/internal/repository/memory"
	"github.com/skycast/skycast-server/internal/testutil"
	"github.com/skycast/skycast-server/internal/token"
)

// End-to-end flows over real components: memory stores, bcrypt, JWT issuer.

type flowFixture struct {
	auth   *Auth
	users  *memory.UserRepository
	tokens *memory.RefreshTokenRepository
}

func makeFlow(t *testing.T) flowFixture {
	t.Helper()
	issuer, err := token.NewJWT("0123456789abcdef0123456789abcdef", "skycast", "skycast-clients", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	users := memory.NewUserRepository()
	tokens := memory.NewRefreshTokenRepository()
	return flowFixture{
		auth:   NewAuth(users, tokens, hash.NewBcrypt(bcrypt.MinCost), issuer, testutil.MakeNoopLogger()),
		users:  users,
		tokens: tokens,
	}
}

func TestAuthFlow_RefreshTokenSingleUse(t *testing.T) {
	ctx := context.Background()
	f := makeFlow(t)

	pair, err := f.auth.Register(ctx, "a@x.com", "alice", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	rotated, err := f.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, rotated.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// Replaying the consumed token always fails unauthorized.
	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	authErr, ok := model.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, model.KindUnauthorized, authErr.Kind)
	assert.Equal(t, "Refresh token has been revoked.", authErr.Message)

	// The rotated token still works exactly once.
	_, err = f.auth.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
	_, err = f.auth.Refresh(ctx, rotated.RefreshToken)
	require.Error(t, err)
}

func TestAuthFlow_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	f := makeFlow(t)

	_, err := f.auth.Register(ctx, "A@X.com", "alice", "password123")
	require.NoError(t, err)

	// Login is case-insensitive on email.
	pair, err := f.auth.Login(ctx, "a@x.COM", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = f.auth.Login(ctx, "a@x.com", "password124")
	authErr, ok := model.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, model.KindUnauthorized, authErr.Kind)
}

func TestAuthFlow_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	f := makeFlow(t)

	_, err := f.auth.Register(ctx, "a@x.com", "alice", "password123")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "a@x.com", "bob", "password123")
	authErr, ok := model.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, model.KindConflict, authErr.Kind)
	assert.Equal(t, "A user with this email already exists.", authErr.Message)

	_, err = f.auth.Register(ctx, "b@x.com", "alice", "password123")
	authErr, ok = model.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, "A user with this username already exists.", authErr.Message)
}

func TestAuthFlow_ExpiredRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := makeFlow(t)

	pair, err := f.auth.Register(ctx, "a@x.com", "alice", "password123")
	require.NoError(t, err)

	// Age the stored record past its expiry without revoking it.
	stored, err := f.tokens.GetByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	stored.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, f.tokens.Create(ctx, stored))

	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	authErr, ok := model.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, "Refresh token has expired.", authErr.Message)
}

func TestAuthFlow_RefreshAfterOwnerDeleted(t *testing.T) {
	ctx := context.Background()
	f := makeFlow(t)

	pair, err := f.auth.Register(ctx, "a@x.com", "alice", "password123")
	require.NoError(t, err)

	stored, err := f.tokens.GetByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	f.users.Delete(ctx, stored.UserID)

	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	authErr, ok := model.AsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, "User not found.", authErr.Message)

	// The token is burned even though no new pair was issued.
	stored, err = f.tokens.GetByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)
}

func TestAuthFlow_ConcurrentRefresh_AtMostOneSucceeds(t *testing.T) {
	ctx := context.Background()
	f := makeFlow(t)

	pair, err := f.auth.Register(ctx, "a@x.com", "alice", "password123")
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.auth.Refresh(ctx, pair.RefreshToken)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestAuthFlow_RevokeAllForUser(t *testing.T) {
	ctx := context.Background()
	f := makeFlow(t)

	first, err := f.auth.Register(ctx, "a@x.com", "alice", "password123")
	require.NoError(t, err)
	second, err := f.auth.Login(ctx, "a@x.com", "password123")
	require.NoError(t, err)

	stored, err := f.tokens.GetByToken(ctx, first.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.RevokeAllForUser(ctx, stored.UserID))

	for _, raw := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := f.auth.Refresh(ctx, raw)
		authErr, ok := model.AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, "Refresh token has been revoked.", authErr.Message)
	}
}
