package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skycast/skycast-server/internal/logger"
	"github.com/skycast/skycast-server/internal/model"
)

// Messages returned for classified auth failures. Unknown email and wrong
// password share one error value so a caller cannot tell which was wrong.
var (
	errEmailRequired      = model.NewValidationError("Email is required.")
	errUsernameRequired   = model.NewValidationError("Username is required.")
	errPasswordRequired   = model.NewValidationError("Password is required.")
	errPasswordTooShort   = model.NewValidationError("Password must be at least 6 characters long.")
	errRefreshRequired    = model.NewValidationError("Refresh token is required.")
	errEmailTaken         = model.NewConflictError("A user with this email already exists.")
	errUsernameTaken      = model.NewConflictError("A user with this username already exists.")
	errInvalidCredentials = model.NewUnauthorizedError("Invalid email or password.")
	errTokenInvalid       = model.NewUnauthorizedError("Invalid refresh token.")
	errTokenRevoked       = model.NewUnauthorizedError("Refresh token has been revoked.")
	errTokenExpired       = model.NewUnauthorizedError("Refresh token has expired.")
	errUserMissing        = model.NewUnauthorizedError("User not found.")
)

const minPasswordLength = 6

// Auth coordinates the credential store, password hasher, token issuer and
// refresh token store to implement the register, login and refresh flows.
// It is stateless and safe for concurrent use.
type Auth struct {
	users  model.UserStore
	tokens model.RefreshTokenStore
	hasher model.PasswordHasher
	issuer model.TokenIssuer
	logger *logger.Logger
}

func NewAuth(
	users model.UserStore,
	tokens model.RefreshTokenStore,
	hasher model.PasswordHasher,
	issuer model.TokenIssuer,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		issuer: issuer,
		logger: logger,
	}
}

// Register validates input, creates the user and issues a token pair.
// Validation failures and duplicate email/username come back as classified
// errors, field checks in declaration order, email conflict before username.
func (a *Auth) Register(ctx context.Context, email, username, password string) (model.TokenPair, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", email,
		"username", username)

	if email == "" {
		return model.TokenPair{}, errEmailRequired
	}
	if username == "" {
		return model.TokenPair{}, errUsernameRequired
	}
	if password == "" {
		return model.TokenPair{}, errPasswordRequired
	}
	if len(password) < minPasswordLength {
		return model.TokenPair{}, errPasswordTooShort
	}

	email = strings.ToLower(email)

	emailTaken, err := a.users.ExistsByEmail(ctx, email)
	if err != nil {
		a.logger.Error("Auth service: failed to check email existence",
			"email", email,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to check email existence: %w", err)
	}
	if emailTaken {
		a.logger.Info("Auth service: email already registered",
			"email", email)
		return model.TokenPair{}, errEmailTaken
	}

	usernameTaken, err := a.users.ExistsByUsername(ctx, username)
	if err != nil {
		a.logger.Error("Auth service: failed to check username existence",
			"username", username,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to check username existence: %w", err)
	}
	if usernameTaken {
		a.logger.Info("Auth service: username already registered",
			"username", username)
		return model.TokenPair{}, errUsernameTaken
	}

	passwordHash, err := a.hasher.Hash(password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", email,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.users.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID,
		"email", user.Email)

	return a.issuePair(ctx, user)
}

// Login verifies credentials and issues a token pair. An unknown email and
// a wrong password are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, email, password string) (model.TokenPair, error) {
	a.logger.Debug("Auth service: starting user login",
		"email", email)

	if email == "" {
		return model.TokenPair{}, errEmailRequired
	}
	if password == "" {
		return model.TokenPair{}, errPasswordRequired
	}

	email = strings.ToLower(email)

	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: login with unknown email",
			"email", email)
		return model.TokenPair{}, errInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.logger.Info("Auth service: login with wrong password",
			"user_id", user.ID)
		return model.TokenPair{}, errInvalidCredentials
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return a.issuePair(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked first and
// a new pair is issued only afterwards, so a crash in between leaves the old
// token unusable rather than two live tokens. Concurrent refreshes of the
// same token are serialized by the store's Revoke compare-and-swap; at most
// one of them succeeds.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	a.logger.Debug("Auth service: starting token refresh")

	if refreshToken == "" {
		return model.TokenPair{}, errRefreshRequired
	}

	stored, err := a.tokens.GetByToken(ctx, refreshToken)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: refresh with unknown token")
		return model.TokenPair{}, errTokenInvalid
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get refresh token",
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to get refresh token: %w", err)
	}

	// Revocation is checked before expiry so a replayed rotated token is
	// always reported as revoked.
	if stored.Revoked {
		a.logger.Info("Auth service: refresh with revoked token",
			"user_id", stored.UserID)
		return model.TokenPair{}, errTokenRevoked
	}
	if stored.ExpiresAt.Before(time.Now()) {
		a.logger.Info("Auth service: refresh with expired token",
			"user_id", stored.UserID)
		return model.TokenPair{}, errTokenExpired
	}

	revoked, err := a.tokens.Revoke(ctx, refreshToken)
	if err != nil {
		a.logger.Error("Auth service: failed to revoke refresh token",
			"user_id", stored.UserID,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !revoked {
		// A concurrent refresh of the same token won the race.
		a.logger.Info("Auth service: lost refresh rotation race",
			"user_id", stored.UserID)
		return model.TokenPair{}, errTokenRevoked
	}

	user, err := a.users.GetByID(ctx, stored.UserID)
	if errors.Is(err, model.ErrNotFound) {
		// The presented token is already burned at this point; the session
		// cannot be recovered. Ordering kept intentionally, see DESIGN.md.
		a.logger.Warn("Auth service: refresh token owner missing",
			"user_id", stored.UserID)
		return model.TokenPair{}, errUserMissing
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", stored.UserID,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	a.logger.Info("Auth service: token refreshed",
		"user_id", user.ID)

	return a.issuePair(ctx, user)
}

// Logout revokes the presented refresh token. Revoking an already-revoked
// or unknown token is not an error.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return errRefreshRequired
	}

	if _, err := a.tokens.Revoke(ctx, refreshToken); err != nil {
		a.logger.Error("Auth service: failed to revoke refresh token",
			"error", err.Error())
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	a.logger.Info("Auth service: refresh token revoked")

	return nil
}

// RevokeAllForUser revokes every live refresh token of a user.
func (a *Auth) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := a.tokens.RevokeAllForUser(ctx, userID); err != nil {
		a.logger.Error("Auth service: failed to revoke user tokens",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	a.logger.Info("Auth service: all refresh tokens revoked",
		"user_id", userID)

	return nil
}

func (a *Auth) issuePair(ctx context.Context, user model.User) (model.TokenPair, error) {
	accessToken, expiresAt, err := a.issuer.GenerateAccessToken(user)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := a.issuer.GenerateRefreshToken()
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	rt := model.RefreshToken{
		ID:        uuid.New(),
		TokenHash: model.HashToken(refreshToken),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: a.issuer.RefreshTokenExpiration(),
		Revoked:   false,
	}
	if err := a.tokens.Create(ctx, rt); err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
