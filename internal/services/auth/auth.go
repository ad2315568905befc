package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"avatarium/internal/apperr"
	"avatarium/internal/domain/models"
	jwtlib "avatarium/internal/lib/jwt"
	"avatarium/internal/lib/password"
	"avatarium/internal/lib/sl"
	"avatarium/internal/storage"
)

const msgInvalidCredentials = "Invalid credentials"
const msgInvalidRefreshToken = "Invalid refresh token"

type Auth struct {
	logger          *slog.Logger
	userSaver       UserSaver
	userProvider    UserProvider
	tokenStore      TokenStore
	tokens          *jwtlib.Manager
	refreshTokenTTL time.Duration
	now             func() time.Time
}

type UserSaver interface {
	SaveUser(
		ctx context.Context,
		email string,
		passHash string,
	) (uid int64, err error)
}

type UserProvider interface {
	User(
		ctx context.Context,
		email string,
	) (user *models.User, err error)
	UserByID(
		ctx context.Context,
		userID int64,
	) (user *models.User, err error)
}

type TokenStore interface {
	SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	RefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
}

// New returns a new instance of the Auth service. now is injectable for
// deterministic expiry tests; pass nil to use the wall clock.
func New(
	logger *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	tokenStore TokenStore,
	tokens *jwtlib.Manager,
	refreshTokenTTL time.Duration,
	now func() time.Time,
) *Auth {
	if now == nil {
		now = time.Now
	}
	if refreshTokenTTL <= 0 {
		refreshTokenTTL = 7 * 24 * time.Hour
	}
	return &Auth{
		logger:          logger,
		userSaver:       userSaver,
		userProvider:    userProvider,
		tokenStore:      tokenStore,
		tokens:          tokens,
		refreshTokenTTL: refreshTokenTTL,
		now:             now,
	}
}

// Register creates a new user and returns the sanitized profile. A second
// registration with the same email fails with a conflict, whether it is
// caught by the pre-check or by the store's uniqueness constraint.
func (a *Auth) Register(
	ctx context.Context,
	email string,
	pass string,
) (*models.Profile, error) {
	const op = "auth.Register"
	log := a.logger.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	log.Info("register request")

	_, err := a.userProvider.User(ctx, email)
	if err == nil {
		log.Warn("user already exists")
		return nil, apperr.Conflict("User with this email already exists")
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, apperr.Normalize(log, err, "Error creating user")
	}

	passHash, err := password.Hash(pass)
	if err != nil {
		return nil, apperr.Normalize(log, err, "Error creating user")
	}

	userID, err := a.userSaver.SaveUser(ctx, email, passHash)
	if err != nil {
		// Backstop for the race between the pre-check and the insert.
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			log.Warn("user already exists", sl.Err(err))
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, apperr.Normalize(log, err, "Error creating user")
	}

	log.Info("user registered", slog.Int64("userID", userID))

	return &models.Profile{ID: userID, Email: email}, nil
}

// Login authenticates the user and returns a fresh access/refresh token
// pair, persisting one refresh-token record for the new session. A missing
// user and a wrong password are indistinguishable to the caller.
func (a *Auth) Login(
	ctx context.Context,
	email string,
	pass string,
) (*models.LoginResult, error) {
	const op = "auth.Login"
	log := a.logger.With(slog.String("op", op))
	log.Info("login request", slog.String("email", email))

	user, err := a.userProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			return nil, apperr.Authentication(msgInvalidCredentials)
		}
		return nil, apperr.Normalize(log, err, "Error logging user")
	}

	if !password.Verify(pass, user.PassHash) {
		log.Info("incorrect password", slog.Int64("userID", user.ID))
		return nil, apperr.Authentication(msgInvalidCredentials)
	}

	accessToken, err := a.tokens.NewAccessToken(user)
	if err != nil {
		return nil, apperr.Normalize(log, err, "Error logging user")
	}

	refreshToken, err := a.tokens.NewRefreshToken(user.ID)
	if err != nil {
		return nil, apperr.Normalize(log, err, "Error logging user")
	}

	// If this write fails the issued tokens are never returned, so there
	// is nothing to clean up; the caller retries the whole login.
	expiresAt := a.now().Add(a.refreshTokenTTL)
	if err := a.tokenStore.SaveRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, apperr.Normalize(log, err, "Error logging user")
	}

	log.Info("user logged in", slog.Int64("userID", user.ID))

	return &models.LoginResult{
		User: models.SessionUser{
			ID:    user.ID,
			Email: user.Email,
		},
		Tokens: models.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated. A token is accepted only if its
// signature verifies AND a live store record exists; expired, forged and
// revoked tokens are all rejected identically.
func (a *Auth) Refresh(
	ctx context.Context,
	refreshToken string,
) (string, error) {
	const op = "auth.Refresh"
	log := a.logger.With(slog.String("op", op))
	log.Info("refresh request")

	userID, err := a.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		log.Info("refresh token rejected", sl.Err(err))
		return "", apperr.InvalidToken(msgInvalidRefreshToken)
	}

	rec, err := a.tokenStore.RefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Info("refresh token not found", slog.Int64("userID", userID))
			return "", apperr.InvalidToken(msgInvalidRefreshToken)
		}
		return "", apperr.Normalize(log, err, "Error refreshing token")
	}

	if rec.ExpiresAt.Before(a.now()) {
		log.Info("refresh token record expired", slog.Int64("userID", userID))
		return "", apperr.InvalidToken(msgInvalidRefreshToken)
	}

	user, err := a.userProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user deleted after token issuance", slog.Int64("userID", userID))
			return "", apperr.NotFound("User not found")
		}
		return "", apperr.Normalize(log, err, "Error refreshing token")
	}

	accessToken, err := a.tokens.NewAccessToken(user)
	if err != nil {
		return "", apperr.Normalize(log, err, "Error refreshing token")
	}

	log.Info("access token refreshed", slog.Int64("userID", user.ID))

	return accessToken, nil
}

// Logout deletes the session's refresh-token record. Signature validity is
// irrelevant; a malformed token simply matches no record.
func (a *Auth) Logout(
	ctx context.Context,
	refreshToken string,
) error {
	const op = "auth.Logout"
	log := a.logger.With(slog.String("op", op))
	log.Info("logout request")

	rec, err := a.tokenStore.DeleteRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Info("refresh token not found")
			return apperr.InvalidToken(msgInvalidRefreshToken)
		}
		return apperr.Normalize(log, err, "Error logging out user")
	}

	log.Info("user logged out", slog.Int64("userID", rec.UserID))

	return nil
}
