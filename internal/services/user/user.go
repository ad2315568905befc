package user

import (
	"context"
	"errors"
	"log/slog"

	"avatarium/internal/apperr"
	"avatarium/internal/domain/models"
	"avatarium/internal/storage"
)

type Service struct {
	logger   *slog.Logger
	provider UserProvider
	updater  UserUpdater
}

type UserProvider interface {
	UserByID(ctx context.Context, userID int64) (*models.User, error)
}

type UserUpdater interface {
	UpdateUser(ctx context.Context, userID int64, upd models.UserUpdate) (*models.User, error)
}

func New(logger *slog.Logger, provider UserProvider, updater UserUpdater) *Service {
	return &Service{
		logger:   logger,
		provider: provider,
		updater:  updater,
	}
}

// Profile returns the sanitized profile of a user.
func (s *Service) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	const op = "user.Profile"
	log := s.logger.With(slog.String("op", op), slog.Int64("userID", userID))

	u, err := s.provider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Normalize(log, err, "Error fetching user profile")
	}

	return u.Profile(), nil
}

// UpdateProfile applies a partial update and returns the updated profile.
// Nil fields in upd are left untouched.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, upd models.UserUpdate) (*models.Profile, error) {
	const op = "user.UpdateProfile"
	log := s.logger.With(slog.String("op", op), slog.Int64("userID", userID))

	u, err := s.updater.UpdateUser(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Normalize(log, err, "Error updating user profile")
	}

	log.Info("profile updated")

	return u.Profile(), nil
}
