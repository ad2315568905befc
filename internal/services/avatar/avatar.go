package avatar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"avatarium/internal/apperr"
	"avatarium/internal/domain/models"
	"avatarium/internal/storage"
)

type Service struct {
	logger *slog.Logger
	store  Store
	now    func() time.Time
}

type Store interface {
	SaveAvatar(ctx context.Context, avatar *models.Avatar) error
	Avatar(ctx context.Context, id string) (*models.Avatar, error)
	AvatarsByUser(ctx context.Context, userID int64) ([]*models.Avatar, error)
	UpdateAvatar(ctx context.Context, id string, userID int64, upd models.AvatarUpdate) (*models.Avatar, error)
	DeleteAvatar(ctx context.Context, id string, userID int64) error
}

type CreateInput struct {
	Name       string
	Weapon     string
	Clothes    string
	HairColor  string
	FacialHair bool
	Gender     string
	Genre      string
	ImageURL   string
}

func New(logger *slog.Logger, store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		logger: logger,
		store:  store,
		now:    now,
	}
}

// Create stores a new avatar for the user and returns the record.
func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (*models.Avatar, error) {
	const op = "avatar.Create"
	log := s.logger.With(slog.String("op", op), slog.Int64("userID", userID))

	av := &models.Avatar{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       input.Name,
		Weapon:     input.Weapon,
		Clothes:    input.Clothes,
		HairColor:  input.HairColor,
		FacialHair: input.FacialHair,
		Gender:     input.Gender,
		Genre:      input.Genre,
		ImageURL:   input.ImageURL,
		CreatedAt:  s.now(),
	}

	if err := s.store.SaveAvatar(ctx, av); err != nil {
		return nil, apperr.Normalize(log, err, "Error creating avatar")
	}

	log.Info("avatar created", slog.String("avatarID", av.ID))

	return av, nil
}

// List returns all avatars owned by the user.
func (s *Service) List(ctx context.Context, userID int64) ([]*models.Avatar, error) {
	const op = "avatar.List"
	log := s.logger.With(slog.String("op", op), slog.Int64("userID", userID))

	avatars, err := s.store.AvatarsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Normalize(log, err, "Error listing avatars")
	}

	return avatars, nil
}

// Get returns a single avatar by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Avatar, error) {
	const op = "avatar.Get"
	log := s.logger.With(slog.String("op", op), slog.String("avatarID", id))

	av, err := s.store.Avatar(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrAvatarNotFound) {
			log.Info("avatar not found")
			return nil, apperr.NotFound("Avatar not found")
		}
		return nil, apperr.Normalize(log, err, "Error fetching avatar")
	}

	return av, nil
}

// Update applies a partial update to an avatar owned by the user and
// returns the updated record. Nil fields in upd are left untouched.
func (s *Service) Update(ctx context.Context, id string, userID int64, upd models.AvatarUpdate) (*models.Avatar, error) {
	const op = "avatar.Update"
	log := s.logger.With(slog.String("op", op), slog.String("avatarID", id), slog.Int64("userID", userID))

	av, err := s.store.UpdateAvatar(ctx, id, userID, upd)
	if err != nil {
		if errors.Is(err, storage.ErrAvatarNotFound) {
			log.Info("avatar not found")
			return nil, apperr.NotFound("Avatar not found")
		}
		return nil, apperr.Normalize(log, err, "Error updating avatar")
	}

	log.Info("avatar updated")

	return av, nil
}

// Delete removes an avatar owned by the user.
func (s *Service) Delete(ctx context.Context, id string, userID int64) error {
	const op = "avatar.Delete"
	log := s.logger.With(slog.String("op", op), slog.String("avatarID", id), slog.Int64("userID", userID))

	if err := s.store.DeleteAvatar(ctx, id, userID); err != nil {
		if errors.Is(err, storage.ErrAvatarNotFound) {
			log.Info("avatar not found")
			return apperr.NotFound("Avatar not found")
		}
		return apperr.Normalize(log, err, "Error deleting avatar")
	}

	log.Info("avatar deleted")

	return nil
}
