package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpapp "avatarium/internal/app/httpserver"
	"avatarium/internal/config"
	"avatarium/internal/domain/models"
	"avatarium/internal/httpapi"
	"avatarium/internal/jobs"
	jwtlib "avatarium/internal/lib/jwt"
	"avatarium/internal/services/auth"
	"avatarium/internal/services/avatar"
	"avatarium/internal/services/user"
	"avatarium/internal/storage/mongodb"
	"avatarium/internal/storage/sqlite"
)

// Storage is the full persistence surface; both backends implement it.
type Storage interface {
	SaveUser(ctx context.Context, email string, passHash string) (int64, error)
	User(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, userID int64) (*models.User, error)
	UpdateUser(ctx context.Context, userID int64, upd models.UserUpdate) (*models.User, error)
	SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	RefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
	SaveAvatar(ctx context.Context, avatar *models.Avatar) error
	Avatar(ctx context.Context, id string) (*models.Avatar, error)
	AvatarsByUser(ctx context.Context, userID int64) ([]*models.Avatar, error)
	UpdateAvatar(ctx context.Context, id string, userID int64, upd models.AvatarUpdate) (*models.Avatar, error)
	DeleteAvatar(ctx context.Context, id string, userID int64) error
	Close(ctx context.Context) error
}

type App struct {
	HTTPSrv *httpapp.App
	Cleanup *jobs.Cleanup
	storage Storage
}

func New(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens := jwtlib.NewManager(jwtlib.Config{
		AccessSecret:  cfg.Tokens.AccessSecret,
		RefreshSecret: cfg.Tokens.RefreshSecret,
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshTTL:    cfg.Tokens.RefreshTTL,
	})

	authService := auth.New(logger, store, store, store, tokens, cfg.Tokens.RefreshTTL, nil)
	userService := user.New(logger, store, store)
	avatarService := avatar.New(logger, store, nil)

	router := httpapi.NewRouter(logger, authService, userService, avatarService, tokens)
	httpApp := httpapp.New(logger, router, cfg.HTTP.Port, cfg.HTTP.Timeout)

	cleanup := jobs.NewCleanup(logger, store, cfg.Cleanup.Interval)

	return &App{
		HTTPSrv: httpApp,
		Cleanup: cleanup,
		storage: store,
	}, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "mongo":
		return mongodb.New(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database)
	case "sqlite":
		return sqlite.New(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Storage.Type)
	}
}

// Stop shuts down the HTTP server and closes the storage.
func (a *App) Stop(ctx context.Context) {
	a.HTTPSrv.Stop(ctx)
	_ = a.storage.Close(ctx)
}
