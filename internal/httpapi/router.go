// Package httpapi exposes the services over REST. It owns request
// decoding, edge validation, and the mapping of domain errors to HTTP
// statuses; all business rules live in the services.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"avatarium/internal/domain/models"
	jwtlib "avatarium/internal/lib/jwt"
	"avatarium/internal/services/avatar"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.Profile, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type UserService interface {
	Profile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, upd models.UserUpdate) (*models.Profile, error)
}

type AvatarService interface {
	Create(ctx context.Context, userID int64, input avatar.CreateInput) (*models.Avatar, error)
	List(ctx context.Context, userID int64) ([]*models.Avatar, error)
	Get(ctx context.Context, id string) (*models.Avatar, error)
	Update(ctx context.Context, id string, userID int64, upd models.AvatarUpdate) (*models.Avatar, error)
	Delete(ctx context.Context, id string, userID int64) error
}

func NewRouter(
	logger *slog.Logger,
	auth AuthService,
	users UserService,
	avatars AvatarService,
	tokens *jwtlib.Manager,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	ah := &authHandler{auth: auth}
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", ah.register)
		r.Post("/login", ah.login)
		r.Post("/refresh", ah.refresh)
		r.Post("/logout", ah.logout)
	})

	uh := &userHandler{users: users}
	avh := &avatarHandler{avatars: avatars}
	r.Group(func(r chi.Router) {
		r.Use(authenticate(tokens))

		r.Route("/api/users/me", func(r chi.Router) {
			r.Get("/", uh.me)
			r.Patch("/", uh.updateMe)
		})

		r.Route("/api/avatars", func(r chi.Router) {
			r.Get("/", avh.list)
			r.Post("/", avh.create)
			r.Get("/{id}", avh.get)
			r.Patch("/{id}", avh.update)
			r.Delete("/{id}", avh.remove)
		})
	})

	return r
}
