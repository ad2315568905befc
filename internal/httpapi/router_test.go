package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avatarium/internal/apperr"
	"avatarium/internal/domain/models"
	jwtlib "avatarium/internal/lib/jwt"
	"avatarium/internal/services/avatar"
)

type stubAuth struct {
	registerFn func(email, password string) (*models.Profile, error)
	loginFn    func(email, password string) (*models.LoginResult, error)
	refreshFn  func(token string) (string, error)
	logoutFn   func(token string) error
}

func (s *stubAuth) Register(_ context.Context, email, password string) (*models.Profile, error) {
	return s.registerFn(email, password)
}

func (s *stubAuth) Login(_ context.Context, email, password string) (*models.LoginResult, error) {
	return s.loginFn(email, password)
}

func (s *stubAuth) Refresh(_ context.Context, token string) (string, error) {
	return s.refreshFn(token)
}

func (s *stubAuth) Logout(_ context.Context, token string) error {
	return s.logoutFn(token)
}

type stubUsers struct {
	profileFn func(userID int64) (*models.Profile, error)
}

func (s *stubUsers) Profile(_ context.Context, userID int64) (*models.Profile, error) {
	return s.profileFn(userID)
}

func (s *stubUsers) UpdateProfile(_ context.Context, userID int64, _ models.UserUpdate) (*models.Profile, error) {
	return s.profileFn(userID)
}

type stubAvatars struct{}

func (stubAvatars) Create(_ context.Context, userID int64, input avatar.CreateInput) (*models.Avatar, error) {
	return &models.Avatar{ID: "a1", UserID: userID, Name: input.Name}, nil
}

func (stubAvatars) List(_ context.Context, _ int64) ([]*models.Avatar, error) {
	return []*models.Avatar{}, nil
}

func (stubAvatars) Get(_ context.Context, id string) (*models.Avatar, error) {
	return nil, apperr.NotFound("Avatar not found")
}

func (stubAvatars) Update(_ context.Context, id string, userID int64, upd models.AvatarUpdate) (*models.Avatar, error) {
	av := &models.Avatar{ID: id, UserID: userID, Name: "Kael", Weapon: "Sword"}
	if upd.Weapon != nil {
		av.Weapon = *upd.Weapon
	}
	return av, nil
}

func (stubAvatars) Delete(_ context.Context, _ string, _ int64) error {
	return nil
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, auth *stubAuth, users *stubUsers) (http.Handler, *jwtlib.Manager) {
	t.Helper()

	tokens := jwtlib.NewManager(jwtlib.Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
	})
	logger := newDiscardLogger()

	return NewRouter(logger, auth, users, stubAvatars{}, tokens), tokens
}

func doJSON(t *testing.T, h http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterReturnsCreated(t *testing.T) {
	auth := &stubAuth{
		registerFn: func(email, _ string) (*models.Profile, error) {
			return &models.Profile{ID: 1, Email: email}, nil
		},
	}
	router, _ := newTestRouter(t, auth, &stubUsers{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"email":"a@x.com","password":"pw"}`, "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "a@x.com", body["email"])
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	router, _ := newTestRouter(t, &stubAuth{}, &stubUsers{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"password":"pw"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"email":"a@x.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(apperr.KindValidation), decodeBody(t, rec)["code"])
}

func TestRegisterConflict(t *testing.T) {
	auth := &stubAuth{
		registerFn: func(_, _ string) (*models.Profile, error) {
			return nil, apperr.Conflict("User with this email already exists")
		},
	}
	router, _ := newTestRouter(t, auth, &stubUsers{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"email":"a@x.com","password":"pw"}`, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User with this email already exists", decodeBody(t, rec)["error"])
}

func TestLoginMapsAuthenticationError(t *testing.T) {
	auth := &stubAuth{
		loginFn: func(_, _ string) (*models.LoginResult, error) {
			return nil, apperr.Authentication("Invalid credentials")
		},
	}
	router, _ := newTestRouter(t, auth, &stubUsers{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		`{"email":"unknown@x.com","password":"pw"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid credentials", body["error"])
	assert.Equal(t, string(apperr.KindAuthentication), body["code"])
}

func TestLoginInternalErrorIsMasked(t *testing.T) {
	auth := &stubAuth{
		loginFn: func(_, _ string) (*models.LoginResult, error) {
			return nil, apperr.Internal("Error logging user", assert.AnError)
		},
	}
	router, _ := newTestRouter(t, auth, &stubUsers{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"pw"}`, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rec)["error"])
}

func TestRefreshMapsInvalidToken(t *testing.T) {
	auth := &stubAuth{
		refreshFn: func(_ string) (string, error) {
			return "", apperr.InvalidToken("Invalid refresh token")
		},
	}
	router, _ := newTestRouter(t, auth, &stubUsers{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh",
		`{"refreshToken":"stale"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(apperr.KindInvalidToken), decodeBody(t, rec)["code"])
}

func TestLogoutReturnsSuccess(t *testing.T) {
	auth := &stubAuth{
		logoutFn: func(_ string) error { return nil },
	}
	router, _ := newTestRouter(t, auth, &stubUsers{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/logout",
		`{"refreshToken":"live"}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
}

func TestProtectedRoutesRequireAccessToken(t *testing.T) {
	router, tokens := newTestRouter(t, &stubAuth{}, &stubUsers{
		profileFn: func(userID int64) (*models.Profile, error) {
			return &models.Profile{ID: userID, Email: "a@x.com"}, nil
		},
	})

	rec := doJSON(t, router, http.MethodGet, "/api/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/users/me", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	accessToken, err := tokens.NewAccessToken(&models.User{ID: 7, Email: "a@x.com"})
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodGet, "/api/users/me", "", accessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(7), decodeBody(t, rec)["id"])
}

func TestAvatarValidationAtTheEdge(t *testing.T) {
	router, tokens := newTestRouter(t, &stubAuth{}, &stubUsers{})

	accessToken, err := tokens.NewAccessToken(&models.User{ID: 7, Email: "a@x.com"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/avatars",
		`{"name":"Kael","weapon":"Spoon","clothes":"robe","hairColor":"red","gender":"Male","genre":"Fantasy","imageUrl":"http://img"}`,
		accessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid weapon", decodeBody(t, rec)["error"])

	rec = doJSON(t, router, http.MethodPost, "/api/avatars",
		`{"name":"Kael","weapon":"Sword","clothes":"robe","hairColor":"red","gender":"Male","genre":"Fantasy","imageUrl":"http://img"}`,
		accessToken)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAvatarUpdateValidatesAndApplies(t *testing.T) {
	router, tokens := newTestRouter(t, &stubAuth{}, &stubUsers{})

	accessToken, err := tokens.NewAccessToken(&models.User{ID: 7, Email: "a@x.com"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPatch, "/api/avatars/a1",
		`{"weapon":"Spoon"}`, accessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid weapon", decodeBody(t, rec)["error"])

	rec = doJSON(t, router, http.MethodPatch, "/api/avatars/a1",
		`{"weapon":"Bow"}`, accessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "a1", body["id"])
	assert.Equal(t, "Bow", body["weapon"])
	assert.Equal(t, "Kael", body["name"])
}

func TestAvatarNotFound(t *testing.T) {
	router, tokens := newTestRouter(t, &stubAuth{}, &stubUsers{})

	accessToken, err := tokens.NewAccessToken(&models.User{ID: 7, Email: "a@x.com"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/avatars/missing", "", accessToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
