package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avatarium/internal/apperr"
	"avatarium/internal/domain/models"
	"avatarium/internal/storage"
)

type fakeUsers struct {
	users map[int64]*models.User
	err   error
}

func (f *fakeUsers) UserByID(_ context.Context, userID int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, userID int64, upd models.UserUpdate) (*models.User, error) {
	u, err := f.UserByID(context.Background(), userID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Preferences != nil && upd.Preferences.Theme != nil {
		u.Preferences.Theme = *upd.Preferences.Theme
	}
	return u, nil
}

func newTestService(f *fakeUsers) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, f, f)
}

func TestProfileStripsPassHash(t *testing.T) {
	f := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Email: "a@x.com", PassHash: "salt:hash", Name: "Ada"},
	}}
	s := newTestService(f)

	profile, err := s.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.ID)
	assert.Equal(t, "a@x.com", profile.Email)
	assert.Equal(t, "Ada", profile.Name)
}

func TestProfileNotFound(t *testing.T) {
	s := newTestService(&fakeUsers{users: map[int64]*models.User{}})

	_, err := s.Profile(context.Background(), 99)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestProfileStoreFailureIsInternal(t *testing.T) {
	s := newTestService(&fakeUsers{err: errors.New("timeout")})

	_, err := s.Profile(context.Background(), 1)
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
}

func TestUpdateProfileAppliesPartialUpdate(t *testing.T) {
	f := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Email: "a@x.com", Name: "Ada", Bio: "old bio"},
	}}
	s := newTestService(f)

	name := "Grace"
	theme := "dark"
	profile, err := s.UpdateProfile(context.Background(), 1, models.UserUpdate{
		Name:        &name,
		Preferences: &models.PreferencesUpdate{Theme: &theme},
	})
	require.NoError(t, err)

	assert.Equal(t, "Grace", profile.Name)
	assert.Equal(t, "old bio", profile.Bio)
	assert.Equal(t, "dark", profile.Preferences.Theme)
}

func TestUpdateProfileNotFound(t *testing.T) {
	s := newTestService(&fakeUsers{users: map[int64]*models.User{}})

	name := "Grace"
	_, err := s.UpdateProfile(context.Background(), 42, models.UserUpdate{Name: &name})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
