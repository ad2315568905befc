package avatar

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avatarium/internal/apperr"
	"avatarium/internal/domain/models"
	"avatarium/internal/storage"
)

type fakeStore struct {
	avatars map[string]*models.Avatar
}

func newFakeStore() *fakeStore {
	return &fakeStore{avatars: make(map[string]*models.Avatar)}
}

func (f *fakeStore) SaveAvatar(_ context.Context, avatar *models.Avatar) error {
	f.avatars[avatar.ID] = avatar
	return nil
}

func (f *fakeStore) Avatar(_ context.Context, id string) (*models.Avatar, error) {
	av, ok := f.avatars[id]
	if !ok {
		return nil, storage.ErrAvatarNotFound
	}
	return av, nil
}

func (f *fakeStore) AvatarsByUser(_ context.Context, userID int64) ([]*models.Avatar, error) {
	var out []*models.Avatar
	for _, av := range f.avatars {
		if av.UserID == userID {
			out = append(out, av)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAvatar(_ context.Context, id string, userID int64, upd models.AvatarUpdate) (*models.Avatar, error) {
	av, ok := f.avatars[id]
	if !ok || av.UserID != userID {
		return nil, storage.ErrAvatarNotFound
	}
	if upd.Name != nil {
		av.Name = *upd.Name
	}
	if upd.Weapon != nil {
		av.Weapon = *upd.Weapon
	}
	if upd.FacialHair != nil {
		av.FacialHair = *upd.FacialHair
	}
	return av, nil
}

func (f *fakeStore) DeleteAvatar(_ context.Context, id string, userID int64) error {
	av, ok := f.avatars[id]
	if !ok || av.UserID != userID {
		return storage.ErrAvatarNotFound
	}
	delete(f.avatars, id)
	return nil
}

var testClock = func() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(store *fakeStore) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, store, testClock)
}

func TestCreateAssignsIDAndTimestamp(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	av, err := s.Create(context.Background(), 7, CreateInput{
		Name:      "Kael",
		Weapon:    "Sword",
		Clothes:   "robe",
		HairColor: "red",
		Gender:    "Male",
		Genre:     "Fantasy",
		ImageURL:  "http://img",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(av.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), av.UserID)
	assert.Equal(t, testClock(), av.CreatedAt)

	got, err := s.Get(context.Background(), av.ID)
	require.NoError(t, err)
	assert.Equal(t, av, got)
}

func TestListReturnsOnlyOwnedAvatars(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	_, err := s.Create(context.Background(), 1, CreateInput{Name: "Mine", Weapon: "Bow", Gender: "Other", Genre: "Sci-Fi"})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), 2, CreateInput{Name: "Theirs", Weapon: "Axe", Gender: "Female", Genre: "Fantasy"})
	require.NoError(t, err)

	avatars, err := s.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, avatars, 1)
	assert.Equal(t, "Mine", avatars[0].Name)
}

func TestGetNotFound(t *testing.T) {
	s := newTestService(newFakeStore())

	_, err := s.Get(context.Background(), "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateAppliesPartialUpdate(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	av, err := s.Create(context.Background(), 1, CreateInput{Name: "Kael", Weapon: "Sword", Gender: "Male", Genre: "Fantasy"})
	require.NoError(t, err)

	weapon := "Bow"
	facialHair := true
	got, err := s.Update(context.Background(), av.ID, 1, models.AvatarUpdate{
		Weapon:     &weapon,
		FacialHair: &facialHair,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bow", got.Weapon)
	assert.True(t, got.FacialHair)
	assert.Equal(t, "Kael", got.Name)
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	av, err := s.Create(context.Background(), 1, CreateInput{Name: "Kael", Weapon: "Sword", Gender: "Male", Genre: "Fantasy"})
	require.NoError(t, err)

	name := "Stolen"
	_, err = s.Update(context.Background(), av.ID, 2, models.AvatarUpdate{Name: &name})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	got, err := s.Get(context.Background(), av.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kael", got.Name)
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	store := newFakeStore()
	s := newTestService(store)

	av, err := s.Create(context.Background(), 1, CreateInput{Name: "Kael", Weapon: "Sword", Gender: "Male", Genre: "Fantasy"})
	require.NoError(t, err)

	err = s.Delete(context.Background(), av.ID, 2)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, s.Delete(context.Background(), av.ID, 1))

	err = s.Delete(context.Background(), av.ID, 1)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
