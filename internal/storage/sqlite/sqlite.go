package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"avatarium/internal/domain/models"
	"avatarium/internal/storage"
)

type Storage struct {
	db *sql.DB
}

// New returns a new instance of the Storage. The schema is managed by
// cmd/migrator.
func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Storage) SaveUser(ctx context.Context, email string, passHash string) (int64, error) {
	const op = "storage.sqlite.SaveUser"

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, pass_hash) VALUES (?, ?)",
		email, passHash,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrUserAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return result.LastInsertId()
}

const userColumns = `id, email, pass_hash, name, bio, location, phone_number,
	social_twitter, social_facebook, social_instagram, social_linkedin,
	pref_theme, pref_notifications`

func (s *Storage) User(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.sqlite.User"

	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)

	return s.scanUser(ctx, op, row)
}

func (s *Storage) UserByID(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.sqlite.UserByID"

	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", userID)

	return s.scanUser(ctx, op, row)
}

func (s *Storage) scanUser(ctx context.Context, op string, row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PassHash, &user.Name, &user.Bio,
		&user.Location, &user.PhoneNumber,
		&user.SocialLinks.Twitter, &user.SocialLinks.Facebook,
		&user.SocialLinks.Instagram, &user.SocialLinks.LinkedIn,
		&user.Preferences.Theme, &user.Preferences.Notifications,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM avatars WHERE user_id = ?", user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.AvatarIDs = append(user.AvatarIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (s *Storage) UpdateUser(ctx context.Context, userID int64, upd models.UserUpdate) (*models.User, error) {
	const op = "storage.sqlite.UpdateUser"

	var set []string
	var args []any
	appendSet := func(column string, val *string) {
		if val != nil {
			set = append(set, column+" = ?")
			args = append(args, *val)
		}
	}
	appendSet("name", upd.Name)
	appendSet("bio", upd.Bio)
	appendSet("location", upd.Location)
	appendSet("phone_number", upd.PhoneNumber)
	if upd.SocialLinks != nil {
		appendSet("social_twitter", upd.SocialLinks.Twitter)
		appendSet("social_facebook", upd.SocialLinks.Facebook)
		appendSet("social_instagram", upd.SocialLinks.Instagram)
		appendSet("social_linkedin", upd.SocialLinks.LinkedIn)
	}
	if upd.Preferences != nil {
		appendSet("pref_theme", upd.Preferences.Theme)
		if upd.Preferences.Notifications != nil {
			set = append(set, "pref_notifications = ?")
			args = append(args, *upd.Preferences.Notifications)
		}
	}

	if len(set) > 0 {
		args = append(args, userID)
		query := "UPDATE users SET " + strings.Join(set, ", ") + " WHERE id = ?"
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
	}

	return s.UserByID(ctx, userID)
}

func (s *Storage) SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	const op = "storage.sqlite.SaveRefreshToken"

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)",
		token, userID, time.Now(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) RefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const op = "storage.sqlite.RefreshToken"

	row := s.db.QueryRowContext(ctx,
		"SELECT token, user_id, created_at, expires_at FROM refresh_tokens WHERE token = ?",
		token,
	)

	var rec models.RefreshToken
	err := row.Scan(&rec.Token, &rec.UserID, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &rec, nil
}

func (s *Storage) DeleteRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const op = "storage.sqlite.DeleteRefreshToken"

	row := s.db.QueryRowContext(ctx,
		`DELETE FROM refresh_tokens WHERE token = ?
		 RETURNING token, user_id, created_at, expires_at`,
		token,
	)

	var rec models.RefreshToken
	err := row.Scan(&rec.Token, &rec.UserID, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &rec, nil
}

func (s *Storage) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.sqlite.DeleteExpiredTokens"

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ?", now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (s *Storage) SaveAvatar(ctx context.Context, avatar *models.Avatar) error {
	const op = "storage.sqlite.SaveAvatar"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO avatars
		 (id, user_id, name, weapon, clothes, hair_color, facial_hair, gender, genre, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		avatar.ID, avatar.UserID, avatar.Name, avatar.Weapon, avatar.Clothes,
		avatar.HairColor, avatar.FacialHair, avatar.Gender, avatar.Genre,
		avatar.ImageURL, avatar.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

const avatarColumns = "id, user_id, name, weapon, clothes, hair_color, facial_hair, gender, genre, image_url, created_at"

func (s *Storage) Avatar(ctx context.Context, id string) (*models.Avatar, error) {
	const op = "storage.sqlite.Avatar"

	row := s.db.QueryRowContext(ctx,
		"SELECT "+avatarColumns+" FROM avatars WHERE id = ?", id)

	var a models.Avatar
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Weapon, &a.Clothes,
		&a.HairColor, &a.FacialHair, &a.Gender, &a.Genre, &a.ImageURL, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAvatarNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &a, nil
}

func (s *Storage) AvatarsByUser(ctx context.Context, userID int64) ([]*models.Avatar, error) {
	const op = "storage.sqlite.AvatarsByUser"

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+avatarColumns+" FROM avatars WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var avatars []*models.Avatar
	for rows.Next() {
		var a models.Avatar
		err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Weapon, &a.Clothes,
			&a.HairColor, &a.FacialHair, &a.Gender, &a.Genre, &a.ImageURL, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		avatars = append(avatars, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return avatars, nil
}

func (s *Storage) UpdateAvatar(ctx context.Context, id string, userID int64, upd models.AvatarUpdate) (*models.Avatar, error) {
	const op = "storage.sqlite.UpdateAvatar"

	var set []string
	var args []any
	appendSet := func(column string, val *string) {
		if val != nil {
			set = append(set, column+" = ?")
			args = append(args, *val)
		}
	}
	appendSet("name", upd.Name)
	appendSet("weapon", upd.Weapon)
	appendSet("clothes", upd.Clothes)
	appendSet("hair_color", upd.HairColor)
	appendSet("gender", upd.Gender)
	appendSet("genre", upd.Genre)
	appendSet("image_url", upd.ImageURL)
	if upd.FacialHair != nil {
		set = append(set, "facial_hair = ?")
		args = append(args, *upd.FacialHair)
	}

	if len(set) > 0 {
		args = append(args, id, userID)
		query := "UPDATE avatars SET " + strings.Join(set, ", ") + " WHERE id = ? AND user_id = ?"
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAvatarNotFound)
		}
	}

	av, err := s.Avatar(ctx, id)
	if err != nil {
		return nil, err
	}
	if av.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAvatarNotFound)
	}
	return av, nil
}

func (s *Storage) DeleteAvatar(ctx context.Context, id string, userID int64) error {
	const op = "storage.sqlite.DeleteAvatar"

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM avatars WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAvatarNotFound)
	}

	return nil
}
