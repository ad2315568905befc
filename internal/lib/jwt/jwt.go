// Package jwt issues and verifies the signed access and refresh tokens.
// Access and refresh tokens are signed with distinct secrets, so a token
// of one kind never parses as the other.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"avatarium/internal/domain/models"
)

// ErrInvalidToken covers every verification failure: bad signature,
// expiry, wrong algorithm, or claims of the wrong shape.
var ErrInvalidToken = errors.New("invalid token")

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Config holds the process-wide signing configuration, loaded once at
// startup and passed in explicitly.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewManager(cfg Config) *Manager {
	m := &Manager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
	if m.accessTTL <= 0 {
		m.accessTTL = defaultAccessTTL
	}
	if m.refreshTTL <= 0 {
		m.refreshTTL = defaultRefreshTTL
	}
	return m
}

// NewAccessToken signs a short-lived token carrying the user id and email.
func (m *Manager) NewAccessToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   user.ID,
		"email": user.Email,
		"exp":   m.now().Add(m.accessTTL).Unix(),
	})
	return token.SignedString(m.accessSecret)
}

// NewRefreshToken signs a long-lived token carrying only the user id.
func (m *Manager) NewRefreshToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": userID,
		"exp": m.now().Add(m.refreshTTL).Unix(),
	})
	return token.SignedString(m.refreshSecret)
}

// ParseAccessToken verifies an access token and returns its user id and email.
func (m *Manager) ParseAccessToken(tokenString string) (int64, string, error) {
	claims, err := m.parse(tokenString, m.accessSecret)
	if err != nil {
		return 0, "", err
	}

	uid, ok := claims["uid"].(float64)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok {
		return 0, "", ErrInvalidToken
	}

	return int64(uid), email, nil
}

// ParseRefreshToken verifies a refresh token and returns its user id.
// Signature validity alone does not make the token usable; the caller
// must also find a live store record for it.
func (m *Manager) ParseRefreshToken(tokenString string) (int64, error) {
	claims, err := m.parse(tokenString, m.refreshSecret)
	if err != nil {
		return 0, err
	}

	uid, ok := claims["uid"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return int64(uid), nil
}

func (m *Manager) parse(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
