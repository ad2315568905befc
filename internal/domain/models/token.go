package models

import "time"

// RefreshToken represents a refresh token stored in the database.
// One record exists per active session; concurrent sessions for the
// same user each get their own record.
type RefreshToken struct {
	UserID    int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
