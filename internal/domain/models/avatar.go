package models

import "time"

// Avatar is a character record owned by a user.
type Avatar struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"-"`
	Name       string    `json:"name"`
	Weapon     string    `json:"weapon"`
	Clothes    string    `json:"clothes"`
	HairColor  string    `json:"hairColor"`
	FacialHair bool      `json:"facialHair"`
	Gender     string    `json:"gender"`
	Genre      string    `json:"genre"`
	ImageURL   string    `json:"imageUrl"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AvatarUpdate carries a partial avatar update. Nil fields are left untouched.
type AvatarUpdate struct {
	Name       *string
	Weapon     *string
	Clothes    *string
	HairColor  *string
	FacialHair *bool
	Gender     *string
	Genre      *string
	ImageURL   *string
}

var (
	AvatarWeapons = []string{"Sword", "Bow", "Staff", "Dagger", "Axe", "Gun"}
	AvatarGenders = []string{"Male", "Female", "Non-binary", "Other"}
	AvatarGenres  = []string{"Fantasy", "Sci-Fi", "Steampunk", "Cyberpunk", "Historical"}
)
