package models

// User is the stored account record. PassHash holds the encoded
// "salt:hash" credential string and must never leave the service layer.
type User struct {
	ID          int64
	Email       string
	PassHash    string
	Name        string
	Bio         string
	Location    string
	PhoneNumber string
	SocialLinks SocialLinks
	Preferences Preferences
	AvatarIDs   []string
}

type SocialLinks struct {
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

type Preferences struct {
	Theme         string `json:"theme,omitempty"`
	Notifications bool   `json:"notifications,omitempty"`
}

// Profile is the sanitized view of a user returned to callers.
type Profile struct {
	ID          int64       `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name,omitempty"`
	Bio         string      `json:"bio,omitempty"`
	Location    string      `json:"location,omitempty"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	SocialLinks SocialLinks `json:"socialLinks"`
	Preferences Preferences `json:"preferences"`
	AvatarIDs   []string    `json:"avatars,omitempty"`
}

// Profile strips the credential hash from a user record.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Bio:         u.Bio,
		Location:    u.Location,
		PhoneNumber: u.PhoneNumber,
		SocialLinks: u.SocialLinks,
		Preferences: u.Preferences,
		AvatarIDs:   u.AvatarIDs,
	}
}

// UserUpdate carries a partial profile update. Nil fields are left untouched.
type UserUpdate struct {
	Name        *string
	Bio         *string
	Location    *string
	PhoneNumber *string
	SocialLinks *SocialLinksUpdate
	Preferences *PreferencesUpdate
}

type SocialLinksUpdate struct {
	Twitter   *string
	Facebook  *string
	Instagram *string
	LinkedIn  *string
}

type PreferencesUpdate struct {
	Theme         *string
	Notifications *bool
}
