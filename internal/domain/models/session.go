package models

// SessionUser is the slim user payload returned alongside freshly issued tokens.
type SessionUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is the success payload of a login.
type LoginResult struct {
	User   SessionUser `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}
