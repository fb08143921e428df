package models

import "time"

// Account is a platform auth user with its password hash.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// RefreshToken is a server-stored opaque refresh token.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
