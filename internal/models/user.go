// Package models holds the domain types shared by the stores, the backend
// contract and the CLI.
package models

// User is the authenticated identity. Username comes from the linked profile
// record and may be empty when the profile could not be resolved.
type User struct {
	ID       string
	Email    string
	Username string
}

// DisplayName returns the username, or the email when no username is known.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
