package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/recipebox/internal/backend"
)

const (
	MsgLoginSuccess    = "Login successful"
	MsgRegisterSuccess = "Welcome to KokoChef!"
	MsgLogoutSuccess   = "You have been logged out"
	MsgRecipeAdded     = "Recipe added"
	MsgRecipeUpdated   = "Recipe updated"
	MsgRecipeDeleted   = "Recipe deleted"
	MsgBookmarkAdded   = "Added to bookmarks"
	MsgBookmarkRemoved = "Removed from bookmarks"

	MsgInvalidCredentials = "Invalid email or password."
	MsgDuplicateAccount   = "This email is already registered."
	MsgWeakPassword       = "Password must be at least 6 characters."
	MsgInvalidEmail       = "Invalid email format."
	MsgNotAuthenticated   = "Please log in first."
	MsgRecipeNotFound     = "Recipe not found."
	MsgUploadFailed       = "Image upload failed. Please try again."
	MsgGeneric            = "Something went wrong. Please try again."
)

// Message turns err into text fit for a toast. Unknown auth messages are
// shown as the platform reported them.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var authErr *AuthError
	var valErr *ValidationError
	var upErr *StorageUploadError

	switch {
	case errors.As(err, &authErr):
		switch authErr.Kind {
		case InvalidCredentials:
			return MsgInvalidCredentials
		case DuplicateAccount:
			return MsgDuplicateAccount
		case WeakPassword:
			return MsgWeakPassword
		case InvalidEmail:
			return MsgInvalidEmail
		}
		if authErr.Message != "" {
			return authErr.Message
		}
		return MsgGeneric
	case errors.As(err, &valErr):
		return capitalize(valErr.Error()) + "."
	case errors.As(err, &upErr):
		return MsgUploadFailed
	case errors.Is(err, ErrNotAuthenticated):
		return MsgNotAuthenticated
	case errors.Is(err, ErrRecipeNotFound), errors.Is(err, backend.ErrNotFound):
		return MsgRecipeNotFound
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	default:
		return MsgGeneric
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
