package backend

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/models"
)

// Session is an authenticated platform session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
}

// Expired reports whether the access token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

type SessionEvent string

const (
	EventSignedIn       SessionEvent = "SIGNED_IN"
	EventSignedOut      SessionEvent = "SIGNED_OUT"
	EventTokenRefreshed SessionEvent = "TOKEN_REFRESHED"
)

// SessionChange is delivered to OnSessionChange listeners. Session is nil
// for EventSignedOut.
type SessionChange struct {
	Event   SessionEvent
	Session *Session
}

type SessionListener func(change SessionChange)

// Auth is the platform's authentication API.
type Auth interface {
	// SignUp creates an account and signs it in.
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignOut ends the current session. The local session is dropped even
	// when the remote revocation fails.
	SignOut(ctx context.Context) error
	// GetSession returns the current session or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)
	// OnSessionChange registers fn for session changes, including those the
	// platform initiates (refresh, expiry). Call the returned func to stop.
	OnSessionChange(fn SessionListener) (unsubscribe func())
}

// Profiles is the "profiles" table keyed by user id.
type Profiles interface {
	Username(ctx context.Context, userID string) (string, error)
	Create(ctx context.Context, userID, username string) error
	Bookmarks(ctx context.Context, userID string) ([]string, error)
	SetBookmarks(ctx context.Context, userID string, recipeIDs []string) error
}

// Recipes is the "recipes" table.
type Recipes interface {
	// List returns every recipe joined with its creator's username, newest first.
	List(ctx context.Context) ([]models.Recipe, error)
	Insert(ctx context.Context, r models.NewRecipe) (string, error)
	Update(ctx context.Context, id string, patch models.RecipePatch) error
	Delete(ctx context.Context, id string) error
	Likes(ctx context.Context, id string) (int, error)
	SetLikes(ctx context.Context, id string, likes int) error
}

// BookmarkWriter is implemented by platforms that can store a user's
// bookmark list and adjust the recipe's like counter atomically.
type BookmarkWriter interface {
	ApplyBookmark(ctx context.Context, userID, recipeID string, bookmarks []string, likesDelta int) error
}

// Storage is binary object storage with public URLs.
type Storage interface {
	Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) error
	PublicURL(bucket, path string) string
}
