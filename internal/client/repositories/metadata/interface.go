// Package metadata is the local key-value cache backed by SQLite. It keeps
// the persisted auth session and the legacy bookmark list.
package metadata

import "context"

// Well-known keys.
const (
	KeySession   = "session"
	KeyBookmarks = "bookmarks"
)

// BookmarksKey is the key holding userID's local bookmark list. Lists are
// kept per user so one account never reads another's.
func BookmarksKey(userID string) string {
	return KeyBookmarks + ":" + userID
}

// Repository is a byte-valued key-value store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
