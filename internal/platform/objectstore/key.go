package objectstore

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// NewObjectKey returns a fresh "<prefix>/<uuid><ext>" key. The extension is
// taken from the original file name and lower-cased.
func NewObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	key := uuid.NewString() + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			out += "/" + p
		}
	}
	return out
}
