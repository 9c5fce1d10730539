// Package blob handles image objects kept in the external object store:
// turning download URLs into storage keys, talking to the store, and
// best-effort cleanup after records are removed.
package blob

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Resolver derives storage keys from download URLs of the form
// <base><marker><percent-encoded key>?<query>.
type Resolver struct {
	marker string
}

func NewResolver(marker string) *Resolver {
	return &Resolver{marker: marker}
}

// Key returns the storage key encoded in rawURL. ok is false when the URL
// does not have the expected shape.
func (r *Resolver) Key(rawURL string) (key string, ok bool) {
	if rawURL == "" || r.marker == "" {
		return "", false
	}

	path, _, _ := strings.Cut(rawURL, "?")

	i := strings.LastIndex(path, r.marker)
	if i < 0 {
		return "", false
	}

	encoded := path[i+len(r.marker):]
	if encoded == "" {
		return "", false
	}

	key, err := url.PathUnescape(encoded)
	if err != nil || key == "" {
		return "", false
	}

	return key, true
}

// URL builds the download URL for key under base. Key(URL(base, k)) == k.
func (r *Resolver) URL(base, key string) string {
	return strings.TrimRight(base, "/") + r.marker + url.PathEscape(key) + "?alt=media"
}

// NewStorageKey returns a fresh object key for an upload by the given user.
func NewStorageKey(userID int64) string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%d/%v.jpg", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}
