// Package storage defines the interface for object storage operations.
// The MinIO implementation works with any S3-compatible provider; the GCS
// implementation talks to Google Cloud Storage directly.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"
)

// ErrAlreadyExists is returned when uploading to a key that is already taken.
var ErrAlreadyExists = errors.New("object already exists")

// Object describes one stored file inside a folder.
type Object struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Storage is the interface for listing, uploading, and removing objects.
type Storage interface {
	// List returns the files directly inside folder in the store's listing order.
	List(ctx context.Context, folder string) ([]Object, error)
	// Upload streams data to the store under the given key. It fails with
	// ErrAlreadyExists instead of overwriting.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Remove deletes every object identified by keys.
	Remove(ctx context.Context, keys ...string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}

// folderPrefix turns "Listen Up" into "Listen Up/".
func folderPrefix(folder string) string {
	return strings.TrimSuffix(folder, "/") + "/"
}

// entryName returns the file name for key under prefix, or "" when the key
// is a nested object or a placeholder that should not be listed.
func entryName(prefix, key string) string {
	name := strings.TrimPrefix(key, prefix)
	if name == "" || strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
		return ""
	}
	return name
}

// joinURL appends key to base, escaping each path segment.
func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
