package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// GCSPublicBase is the public endpoint for objects in a public GCS bucket.
const GCSPublicBase = "https://storage.googleapis.com"

// GCSStorage implements Storage on a Google Cloud Storage bucket.
type GCSStorage struct {
	bucket     *gcs.BucketHandle
	publicBase string
}

// NewGCSStorage wraps bucket on client. An empty publicBase defaults to
// https://storage.googleapis.com/<bucket>.
func NewGCSStorage(client *gcs.Client, bucket, publicBase string) *GCSStorage {
	if publicBase == "" {
		publicBase = GCSPublicBase + "/" + bucket
	}
	return &GCSStorage{bucket: client.Bucket(bucket), publicBase: publicBase}
}

// List returns the objects directly under folder, in name order.
func (s *GCSStorage) List(ctx context.Context, folder string) ([]Object, error) {
	prefix := folderPrefix(folder)
	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: prefix, Delimiter: "/"})

	var out []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", folder, err)
		}
		name := entryName(prefix, attrs.Name)
		if name == "" {
			continue
		}
		out = append(out, Object{Name: name, Size: attrs.Size, LastModified: attrs.Updated})
	}
	return out, nil
}

// Upload writes reader to key only if the object does not exist yet.
func (s *GCSStorage) Upload(ctx context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	w := s.bucket.Object(key).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", key, preconditionErr(err))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %q: %w", key, preconditionErr(err))
	}
	return nil
}

// Remove deletes each key in turn, stopping at the first failure.
func (s *GCSStorage) Remove(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := s.bucket.Object(k).Delete(ctx); err != nil {
			return fmt.Errorf("delete object %q: %w", k, err)
		}
	}
	return nil
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *GCSStorage) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

func preconditionErr(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return ErrAlreadyExists
	}
	return err
}
