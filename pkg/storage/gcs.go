package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
)

type bucket interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) error
	Delete(ctx context.Context, object string) error
	Name() string
}

// GCSStore keeps objects in a bucket served from publicHost.
type GCSStore struct {
	bucket    bucket
	urlPrefix string
}

func NewGCSStore(client *gcs.Client, publicHost string) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("gcs client required")
	}
	return newGCSStore(client.BucketHandle(""), publicHost), nil
}

func newGCSStore(b bucket, publicHost string) *GCSStore {
	return &GCSStore{
		bucket:    b,
		urlPrefix: strings.TrimRight(publicHost, "/") + "/" + b.Name() + "/",
	}
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if err := s.bucket.Upload(ctx, key, contentType, body); err != nil {
		return "", err
	}
	return s.urlPrefix + key, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	return s.bucket.Delete(ctx, key)
}

func (s *GCSStore) KeyFor(publicURL string) (string, error) {
	if !strings.HasPrefix(publicURL, s.urlPrefix) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(publicURL, s.urlPrefix)
	if key == "" {
		return "", ErrForeignURL
	}
	return key, nil
}
