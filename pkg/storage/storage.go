// Package storage keeps uploaded files behind one interface so the profile flow
// does not care whether photos live on local disk or in a GCS bucket.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrForeignURL is returned when a URL does not point into the store.
var ErrForeignURL = errors.New("url is not managed by this store")

// ObjectStore saves and removes uploaded objects addressed by key.
type ObjectStore interface {
	// Put writes body under key and returns the public URL for it.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// KeyFor maps a public URL produced by Put back to its key.
	KeyFor(publicURL string) (string, error)
}
