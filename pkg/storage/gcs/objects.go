package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"google.golang.org/api/googleapi"
)

// Upload writes body as object using a single media upload request.
func (b *Bucket) Upload(ctx context.Context, object, contentType string, body io.Reader) error {
	if object == "" {
		return errors.New("object name required")
	}
	q := url.Values{}
	q.Set("uploadType", "media")
	q.Set("name", object)
	u := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?%s", b.client.apiBase, url.PathEscape(b.name), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := b.client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", object, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return fmt.Errorf("upload %s: %w", object, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Delete removes object. A missing object counts as deleted.
func (b *Bucket) Delete(ctx context.Context, object string) error {
	if object == "" {
		return errors.New("object name required")
	}
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", b.client.apiBase, url.PathEscape(b.name), url.PathEscape(object))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", object, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete %s: %w", object, err)
	}
	return nil
}
