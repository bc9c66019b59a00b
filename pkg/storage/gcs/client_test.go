package gcs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		httpClient:    srv.Client(),
		apiBase:       srv.URL,
		defaultBucket: "photos",
	}
}

func TestBucketUpload(t *testing.T) {
	var gotBody, gotName, gotType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload/storage/v1/b/photos/o", r.URL.Path)
		gotName = r.URL.Query().Get("name")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"name":"x"}`))
	})

	err := client.BucketHandle("").Upload(context.Background(), "profile-photos/a.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "profile-photos/a.png", gotName)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png-bytes", gotBody)
}

func TestBucketUploadSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})

	err := client.BucketHandle("photos").Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestBucketDeleteTreatsMissingAsDone(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/storage/v1/b/photos/o/profile-photos%2Fa.png", r.URL.EscapedPath())
		if calls == 1 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	bucket := client.BucketHandle("")
	require.NoError(t, bucket.Delete(context.Background(), "profile-photos/a.png"))
	require.NoError(t, bucket.Delete(context.Background(), "profile-photos/a.png"))
	assert.Equal(t, 2, calls)
}

func TestPingChecksBucketAccess(t *testing.T) {
	status := http.StatusOK
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/v1/b/photos/o", r.URL.Path)
		w.WriteHeader(status)
	})

	require.NoError(t, client.Ping(context.Background()))
	status = http.StatusForbidden
	require.Error(t, client.Ping(context.Background()))
}

func TestClientOptionsPreferInlineCredentials(t *testing.T) {
	assert.Len(t, clientOptions(config.GCPConfig{}), 1)
	assert.Len(t, clientOptions(config.GCPConfig{CredentialsJSON: "{}", ApplicationCredentials: "/tmp/key.json"}), 2)
	assert.Len(t, clientOptions(config.GCPConfig{ApplicationCredentials: "/tmp/key.json", ProjectID: "p"}), 3)
}

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := NewClient(context.Background(), "", config.GCPConfig{}, nil)
	require.Error(t, err)
}
