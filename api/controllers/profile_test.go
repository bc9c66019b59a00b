package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/profile"
	"github.com/angelmondragon/storefront-backend/internal/users"
)

type stubProfileService struct {
	input     profile.UpdateInput
	photoData []byte
	removed   bool
}

func (s *stubProfileService) Get(_ context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (s *stubProfileService) Update(_ context.Context, userID uuid.UUID, input profile.UpdateInput) (*users.UserDTO, error) {
	s.input = input
	if input.Photo != nil {
		data, err := io.ReadAll(input.Photo.Body)
		if err != nil {
			return nil, err
		}
		s.photoData = data
	}
	return &users.UserDTO{ID: userID, Name: input.Name}, nil
}

func (s *stubProfileService) RemovePhoto(_ context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	s.removed = true
	return &users.UserDTO{ID: userID}, nil
}

func multipartProfileRequest(t *testing.T, fields map[string]string, photo []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if photo != nil {
		part, err := writer.CreateFormFile("photo", "me.png")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/profile", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestProfileUpdateParsesForm(t *testing.T) {
	svc := &stubProfileService{}
	req := multipartProfileRequest(t, map[string]string{
		"name":     "  Ada ",
		"lastname": "Lovelace",
		"email":    "ada@example.com",
		"phone":    "555",
		"city":     "",
		"country":  " UK",
	}, []byte("fake-image"))
	resp := httptest.NewRecorder()
	ProfileUpdate(svc, 1024, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Ada", svc.input.Name)
	require.NotNil(t, svc.input.Country)
	assert.Equal(t, "UK", *svc.input.Country)
	require.NotNil(t, svc.input.City)
	assert.Empty(t, *svc.input.City)
	assert.Nil(t, svc.input.Address)
	require.NotNil(t, svc.input.Photo)
	assert.Equal(t, "me.png", svc.input.Photo.Filename)
	assert.Equal(t, []byte("fake-image"), svc.photoData)
}

func TestProfileUpdateRemovePhotoFlag(t *testing.T) {
	svc := &stubProfileService{}
	req := multipartProfileRequest(t, map[string]string{"name": "Ada", "removePhoto": "true"}, nil)
	resp := httptest.NewRecorder()
	ProfileUpdate(svc, 1024, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, svc.input.RemovePhoto)
	assert.Nil(t, svc.input.Photo)
}

func TestProfileUpdateRejectsOversizedBody(t *testing.T) {
	svc := &stubProfileService{}
	req := multipartProfileRequest(t, map[string]string{"name": "Ada"}, bytes.Repeat([]byte("x"), 2<<20))
	resp := httptest.NewRecorder()
	ProfileUpdate(svc, 1024, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestProfileUpdateRequiresMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/profile", bytes.NewBufferString(`{"name":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	ProfileUpdate(&stubProfileService{}, 1024, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProfileRemovePhoto(t *testing.T) {
	svc := &stubProfileService{}
	req := httptest.NewRequest(http.MethodDelete, "/profile/photo", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	ProfileRemovePhoto(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, svc.removed)
}

func TestProfileGetRequiresUser(t *testing.T) {
	resp := httptest.NewRecorder()
	ProfileGet(&stubProfileService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
