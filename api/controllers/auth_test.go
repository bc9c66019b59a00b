package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	loginErr  error
	revoked   []string
	meID      uuid.UUID
	registers int
}

func (s *stubAuthService) Register(_ context.Context, req auth.RegisterRequest) (*auth.SessionResponse, error) {
	s.registers++
	return &auth.SessionResponse{Token: "registered-token", ExpiresAt: time.Now().Add(time.Hour), User: &users.UserDTO{Email: req.Email}}, nil
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.SessionResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &auth.SessionResponse{Token: "login-token", ExpiresAt: time.Now().Add(time.Hour), User: &users.UserDTO{Email: req.Email}}, nil
}

func (s *stubAuthService) Logout(_ context.Context, sessionID string) error {
	s.revoked = append(s.revoked, sessionID)
	return nil
}

func (s *stubAuthService) Me(_ context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	s.meID = userID
	return &users.UserDTO{Email: "me@example.com"}, nil
}

func controllerJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "storefront-test", ExpirationMinutes: 60, CookieName: "sf_session"}
}

func findCookie(resp *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthLoginSetsSessionCookie(t *testing.T) {
	cfg := controllerJWT()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.co","password":"secret1"}`))
	resp := httptest.NewRecorder()
	AuthLogin(&stubAuthService{}, cfg, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	cookie := findCookie(resp, cfg.CookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "login-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Contains(t, resp.Body.String(), `"token":"login-token"`)
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid email or password")}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.co","password":"nope"}`))
	resp := httptest.NewRecorder()
	AuthLogin(svc, controllerJWT(), nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid email or password")
	assert.Nil(t, findCookie(resp, "sf_session"))
}

func TestAuthRegisterValidatesBody(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":"a@b.co"}`))
	resp := httptest.NewRecorder()
	AuthRegister(svc, controllerJWT(), nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Zero(t, svc.registers)
}

func TestAuthRegisterCreated(t *testing.T) {
	cfg := controllerJWT()
	body := `{"name":"Ada","lastname":"Lovelace","email":"ada@example.com","password":"secret1","phone":"555"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	AuthRegister(&stubAuthService{}, cfg, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.NotNil(t, findCookie(resp, cfg.CookieName))
}

func TestAuthLogoutRevokesAndClears(t *testing.T) {
	cfg := controllerJWT()
	token, _, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), SessionID: "sess-1"})
	require.NoError(t, err)

	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})
	resp := httptest.NewRecorder()
	AuthLogout(svc, cfg, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"sess-1"}, svc.revoked)
	cookie := findCookie(resp, cfg.CookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestAuthLogoutWithoutSessionIsIdempotent(t *testing.T) {
	svc := &stubAuthService{}
	resp := httptest.NewRecorder()
	AuthLogout(svc, controllerJWT(), nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, svc.revoked)
}

func TestAuthMeRequiresUser(t *testing.T) {
	resp := httptest.NewRecorder()
	AuthMe(&stubAuthService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Not authenticated")
}

func TestAuthMeReturnsUser(t *testing.T) {
	svc := &stubAuthService{}
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	AuthMe(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID, svc.meID)
}
