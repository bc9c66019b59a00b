package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTokenIssuesCookie(t *testing.T) {
	cfg := config.CartConfig{CookieName: "sf_cart", SlotTTLDays: 30}
	var seen string
	handler := CartToken(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartTokenFromContext(r.Context())
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	require.NotEmpty(t, seen)
	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sf_cart", cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 30*24*60*60, cookies[0].MaxAge)
}

func TestCartTokenReusesExistingCookie(t *testing.T) {
	cfg := config.CartConfig{CookieName: "sf_cart"}
	var seen string
	handler := CartToken(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartTokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: "sf_cart", Value: "existing-token"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, "existing-token", seen)
	require.Len(t, resp.Result().Cookies(), 1)
	assert.Equal(t, "existing-token", resp.Result().Cookies()[0].Value)
}

func TestCartTokenDistinctPerVisitor(t *testing.T) {
	var tokens []string
	handler := CartToken(config.CartConfig{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, CartTokenFromContext(r.Context()))
	}))
	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	require.Len(t, tokens, 2)
	assert.NotEqual(t, tokens[0], tokens[1])
}

func TestCartTokenHeaderWinsOverCookie(t *testing.T) {
	var seen string
	handler := CartToken(config.CartConfig{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartTokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(CartTokenHeader, "header-token")
	req.AddCookie(&http.Cookie{Name: "sf_cart", Value: "cookie-token"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, "header-token", seen)
	assert.Equal(t, "header-token", resp.Header().Get(CartTokenHeader))
}
