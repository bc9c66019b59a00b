package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/redis/redistest"
)

func postLogin(handler http.Handler, remote, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitKeepsBodyForHandler(t *testing.T) {
	policy := NewRateLimitPolicy("login", time.Minute).PerIP(2).PerEmail(2)
	var seen string
	handler := RateLimit(policy, redistest.Client(t), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	rec := postLogin(handler, "1.2.3.4:5678", `{"email":"tester@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, seen, `"email":"tester@example.com"`)
}

func TestRateLimitPerEmailNormalizes(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("login", time.Minute).PerEmail(1), redistest.Client(t), nil)(okHandler())

	first := postLogin(handler, "1.1.1.1:1", `{"email":"Mixed@Example.com","password":"x"}`)
	second := postLogin(handler, "2.2.2.2:2", `{"email":"  mixed@example.com ","password":"x"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeRateLimit), payload.Error.Code)
}

func TestRateLimitPerIPUsesForwardedFor(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("register", time.Minute).PerIP(1), redistest.Client(t), nil)(okHandler())

	send := func(remote, fwd string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{}`))
		req.RemoteAddr = remote
		if fwd != "" {
			req.Header.Set("X-Forwarded-For", fwd)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1", "9.9.9.9, 10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.2:1", "9.9.9.9"))
	assert.Equal(t, http.StatusOK, send("10.0.0.3:1", ""))
}

func TestRateLimitSkipsRulesWithoutSubject(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("login", time.Minute).PerEmail(1), redistest.Client(t), nil)(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, postLogin(handler, "1.1.1.1:1", `not json`).Code)
	}
}

func TestRateLimitInactivePolicyPassesThrough(t *testing.T) {
	limiter := &failingLimiter{}
	handler := RateLimit(NewRateLimitPolicy("login", 0).PerIP(1), limiter, nil)(okHandler())
	assert.Equal(t, http.StatusOK, postLogin(handler, "1.1.1.1:1", `{}`).Code)

	handler = RateLimit(NewRateLimitPolicy("login", time.Minute).PerIP(0), limiter, nil)(okHandler())
	assert.Equal(t, http.StatusOK, postLogin(handler, "1.1.1.1:1", `{}`).Code)
	assert.Zero(t, limiter.calls)
}

func TestRateLimitLimiterFailureIsUnavailable(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("login", time.Minute).PerIP(5), &failingLimiter{}, nil)(okHandler())
	assert.Equal(t, http.StatusServiceUnavailable, postLogin(handler, "1.1.1.1:1", `{}`).Code)
}

type failingLimiter struct {
	calls int
}

func (f *failingLimiter) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	f.calls++
	return false, 0, errors.New("redis down")
}
