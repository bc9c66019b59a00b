package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":""}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "is required", details["password"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"x","role":"admin"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONDescribesBadBodies(t *testing.T) {
	cases := map[string]struct {
		body string
		code pkgerrors.Code
		msg  string
	}{
		"empty":      {``, pkgerrors.CodeValidation, "request body is required"},
		"syntax":     {`{"email":}`, pkgerrors.CodeValidation, "malformed JSON at offset"},
		"truncated":  {`{"email":"a@b.co"`, pkgerrors.CodeValidation, "truncated"},
		"wrong type": {`{"email":5}`, pkgerrors.CodeValidation, `field "email" must be string`},
		"unknown":    {`{"role":"admin"}`, pkgerrors.CodeValidation, `unknown field "role"`},
		"trailing":   {`{"email":"a@b.co"} {}`, pkgerrors.CodeValidation, "single JSON object"},
		"too large":  {`{"email":"` + strings.Repeat("a", maxJSONBodyBytes) + `"}`, pkgerrors.CodePayloadTooLarge, "exceeds"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var body loginBody
			err := DecodeJSON(req, &body)

			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, tc.code, typed.Code())
			assert.Contains(t, typed.Message(), tc.msg)
		})
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&featured=true&bad=x", nil)

	limit, err := ParseQueryInt(req, "limit", 10, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)

	_, err = ParseQueryInt(req, "bad", 10, 1, 100)
	require.Error(t, err)

	featured, err := ParseQueryBool(req, "featured")
	require.NoError(t, err)
	assert.True(t, featured)

	missing, err := ParseQueryBool(req, "absent")
	require.NoError(t, err)
	assert.False(t, missing)

	_, err = ParseQueryBool(req, "bad")
	require.Error(t, err)
}

func TestParseUUIDParam(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	_, err := ParseUUIDParam(req, "id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAccessTokenSources(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", AccessToken(req, "sf_session"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sf_session", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", AccessToken(req, "sf_session"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, AccessToken(req, "sf_session"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abc", SanitizeString("abc", 0))
	assert.Equal(t, "Zoë", SanitizeString(" Zo\u00eb\u0000 ", 3))
	assert.Equal(t, "line one", SanitizeString("line\u0007 one", 0))
	assert.Equal(t, "ab", SanitizeString("ab c", 3))
}
