package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware that applies the storefront's allowed origin policy.
// Credentials are allowed so the session and cart cookies reach the API.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", IdempotencyKeyHeader, CartTokenHeader},
		ExposedHeaders:   []string{requestIDHeader, CartTokenHeader, IdempotentReplayedHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler
}
