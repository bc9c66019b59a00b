package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const (
	CartTokenHeader = "X-Cart-Token"
	cartTokenBytes  = 24
	maxCartTokenLen = 128
)

// CartToken resolves the shopper's cart token from the X-Cart-Token header or its
// cookie, issuing a new one when absent. The cookie is refreshed on every request so an active cart keeps
// its slot alive for the full window.
func CartToken(cfg config.CartConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	name := cfg.CookieName
	if name == "" {
		name = "sf_cart"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(CartTokenHeader))
			if token == "" {
				if c, err := r.Cookie(name); err == nil {
					token = strings.TrimSpace(c.Value)
				}
			}
			if token == "" || len(token) > maxCartTokenLen {
				issued, err := security.RandomToken(cartTokenBytes)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue cart token"))
					return
				}
				token = issued
			}

			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    token,
				Path:     "/",
				MaxAge:   int(cfg.SlotTTL().Seconds()),
				HttpOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(CartTokenHeader, token)

			ctx := WithCartToken(r.Context(), token)
			if logg != nil {
				ctx = logg.WithCartToken(ctx, token)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
