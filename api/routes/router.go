package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	"github.com/angelmondragon/storefront-backend/internal/profile"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Params carries everything the router mounts. Nil services still get their
// routes; the controllers answer 500 until the dependency is wired.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	// Ready lists the dependencies pinged by /health/ready.
	Ready map[string]controllers.Pinger

	Auth     auth.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Payments payments.Service
	Profile  profile.Service

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	// UploadsDir is served at /uploads when photos are stored on local disk.
	UploadsDir string
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewRateLimitPolicy("login", cfg.AuthRateLimit.LoginWindow).
		PerIP(cfg.AuthRateLimit.LoginIPLimit).
		PerEmail(cfg.AuthRateLimit.LoginEmailLimit)
	registerPolicy := middleware.NewRateLimitPolicy("register", cfg.AuthRateLimit.RegisterWindow).
		PerIP(cfg.AuthRateLimit.RegisterIPLimit).
		PerEmail(cfg.AuthRateLimit.RegisterEmailLimit)
	requireAuth := middleware.Auth(cfg.JWT, p.Sessions, logg)
	idempotent := middleware.Idempotency(p.Redis, middleware.DefaultIdempotencyTTL, logg)
	idempotentLong := middleware.Idempotency(p.Redis, middleware.LongIdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Ready))
	})
	if p.MetricsHandler != nil {
		r.Handle("/metrics", p.MetricsHandler)
	}
	if p.UploadsDir != "" {
		r.Handle("/uploads/*", uploadsHandler(p.UploadsDir))
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, cfg.JWT, logg))
		r.With(middleware.RateLimit(registerPolicy, p.Redis, logg), idempotent).Post("/register", controllers.AuthRegister(p.Auth, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
		r.With(requireAuth).Get("/me", controllers.AuthMe(p.Auth, logg))
	})

	r.Route("/profile", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.ProfileGet(p.Profile, logg))
		r.Put("/", controllers.ProfileUpdate(p.Profile, cfg.Media.MaxPhotoBytes, logg))
		r.Delete("/photo", controllers.ProfileRemovePhoto(p.Profile, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", controllers.CatalogCategories(p.Catalog, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.CatalogProducts(p.Catalog, logg))
			r.Get("/search/{query}", controllers.CatalogSearch(p.Catalog, logg))
			r.Get("/{id}", controllers.CatalogProduct(p.Catalog, logg))
			r.With(middleware.CartToken(cfg.Cart, logg), idempotentLong).Post("/manual-payment", controllers.ManualPayment(p.Payments, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartToken(cfg.Cart, logg))
			r.Get("/", controllers.CartView(p.Cart, logg))
			r.Get("/payment-info", controllers.CartPaymentInfo(p.Cart, logg))
			r.With(idempotentLong).Post("/checkout", controllers.CartCheckout(p.Cart, logg))
			r.Group(func(r chi.Router) {
				r.Use(idempotent)
				r.Post("/items", controllers.CartAddItem(p.Cart, logg))
				r.Post("/items/{id}/increase", controllers.CartIncrease(p.Cart, logg))
				r.Post("/items/{id}/decrease", controllers.CartDecrease(p.Cart, logg))
				r.Post("/items/{id}/save", controllers.CartSaveForLater(p.Cart, logg))
				r.Delete("/items/{id}", controllers.CartRemove(p.Cart, logg))
				r.Post("/saved/{id}/restore", controllers.CartRestoreSaved(p.Cart, logg))
			})
		})
	})

	return r
}

// uploadsHandler serves stored photos without directory listings.
func uploadsHandler(dir string) http.Handler {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
