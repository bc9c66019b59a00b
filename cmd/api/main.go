package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	"github.com/angelmondragon/storefront-backend/internal/profile"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		var closeErrs error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErrs = multierr.Append(closeErrs, closers[i]())
		}
		if closeErrs != nil {
			logg.Error(context.Background(), "error releasing resources", closeErrs)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return err
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := newRedis(ctx, cfg, logg)
	if err != nil {
		return err
	}
	closers = append(closers, redisClient.Close)

	photos, photoPinger, err := newPhotoStore(ctx, cfg, logg)
	if err != nil {
		return err
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	userRepo := users.NewRepository(dbClient.DB())
	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		DB:              dbClient,
		Users:           userRepo,
		Sessions:        sessionManager,
		Outbox:          emitter,
		JWTConfig:       cfg.JWT,
		PasswordConfig:  cfg.Password,
		DefaultPhotoURL: cfg.Media.DefaultPhotoURL,
		Logger:          logg,
	})
	if err != nil {
		return err
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}

	paymentsService, err := payments.NewService(payments.NewRepository(dbClient.DB()), dbClient, emitter, logg)
	if err != nil {
		return err
	}

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.SlotTTL())
	if err != nil {
		return err
	}
	cartLocker, err := cart.NewRedisLocker(redisClient)
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Store:    cartStore,
		Products: catalogService,
		Checkout: paymentsService,
		Locker:   cartLocker,
		Metrics:  metrics.NewCartMetrics(registry),
		Logger:   logg,
		UPIID:    cfg.App.UPIID,
	})
	if err != nil {
		return err
	}

	profileService, err := profile.NewService(profile.ServiceParams{
		DB:              dbClient,
		Users:           userRepo,
		Photos:          photos,
		Outbox:          emitter,
		MaxPhotoBytes:   cfg.Media.MaxPhotoBytes,
		DefaultPhotoURL: cfg.Media.DefaultPhotoURL,
		Logger:          logg,
	})
	if err != nil {
		return err
	}

	ready := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}
	if photoPinger != nil {
		ready["storage"] = photoPinger
	}

	uploadsDir := ""
	if cfg.Media.Backend == config.MediaBackendLocal {
		uploadsDir = cfg.Media.UploadsDir
	}

	handler := routes.NewRouter(routes.Params{
		Config:         cfg,
		Logger:         logg,
		Redis:          redisClient,
		Sessions:       sessionManager,
		Ready:          ready,
		Auth:           authService,
		Catalog:        catalogService,
		Cart:           cartService,
		Payments:       paymentsService,
		Profile:        profileService,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		UploadsDir:     uploadsDir,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"media_backend": cfg.Media.Backend,
		"memory_cart":   cfg.FeatureFlags.MemoryCart,
		"instance":      instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRedis starts an embedded server when the memory cart flag is set, so
// local runs do not need a Redis server.
func newRedis(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*redis.Client, error) {
	if cfg.FeatureFlags.MemoryCart {
		return redis.NewEmbedded(ctx, logg)
	}
	return redis.New(ctx, cfg.Redis, logg)
}

func newPhotoStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.ObjectStore, controllers.Pinger, error) {
	if cfg.Media.Backend == config.MediaBackendGCS {
		client, err := gcs.NewClient(ctx, cfg.Media.GCSBucket, cfg.GCP, logg)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewGCSStore(client, cfg.Media.GCSPublicHost)
		if err != nil {
			return nil, nil, err
		}
		return store, client, nil
	}
	store, err := storage.NewLocalStore(cfg.Media.UploadsDir, "/uploads")
	if err != nil {
		return nil, nil, err
	}
	return store, nil, nil
}
