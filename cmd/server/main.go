package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/tripweaver/internal/api"
	"github.com/neexbeast/tripweaver/internal/auth"
	"github.com/neexbeast/tripweaver/internal/cache"
	"github.com/neexbeast/tripweaver/internal/config"
	"github.com/neexbeast/tripweaver/internal/metrics"
	"github.com/neexbeast/tripweaver/internal/provider"
	"github.com/neexbeast/tripweaver/internal/storage"
	"github.com/neexbeast/tripweaver/internal/trip"
	"github.com/neexbeast/tripweaver/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}

	log := setupLogger(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

// setupLogger returns a coloured text logger in development and a JSON logger otherwise.
func setupLogger(cfg config.Config) *slog.Logger {
	if cfg.IsDevelopment() {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations up to date")

	// Connect to Redis.
	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Wire dependencies.
	identity := auth.NewService(
		storage.NewUserRepository(pool),
		cache.NewSessionCache(redisClient, cfg.SessionTTL),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL),
		auth.NewHub(),
		log,
	)
	itineraries := provider.NewCachedItineraries(storage.NewItineraryRepository(pool), 10*time.Minute)
	backend := provider.New(identity, itineraries)
	m := metrics.New()
	registry := workspace.NewRegistry(backend, trip.NewMockGenerator(), cfg.WorkspaceIdleTTL, log).
		OnUnmount(m.WorkspaceUnmounted)
	defer registry.Close()

	handlers := api.NewHandlers(registry, backend, m, api.Settings{
		PublicURL:      cfg.PublicURL,
		AllowedOrigins: cfg.CORSOrigins,
	}, log)

	// Build router with pingers adapted for health check.
	dbPinger := &pgxPoolPinger{pool: pool}
	redisPinger := &redisPingerAdapter{client: redisClient}

	router := api.NewRouter(handlers, api.RouterOptions{
		CORSOrigins:  cfg.CORSOrigins,
		RateLimit:    cfg.RateLimit,
		Metrics:      m.Handler(),
		HealthChecks: []api.HealthCheck{
			{Name: "itineraries", Pinger: dbPinger},
			{Name: "sessions", Pinger: redisPinger},
		},
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	})

	// Graceful shutdown on SIGINT / SIGTERM or when the listener fails.
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Hijacked websocket connections are not tracked by Shutdown; unmounting
		// the workspaces closes their event streams.
		registry.Close()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server shut down cleanly")
	return nil
}

// pgxPoolPinger adapts pgxpool.Pool to api.Pinger.
type pgxPoolPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p *pgxPoolPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// redisPingerAdapter adapts redis.Client to api.Pinger.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
