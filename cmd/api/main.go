// Command api serves the event reservation REST API. It wires configuration,
// storage and the HTTP stack together; rules live in internal/service.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/cgfarias/mobifacil-front-sub000/internal/auth"
	"github.com/cgfarias/mobifacil-front-sub000/internal/config"
	"github.com/cgfarias/mobifacil-front-sub000/internal/handler"
	"github.com/cgfarias/mobifacil-front-sub000/internal/middleware"
	"github.com/cgfarias/mobifacil-front-sub000/internal/prefs"
	"github.com/cgfarias/mobifacil-front-sub000/internal/repo"
	"github.com/cgfarias/mobifacil-front-sub000/internal/service"
	"github.com/cgfarias/mobifacil-front-sub000/migrations"
)

const shutdownGrace = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The JSON logger depends on config; fall back to the default one.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	store, closeStore, err := openPreferences(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, pool, store, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// newRouter assembles the middleware chain around the API routes:
// RequestID, RealIP, request log, Recoverer, CORS, body limit. Bearer
// authentication is applied inside the API router so /healthz and
// /openapi.yaml stay public.
func newRouter(cfg config.Config, pool *pgxpool.Pool, store prefs.Store, logger *slog.Logger) http.Handler {
	eventRepo := repo.NewEventRepo(pool)
	catalogRepo := repo.NewCatalogRepo(pool)
	api := handler.NewServer(
		service.NewEventService(eventRepo, catalogRepo, logger),
		service.NewCatalogService(catalogRepo),
		service.NewExportService(eventRepo, catalogRepo),
		logger,
	).WithPreferences(store).WithReadiness(pool.Ping)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	authn := middleware.NewAuthenticator(auth.NewSigner(cfg.JWTSecret, 0), logger)
	r.Mount("/", api.Routes(authn))
	return r
}

// openPreferences picks Redis when redisURL is set and memory otherwise.
// Memory preferences do not survive a restart.
func openPreferences(ctx context.Context, redisURL string, logger *slog.Logger) (prefs.Store, func(), error) {
	if redisURL == "" {
		logger.Warn("REDIS_URL not set; preferences kept in memory")
		return &prefs.MemoryStore{}, func() {}, nil
	}
	rs, err := prefs.NewRedisStore(ctx, redisURL, "mobifacil:prefs:")
	if err != nil {
		return nil, nil, fmt.Errorf("preferences: %w", err)
	}
	logger.Info("preferences stored in redis")
	return rs, func() { _ = rs.Close() }, nil
}

// migrate brings the schema up to date before the server accepts traffic.
func migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, res := range results {
		log.Info("migration applied", "version", res.Source.Version, "duration_ms", res.Duration.Milliseconds())
	}
	if len(results) == 0 {
		log.Info("schema up to date")
	}
	return nil
}
