package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/audit"
	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/evaluation"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/db"
	"perfeval/internal/platform/metrics"
	"perfeval/internal/transport/http/api"
	audithandler "perfeval/internal/transport/http/handlers/audit"
	authhandler "perfeval/internal/transport/http/handlers/auth"
	evaluationhandler "perfeval/internal/transport/http/handlers/evaluation"
	"perfeval/internal/transport/http/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger     *slog.Logger
	DB         Pinger
	Metrics    *metrics.Collector
	Auth       authhandler.LoginService
	Evaluation evaluationhandler.Service
	Audit      AuditService
	Perms      middleware.PermissionStore
}

type AuditService interface {
	evaluationhandler.AuditRecorder
	audithandler.Lister
}

// NewRouter assembles the HTTP surface. It has no knowledge of the pool so
// tests can serve it against fakes.
func NewRouter(cfg config.Config, deps Deps) http.Handler {
	var recorder middleware.RequestRecorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(deps.Logger, recorder))
	router.Use(middleware.Recover)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := deps.DB.Ping(ctx); err != nil {
			slog.Warn("readiness check failed", "err", err)
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.With(middleware.RequirePermission(auth.PermMetricsRead, deps.Perms)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(deps.Auth, cfg.LoginRateLimit, cfg.RateLimitWindow).RegisterRoutes(r)
		var auditRecorder evaluationhandler.AuditRecorder
		if deps.Audit != nil {
			auditRecorder = deps.Audit
			audithandler.NewHandler(deps.Audit, deps.Perms).RegisterRoutes(r)
		}
		evaluationhandler.NewHandler(deps.Evaluation, deps.Perms, auditRecorder).RegisterRoutes(r)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", middleware.GetRequestID(r.Context()))
	})

	return router
}

// Run connects to the database, prepares the schema when configured and
// serves until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	router := NewRouter(cfg, Deps{
		Logger:     logger,
		DB:         pool,
		Metrics:    collector,
		Auth:       auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL),
		Evaluation: evaluation.NewService(evaluation.NewStore(pool), logger, collector, cfg.DashboardConcurrency),
		Audit:      audit.New(pool),
		Perms:      auth.StaticPermissions{},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("perfeval server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
