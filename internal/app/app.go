// Package app wires configuration, storage, services and the HTTP router
// into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"ibkrcli/internal/config"
	"ibkrcli/internal/dataprocessing"
	"ibkrcli/internal/errors"
	"ibkrcli/internal/infrastructure"
	custommw "ibkrcli/internal/middleware"
	"ibkrcli/internal/services"
	"ibkrcli/internal/store"
	handlers "ibkrcli/internal/transport/http"
)

// Version is the application version, overridable at build time.
var Version = "dev"

// Application is the main application container.
type Application struct {
	Config   *config.Config
	Router   *chi.Mux
	Server   *http.Server
	Store    *store.Store
	Service  *services.StatementService
	Logger   *slog.Logger
	Registry *prometheus.Registry

	closeLog func() error
}

// NewApplication loads configuration and builds the full dependency graph.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port),
	)

	st, err := store.Open(cfg.Storage.DBPath, logger)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	processor := dataprocessing.NewProcessor(dataprocessing.Config{
		MissingForexPolicy: cfg.Pipeline.MissingForex,
	}, logger)
	service := services.NewStatementService(processor, st, logger, registry)

	app := &Application{
		Config:   cfg,
		Store:    st,
		Service:  service,
		Logger:   logger,
		Registry: registry,
		closeLog: closeLog,
	}
	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (app *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(app.Logger))
	r.Use(custommw.Recoverer(app.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	if app.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			app.Config.Security.RateLimit.RPS,
			app.Config.Security.RateLimit.Burst,
			app.Logger,
		)
		r.Use(limiter.Handler)
	}

	errorHandler := errors.NewErrorHandler(app.Logger)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(Version)
	statementHandler := handlers.NewStatementHandler(app.Service, errorHandler, app.Logger)

	r.Get("/healthz", healthHandler.Check)
	r.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	r.Route("/api", func(r chi.Router) {
		r.With(maxBody(app.Config.Server.MaxBodyBytes)).
			Post("/statements", statementHandler.Create)
	})

	return r
}

func maxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// Run starts the HTTP server and blocks until the context is cancelled or
// an interrupt arrives, then shuts down gracefully.
func (app *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("http server listening", slog.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		app.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if closeErr := app.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Close releases the application's resources.
func (app *Application) Close() error {
	var firstErr error
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			firstErr = err
		}
		app.Store = nil
	}
	if app.closeLog != nil {
		if err := app.closeLog(); err != nil && firstErr == nil {
			firstErr = err
		}
		app.closeLog = nil
	}
	return firstErr
}
