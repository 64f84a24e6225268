package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spotcli/internal/config"
	"spotcli/internal/errors"
	"spotcli/internal/files"
	"spotcli/internal/infrastructure"
	customMiddleware "spotcli/internal/middleware"
	"spotcli/internal/services"
	handlers "spotcli/internal/transport/http"
	"spotcli/pkg/contracts"
)

const (
	// Version is the service version reported by the health endpoint
	Version = contracts.Version
	// AppName is the human-readable service name
	AppName = "spot-market data service"
)

// Application represents the main application container
type Application struct {
	Config   *config.Config
	Router   *chi.Mux
	Server   *http.Server
	Logger   *slog.Logger
	Services *ServiceContainer

	registry *prometheus.Registry
	metrics  *customMiddleware.HTTPMetrics
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Boundary *services.BoundaryService
	Trading  *services.TradingService
	Health   *services.HealthService
	Uploads  *files.Manager
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig wires the application around an existing
// configuration. Tests use this to inject temporary directories.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &Application{
		Config:   cfg,
		Logger:   logger,
		registry: registry,
		metrics:  customMiddleware.NewHTTPMetrics(registry),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.Services = &ServiceContainer{
		Boundary: services.NewBoundaryService(a.Config, a.Logger),
		Trading:  services.NewTradingService(a.Config, a.Logger),
		Health:   services.NewHealthService(a.Config, Version),
		Uploads:  files.NewManager(a.Config.Paths.UploadsDir, a.Config.Server.MaxUploadBytes),
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(a.metrics.Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.StripSlashes)
	r.Use(customMiddleware.Compress(5))
	r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
		AllowedOrigins: []string{"*"},
		Logger:         a.Logger,
	}))

	if a.Config.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.RateLimit.RPS,
			a.Config.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	a.setupAPIRoutes(r)

	// Prometheus metrics endpoint, outside the API middleware
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, false)
	validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)

		// Processing endpoints get the write timeout; reconciliation of a
		// full day of sources can outlast the read timeout.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))
			r.Use(validation.ValidateRequest)

			boundaryHandler := handlers.NewBoundaryHandler(
				a.Services.Boundary, a.Config.Paths.DataDir, a.Logger, errorHandler)
			r.Mount("/boundary", boundaryHandler.Routes())

			tradingHandler := handlers.NewTradingHandler(
				a.Services.Trading, a.Config.Paths.DataDir, a.Logger, errorHandler)
			r.Mount("/trading", tradingHandler.Routes())
		})

		uploadHandler := handlers.NewUploadHandler(
			a.Services.Uploads,
			files.NewDiscovery(a.Config.Paths.UploadsDir),
			a.Config.Server.MaxUploadBytes,
			a.Logger,
			errorHandler,
		)
		r.Mount("/uploads", uploadHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server. Server errors cancel the given context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_dir", a.Config.Paths.DataDir),
		slog.String("reports_dir", a.Config.Paths.ReportsDir))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
