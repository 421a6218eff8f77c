package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"forecastwb/internal/config"
	"forecastwb/internal/configstore"
	apierrors "forecastwb/internal/errors"
	"forecastwb/internal/files"
	"forecastwb/internal/infrastructure"
	customMiddleware "forecastwb/internal/middleware"
	"forecastwb/internal/services"
	handlers "forecastwb/internal/transport/http"
	"forecastwb/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const (
	Version = "1.2.0"
	AppName = "Forecast Configuration Workbench"
)

// Application wires configuration, services, handlers and the HTTP server.
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Router *chi.Mux
	Server *http.Server
	Logger *slog.Logger

	Pipeline    *services.PipelineService
	EDA         *services.EDAService
	Health      *services.HealthService
	ConfigStore *configstore.Store

	sweeper *files.RetentionSweeper
}

// NewApplication builds the full dependency graph from loaded configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	paths, err := config.NewPaths(cfg.Paths.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution()

	app := &Application{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() {
	store := files.NewUploadStore(a.Logger, a.Paths)
	uploads := validation.NewUploadValidator(a.Logger, a.Config.Uploads.MaxUploadBytes)

	a.Pipeline = services.NewPipelineService(a.Logger, a.Paths, store, uploads)
	a.EDA = services.NewEDAService(a.Logger, a.Paths)
	a.Health = services.NewHealthService(a.Logger, a.Paths, Version)
	a.ConfigStore = configstore.NewStore(a.Logger, a.Paths)

	a.sweeper = files.NewRetentionSweeper(a.Logger, a.Paths, a.Config.Uploads)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))
	r.Use(customMiddleware.Compress(5))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		pipelineHandler := handlers.NewPipelineHandler(a.Pipeline, a.Logger, errorHandler)
		r.Mount("/", pipelineHandler.Routes())

		configHandler := handlers.NewConfigHandler(a.ConfigStore, a.Logger, errorHandler)
		r.Mount("/config", configHandler.Routes())

		edaHandler := handlers.NewEDAHandler(a.EDA, a.Logger, errorHandler)
		r.Mount("/eda", edaHandler.Routes())
	})

	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	r.Mount("/health", healthHandler.Routes())

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		render.Status(req, http.StatusOK)
		render.JSON(w, req, map[string]string{
			"service": "forecast-backend",
			"version": Version,
			"status":  "running",
		})
	})

	a.Router = r
}

// getCORSConfig returns CORS configuration based on environment
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cors := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	cors.AllowedOrigins = []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		cors.AllowedOrigins = append(cors.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	return cors
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

// Start starts the background sweeper and the HTTP server.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.sweeper.Start(ctx)

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

	a.sweeper.Stop()

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
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
	}

	return a.Stop(context.Background())
}
