package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"datacheck/domain/check"
	"datacheck/domain/dataset"
	"datacheck/domain/loan"
	"datacheck/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// CheckDispatcher runs a selected data-quality check
type CheckDispatcher interface {
	Names() []check.Name
	Dispatch(ctx context.Context, name check.Name, train, test *dataset.Frame) (*check.Result, error)
}

// PredictionService submits applications and batches to the prediction service
type PredictionService interface {
	PredictApplication(ctx context.Context, app loan.Application) (loan.Label, error)
	SubmitBatch(ctx context.Context, frame *dataset.Frame) error
}

// TableReader parses uploaded files
type TableReader interface {
	Read(src io.Reader, filename string) (*dataset.Frame, error)
}

// Config holds UI application configuration
type Config struct {
	MaxUploadBytes int64
	// Metrics is served on /metrics when set
	Metrics *metrics.Metrics
}

// App represents the UI application
type App struct {
	router      *chi.Mux
	templates   *template.Template
	dispatcher  CheckDispatcher
	predictions PredictionService
	reader      TableReader
	config      Config
	logger      zerolog.Logger
}

// NewApp creates a new UI application
func NewApp(config Config, dispatcher CheckDispatcher, predictions PredictionService, reader TableReader, logger zerolog.Logger) (*App, error) {
	funcMap := template.FuncMap{
		"number": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:      chi.NewRouter(),
		templates:   templates,
		dispatcher:  dispatcher,
		predictions: predictions,
		reader:      reader,
		config:      config,
		logger:      logger.With().Str("component", "ui").Logger(),
	}

	if err := app.setupMiddleware(); err != nil {
		return nil, err
	}
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware and static files
func (a *App) setupMiddleware() error {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(accessLog(a.logger))
	a.router.Use(middleware.Recoverer)

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Pages
	a.router.Get("/", a.handleIndex)
	a.router.Get("/integrity", a.handleIntegrityPage)
	a.router.Post("/integrity", a.handleIntegrityCheck)
	a.router.Get("/prediction", a.handlePredictionPage)
	a.router.Post("/prediction/form", a.handlePredictionForm)
	a.router.Post("/prediction/batch", a.handlePredictionBatch)

	// API endpoints
	a.router.Post("/api/integrity", a.handleAPIIntegrity)
	a.router.Get("/api/checks", a.handleAPIChecks)

	a.router.Get("/healthz", a.handleHealth)
	if a.config.Metrics != nil {
		a.router.Handle("/metrics", a.config.Metrics.Handler())
	}
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "index.html", map[string]interface{}{
		"Title":  "Data Checks",
		"Checks": a.dispatcher.Names(),
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
