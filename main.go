package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datacheck/adapters/scoring"
	"datacheck/adapters/tabular"
	"datacheck/adapters/validation"
	"datacheck/internal/config"
	"datacheck/internal/integrity"
	"datacheck/internal/logging"
	"datacheck/internal/metrics"
	"datacheck/internal/prediction"
	"datacheck/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(appConfig.Log.Level, appConfig.Log.Format, os.Stderr)

	var appMetrics *metrics.Metrics
	if appConfig.Metrics.Enabled {
		appMetrics = metrics.New()
	}

	if appConfig.Prediction.URL == "" {
		logger.Warn().Msg("PREDICTION_URL is not set; prediction submissions will fail")
	}

	dispatcher := integrity.NewDispatcher(validation.NewRunner(logger), appMetrics, logger)
	predictions := prediction.NewService(scoring.NewClient(appConfig.Prediction.URL, logger), appMetrics, logger)

	app, err := ui.NewApp(ui.Config{
		MaxUploadBytes: appConfig.Upload.MaxBytes,
		Metrics:        appMetrics,
	}, dispatcher, predictions, tabular.NewReader(logger), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize UI")
	}

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting datacheck server")
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
