package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"datacheck/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Prediction PredictionConfig
	Log        LogConfig
	Upload     UploadConfig
	Metrics    MetricsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// PredictionConfig holds the remote scoring endpoint. An empty URL is
// accepted at startup; submissions then fail with a configuration error.
type PredictionConfig struct {
	URL string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// UploadConfig holds upload limits
type UploadConfig struct {
	MaxBytes int64
}

// MetricsConfig holds metrics exposition settings
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:     *loadServerConfig(),
		Prediction: *loadPredictionConfig(),
		Log:        *loadLogConfig(),
		Upload:     *loadUploadConfig(),
		Metrics:    *loadMetricsConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadPredictionConfig() *PredictionConfig {
	return &PredictionConfig{
		URL: strings.TrimSpace(os.Getenv("PREDICTION_URL")),
	}
}

func loadLogConfig() *LogConfig {
	return &LogConfig{
		Level:  strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "console")),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)) << 20,
	}
}

func loadMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true),
	}
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	if config.Prediction.URL != "" {
		u, err := url.Parse(config.Prediction.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.ConfigInvalid("PREDICTION_URL must be an absolute http(s) URL")
		}
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Log.Format != "console" && config.Log.Format != "json" {
		return errors.ConfigInvalid("LOG_FORMAT must be console or json")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
