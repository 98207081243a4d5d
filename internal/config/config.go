package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/certik/femhub-notebook/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Paths    PathConfig
	Notebook NotebookConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Address         string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the optional PostgreSQL connection settings. When
// URL is empty the server runs with in-memory users and sessions.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// PathConfig holds file system paths
type PathConfig struct {
	DataDir string
}

// NotebookConfig holds the page-rendering settings handed to the worksheet
// templates: site branding plus the jsMath and editor feature flags.
type NotebookConfig struct {
	SiteName         string
	Version          string
	JSMath           bool
	JSMathImageFonts bool
	JEditableTinyMCE bool
	JSMathMacros     []string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		Paths:    loadPathConfig(),
		Notebook: loadNotebookConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Address:         getEnvOrDefault("NOTEBOOK_ADDR", ":8000"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		DataDir: getEnvOrDefault("NOTEBOOK_DATA_DIR", "./data"),
	}
}

func loadNotebookConfig() NotebookConfig {
	return NotebookConfig{
		SiteName:         getEnvOrDefault("NOTEBOOK_SITENAME", "FEMhub Notebook"),
		Version:          getEnvOrDefault("NOTEBOOK_VERSION", "0.9.9"),
		JSMath:           getEnvBoolOrDefault("NOTEBOOK_JSMATH", true),
		JSMathImageFonts: getEnvBoolOrDefault("NOTEBOOK_JSMATH_IMAGE_FONTS", false),
		JEditableTinyMCE: getEnvBoolOrDefault("NOTEBOOK_TINYMCE", true),
		JSMathMacros:     getEnvListOrDefault("NOTEBOOK_JSMATH_MACROS", nil),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Address == "" {
		return errors.ConfigInvalid("server address is required")
	}
	if config.Paths.DataDir == "" {
		return errors.ConfigInvalid("data directory is required")
	}
	if config.Notebook.SiteName == "" {
		return errors.ConfigInvalid("site name is required")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated env value, dropping empty
// entries.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
