// Package config provides application configuration loaded from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/diewo77/gst-invoices/internal/export"
	"github.com/diewo77/gst-invoices/internal/raster"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Export  ExportConfig
	Session SessionConfig
	App     AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// ExportConfig holds PDF export settings.
type ExportConfig struct {
	OutputDir      string
	SettleMS       int
	VariantPauseMS int
	RasterScale    float64
	JPEGQuality    int
	PageMarginMM   float64
	Verify         bool
}

// SessionConfig holds the in-memory session settings.
type SessionConfig struct {
	Secret      string
	IdleMinutes int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev bool
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Export: ExportConfig{
			OutputDir:      getEnv("EXPORT_OUTPUT_DIR", "out"),
			SettleMS:       getEnvInt("EXPORT_SETTLE_MS", 100),
			VariantPauseMS: getEnvInt("EXPORT_VARIANT_PAUSE_MS", 500),
			RasterScale:    getEnvFloat("EXPORT_RASTER_SCALE", 1.5),
			JPEGQuality:    getEnvInt("EXPORT_JPEG_QUALITY", 85),
			PageMarginMM:   getEnvFloat("EXPORT_PAGE_MARGIN_MM", 10),
			Verify:         getEnvBool("EXPORT_VERIFY", true),
		},
		Session: SessionConfig{
			Secret:      getEnv("SESSION_SECRET", ""),
			IdleMinutes: getEnvInt("SESSION_IDLE_MINUTES", 120),
		},
		App: AppConfig{
			Dev: getEnvBool("DEV", false),
		},
	}
}

// RasterOptions returns the rasterizer settings.
func (e ExportConfig) RasterOptions() raster.Options {
	return raster.Options{Scale: e.RasterScale}
}

// Options returns the exporter settings.
func (e ExportConfig) Options() export.Options {
	return export.Options{
		MarginMM:     e.PageMarginMM,
		JPEGQuality:  e.JPEGQuality,
		SettleDelay:  time.Duration(e.SettleMS) * time.Millisecond,
		VariantPause: time.Duration(e.VariantPauseMS) * time.Millisecond,
		Verify:       e.Verify,
		Now:          time.Now,
	}
}

// NewExporter builds an exporter from the configured settings.
func (e ExportConfig) NewExporter() *export.Exporter {
	return export.New(raster.New(e.RasterOptions()), e.Options())
}

// IdleTimeout returns how long an untouched session workspace is kept.
func (s SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleMinutes) * time.Minute
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
