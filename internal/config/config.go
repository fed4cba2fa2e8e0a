// Package config loads demo server settings from the environment.
// Every knob has a DROPKIT_ prefix and a sensible default, so the demo
// starts with no configuration at all.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds everything the demo server reads from the environment.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `env:"DROPKIT_ADDR" envDefault:":8080"`

	// BasePath prefixes every DropKit endpoint.
	BasePath string `env:"DROPKIT_BASE_PATH" envDefault:"/dropkit"`

	// DevMode relaxes the websocket origin check. Local use only.
	DevMode bool `env:"DROPKIT_DEV" envDefault:"false"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"DROPKIT_LOG_LEVEL" envDefault:"info"`

	// LogJSON switches log output from text to JSON.
	LogJSON bool `env:"DROPKIT_LOG_JSON" envDefault:"false"`

	// BlobDir stores intake payloads on disk. Empty keeps them in
	// memory.
	BlobDir string `env:"DROPKIT_BLOB_DIR"`

	// BlobCapMB caps the in-memory store. Ignored with BlobDir set.
	BlobCapMB int64 `env:"DROPKIT_BLOB_CAP_MB" envDefault:"512"`

	// BlobMaxAge is how long orphaned payloads survive the sweep.
	BlobMaxAge time.Duration `env:"DROPKIT_BLOB_MAX_AGE" envDefault:"1h"`

	// MaxRequestMB caps one intake request.
	MaxRequestMB int64 `env:"DROPKIT_MAX_REQUEST_MB" envDefault:"128"`

	// MaxFileMB is the per-file ceiling shown to the widget. Larger
	// files land as visible size errors.
	MaxFileMB int64 `env:"DROPKIT_MAX_FILE_MB" envDefault:"32"`

	// MaxFiles caps entries per widget. 0 means unlimited.
	MaxFiles int `env:"DROPKIT_MAX_FILES" envDefault:"10"`

	// Accept lists MIME prefixes the widget admits, e.g.
	// "image/,application/pdf". Empty admits everything.
	Accept []string `env:"DROPKIT_ACCEPT" envSeparator:","`

	// ReceiverURL is where finished uploads go. Empty uses the demo's
	// built-in receive endpoint.
	ReceiverURL string `env:"DROPKIT_RECEIVER_URL"`

	// UploadRateKB throttles upload bandwidth per transfer, in
	// KiB/s. 0 means unthrottled.
	UploadRateKB int64 `env:"DROPKIT_UPLOAD_RATE_KB" envDefault:"0"`

	// S3Bucket switches uploads to presigned S3 POSTs. The remaining
	// S3 fields only matter when it is set.
	S3Bucket    string `env:"DROPKIT_S3_BUCKET"`
	S3Region    string `env:"DROPKIT_S3_REGION"`
	S3Endpoint  string `env:"DROPKIT_S3_ENDPOINT"`
	S3KeyPrefix string `env:"DROPKIT_S3_PREFIX" envDefault:"dropkit/"`
	S3AccessKey string `env:"DROPKIT_S3_ACCESS_KEY"`
	S3SecretKey string `env:"DROPKIT_S3_SECRET_KEY"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.MaxRequestMB <= 0 {
		return fmt.Errorf("config: DROPKIT_MAX_REQUEST_MB must be positive, got %d", c.MaxRequestMB)
	}
	if c.MaxFileMB <= 0 {
		return fmt.Errorf("config: DROPKIT_MAX_FILE_MB must be positive, got %d", c.MaxFileMB)
	}
	if c.MaxFiles < 0 {
		return fmt.Errorf("config: DROPKIT_MAX_FILES must not be negative, got %d", c.MaxFiles)
	}
	if c.UploadRateKB < 0 {
		return fmt.Errorf("config: DROPKIT_UPLOAD_RATE_KB must not be negative, got %d", c.UploadRateKB)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown DROPKIT_LOG_LEVEL %q", c.LogLevel)
	}
}

// UseS3 reports whether uploads go to S3 instead of an HTTP receiver.
func (c Config) UseS3() bool {
	return c.S3Bucket != ""
}
