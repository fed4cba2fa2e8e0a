package dropkit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropkit-dev/dropkit/pkg/blob"
	"github.com/dropkit-dev/dropkit/pkg/live"
)

// Config is the top-level application configuration. Zero values get
// defaults from DefaultConfig, so a literal with only the fields you
// care about is enough:
//
//	app := dropkit.New(dropkit.Config{
//	    Intake: dropkit.IntakeConfig{MaxRequestBytes: 256 << 20},
//	    Logger: logger,
//	})
type Config struct {
	// BasePath is the URL prefix for every DropKit endpoint: the
	// websocket, the intake route, blob serving, and the client
	// runtime all hang off it. Default: "/dropkit".
	BasePath string

	// Live configures WebSocket sessions.
	Live LiveConfig

	// Intake configures the HTTP file intake endpoint.
	Intake IntakeConfig

	// Blob configures payload storage.
	Blob BlobConfig

	// Metrics is the Prometheus registerer for all DropKit metrics.
	// Nil disables instrumentation entirely.
	Metrics prometheus.Registerer

	// DevMode relaxes the websocket origin check so local tooling can
	// connect across ports. Never enable in production.
	DevMode bool

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// LiveConfig configures WebSocket session behavior.
type LiveConfig struct {
	// Session holds per-session tunables; zero fields get defaults
	// from live.DefaultSessionConfig.
	Session *live.SessionConfig

	// MaxSessions caps concurrent sessions. 0 means no limit.
	MaxSessions int

	// CheckOrigin validates the Origin header during the websocket
	// upgrade. Nil applies the default same-host policy, except in
	// DevMode where all origins are accepted.
	CheckOrigin func(*http.Request) bool
}

// IntakeConfig configures the file intake endpoint. Limits here guard
// the HTTP surface; per-widget limits (file count, size ceiling) are
// enforced by the dropzone itself.
type IntakeConfig struct {
	// MaxRequestBytes caps one intake request body, all parts
	// included. Requests over the cap are rejected with 413.
	// Default: 128 MiB.
	MaxRequestBytes int64

	// MaxFilesPerRequest caps the number of file parts in one intake
	// request. Default: 32.
	MaxFilesPerRequest int
}

// BlobConfig configures payload storage.
type BlobConfig struct {
	// Store holds intake payloads until their entries are removed.
	// Default: an in-memory store capped at 512 MiB.
	Store blob.Store

	// MaxAge is how long an orphaned payload may linger before the
	// sweep removes it. Sessions normally delete their payloads on
	// entry removal and dispose; the sweep catches crashed or leaked
	// sessions. Default: 1 hour.
	MaxAge time.Duration

	// SweepInterval is how often the cleanup pass runs. Negative
	// disables the built-in sweeper (run Store.Cleanup yourself).
	// Default: 5 minutes.
	SweepInterval time.Duration
}

// DefaultConfig returns the configuration New applies for zero fields.
func DefaultConfig() Config {
	return Config{
		BasePath: "/dropkit",
		Intake: IntakeConfig{
			MaxRequestBytes:    128 << 20,
			MaxFilesPerRequest: 32,
		},
		Blob: BlobConfig{
			MaxAge:        time.Hour,
			SweepInterval: 5 * time.Minute,
		},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BasePath == "" {
		c.BasePath = d.BasePath
	}
	if c.Intake.MaxRequestBytes <= 0 {
		c.Intake.MaxRequestBytes = d.Intake.MaxRequestBytes
	}
	if c.Intake.MaxFilesPerRequest <= 0 {
		c.Intake.MaxFilesPerRequest = d.Intake.MaxFilesPerRequest
	}
	if c.Blob.Store == nil {
		c.Blob.Store = blob.NewMemStore(512 << 20)
	}
	if c.Blob.MaxAge <= 0 {
		c.Blob.MaxAge = d.Blob.MaxAge
	}
	if c.Blob.SweepInterval < 0 {
		c.Blob.SweepInterval = 0
	} else if c.Blob.SweepInterval == 0 {
		c.Blob.SweepInterval = d.Blob.SweepInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
