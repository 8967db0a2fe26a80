// Package telemetry provides Sentry-based error reporting utilities.
package telemetry

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	serviceName = "docvault"
)

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN         string
	Environment string
	Debug       bool
}

// Init initializes Sentry error reporting.
// Returns a shutdown function to flush pending events.
// If DSN is empty, returns a no-op shutdown function.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Debug:       cfg.Debug,
		ServerName:  serviceName,
	})
	if err != nil {
		log.Printf("sentry: failed to initialize (continuing without reporting): %v", err)
		return func() {}, nil
	}

	shutdown := func() {
		sentry.Flush(5 * time.Second)
	}

	log.Printf("sentry: error reporting initialized (environment: %s)", cfg.Environment)
	return shutdown, nil
}

// CaptureError reports an error to Sentry, tagged with the operation that
// produced it. A nil error is ignored.
func CaptureError(err error, operation string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if operation != "" {
			scope.SetTag("operation", operation)
		}
		sentry.CaptureException(err)
	})
}

// CaptureMessage reports an informational message to Sentry.
func CaptureMessage(msg string) {
	if msg == "" {
		return
	}
	sentry.CaptureMessage(msg)
}
