package httpserver

import (
	"log/slog"
	"time"
)

// HTTPServerConfig contains all configuration parameters for the admin
// status server.
type HTTPServerConfig struct {
	// ListenAddr is the address and port the HTTP server will listen on.
	ListenAddr string

	// MetricsAddr is the address and port for the metrics server.
	// If empty, metrics server will not be started.
	MetricsAddr string

	// EnablePprof enables the pprof debugging API when true.
	EnablePprof bool

	// Log is the structured logger for server operations.
	Log *slog.Logger

	// AgentLabel is the agent label shown as the API documentation title.
	AgentLabel string

	// AgentVersion is the version string advertised in the API document.
	AgentVersion string

	// MaxBodySize caps the request body size in bytes. Zero means the
	// default of 1 MiB.
	MaxBodySize int64

	// EnforceUnprotectedPaths wires the unprotected-path allow-list into
	// the authentication gate. When false only OPTIONS requests bypass
	// the admin key check.
	EnforceUnprotectedPaths bool

	// GracefulShutdownDuration is the maximum time to wait for in-flight
	// requests to complete during shutdown.
	GracefulShutdownDuration time.Duration

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	WriteTimeout time.Duration
}

// defaultMaxBodySize is the request body cap when none is configured (1MB).
const defaultMaxBodySize = 1024 * 1024
