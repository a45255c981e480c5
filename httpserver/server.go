package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/credagent/agent-admin-backend/common"
	"github.com/credagent/agent-admin-backend/metrics"
	"github.com/credagent/agent-admin-backend/profile"
	"github.com/credagent/agent-admin-backend/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/atomic"
)

// Server is the admin status server. It exposes a small HTTP surface for
// operational health checks and administrative reset, gated by a pre-shared
// key, and tracks the alive/ready flags across its lifecycle.
//
// Both flags start false. A successful Start sets both true. Stop sets ready
// false before closing the socket and alive false after. NotifyFatalError
// forces both false without closing the socket so an external supervisor
// restarts the process via failing health checks. Readiness is answered as
// ready AND alive, so a stale ready can never outlive liveness.
type Server struct {
	cfg *HTTPServerConfig
	log *slog.Logger

	alive   atomic.Bool
	ready   atomic.Bool
	running atomic.Bool

	auth      Authenticator
	profiles  profile.Registry
	collector *stats.Collector

	srv        *http.Server
	ln         net.Listener
	metricsSrv *metrics.MetricsServer
}

// New creates an admin status server. The authenticator and profile registry
// are required; the timing collector is optional.
func New(cfg *HTTPServerConfig, auth Authenticator, profiles profile.Registry, collector *stats.Collector) (*Server, error) {
	if auth == nil {
		return nil, errors.New("authenticator is required")
	}
	if profiles == nil {
		return nil, errors.New("profile registry is required")
	}

	srv := &Server{
		cfg:       cfg,
		log:       cfg.Log,
		auth:      auth,
		profiles:  profiles,
		collector: collector,
	}

	if cfg.MetricsAddr != "" {
		metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
		if err != nil {
			return nil, err
		}
		srv.metricsSrv = metricsSrv
	}

	srv.srv = &http.Server{
		Handler:      srv.getRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return srv, nil
}

func (srv *Server) getRouter() http.Handler {
	mux := chi.NewRouter()

	// CORS applies to every registered route for every origin. Preflight
	// OPTIONS requests are answered here, before the authentication gate.
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(srv.httpLogger)
	mux.Use(srv.limitBody)
	// Order is significant: auth before context attachment.
	mux.Use(srv.checkAPIKey)
	mux.Use(srv.setupAdminContext)

	mux.Get("/", srv.timed("redirect", srv.handleRedirect))
	// The reset handler is not self-timed: a reset must leave the
	// collector observably empty.
	mux.Post("/status/reset", srv.handleStatusReset)
	mux.Get("/status/live", srv.timed("status_live", srv.handleLiveness))
	mux.Get("/status/ready", srv.timed("status_ready", srv.handleReadiness))

	// Documentation surface
	mux.Get("/api/doc", srv.handleAPIDoc)
	mux.Get("/api/docs/swagger.json", srv.handleOpenAPIDocument)
	mux.Get("/static/swagger/*", srv.handleSwaggerAsset)
	mux.Get("/favicon.ico", srv.handleFavicon)

	if srv.cfg.EnablePprof {
		srv.log.Info("pprof API enabled")
		mux.Mount("/debug", middleware.Profiler())
	}
	return mux
}

// Start binds the listening socket and begins serving in the background.
// On success both flags flip true. On bind failure it returns a SetupError
// carrying the address and underlying OS error, leaving the flags untouched.
func (srv *Server) Start() error {
	ln, err := net.Listen("tcp", srv.cfg.ListenAddr)
	if err != nil {
		return &SetupError{Addr: srv.cfg.ListenAddr, Err: err}
	}
	srv.ln = ln
	srv.running.Store(true)
	srv.alive.Store(true)
	srv.ready.Store(true)

	if srv.metricsSrv != nil {
		go func() {
			srv.log.With("metricsAddress", srv.cfg.MetricsAddr).Info("Starting metrics server")
			if err := srv.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				srv.log.Error("Metrics server failed", "err", err)
			}
		}()
	}

	go func() {
		srv.log.Info("Starting admin HTTP server", "listenAddress", ln.Addr().String())
		if err := srv.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.log.Error("HTTP server failed", "err", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or "" before Start. Useful when
// listening on an ephemeral port.
func (srv *Server) Addr() string {
	if srv.ln == nil {
		return ""
	}
	return srv.ln.Addr().String()
}

// Stop marks the server not ready, then closes the listening socket
// gracefully. In-flight health checks start failing before the socket
// closes. Idempotent: calling Stop when already stopped is a no-op.
func (srv *Server) Stop() {
	if !srv.running.Swap(false) {
		return
	}

	srv.ready.Store(false)

	shutdownTimeout := srv.cfg.GracefulShutdownDuration
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.srv.Shutdown(ctx); err != nil {
		srv.log.Error("Graceful HTTP server shutdown failed", "err", err)
	} else {
		srv.log.Info("HTTP server gracefully stopped")
	}
	srv.alive.Store(false)

	if srv.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.metricsSrv.Shutdown(ctx); err != nil {
			srv.log.Error("Graceful metrics server shutdown failed", "err", err)
		}
	}
}

// NotifyFatalError forces both health flags false without closing the
// socket. It is a deliberate signal invoked when the host determines the
// process is unrecoverable; failing health checks then prompt the external
// supervisor to restart the process.
func (srv *Server) NotifyFatalError() {
	srv.log.Error("Received shutdown request notify_fatal_error()")
	srv.ready.Store(false)
	srv.alive.Store(false)
}

// IsLive reports whether the listening socket is bound and accepting.
func (srv *Server) IsLive() bool {
	return srv.alive.Load()
}

// IsReady reports whether the server is live and willing to serve business
// traffic. The combined predicate is enforced here at read time.
func (srv *Server) IsReady() bool {
	return srv.ready.Load() && srv.alive.Load()
}

func (srv *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if !srv.IsLive() {
		metrics.IncStatusCheck("live", false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"reason": "Service not available"})
		return
	}

	metrics.IncStatusCheck("live", true)
	writeJSON(w, http.StatusOK, map[string]any{"alive": true})
}

func (srv *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !srv.IsReady() {
		metrics.IncStatusCheck("ready", false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"reason": "Service not ready"})
		return
	}

	metrics.IncStatusCheck("ready", true)
	writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

// handleStatusReset clears the timing collector. Absence of a collector is
// not an error: the response is 200 {} unconditionally.
func (srv *Server) handleStatusReset(w http.ResponseWriter, r *http.Request) {
	if srv.collector != nil {
		srv.collector.Reset()
		metrics.IncStatsReset()
		srv.log.Info("Timing statistics reset")
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (srv *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/doc", http.StatusFound)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
