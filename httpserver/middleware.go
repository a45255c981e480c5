package httpserver

import (
	"net/http"

	"github.com/credagent/agent-admin-backend/metrics"
	"github.com/credagent/agent-admin-backend/profile"
	"github.com/flashbots/go-utils/httplogger"
	"github.com/google/uuid"
)

// httpLogger logs each request through the configured slog logger.
func (srv *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(srv.log, next)
}

// checkAPIKey is the authentication gate. It runs before the
// context-attachment step and fails the request with 401 before any handler
// runs. OPTIONS requests always pass: browsers performing CORS requests
// never include the x-api-key header in the preflight check.
func (srv *Server) checkAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || srv.auth.Authenticate(r) {
			next.ServeHTTP(w, r)
			return
		}

		metrics.IncUnauthorized()
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

// setupAdminContext binds the request to an administrative context carrying
// the governing profile scope. Purely a per-request association, no shared
// state is touched.
func (srv *Server) setupAdminContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := &profile.AdminContext{
			Profile:   srv.profiles.Root(),
			RequestID: uuid.NewString(),
		}
		next.ServeHTTP(w, r.WithContext(profile.WithAdminContext(r.Context(), ac)))
	})
}

// limitBody caps the request body size.
func (srv *Server) limitBody(next http.Handler) http.Handler {
	maxSize := srv.cfg.MaxBodySize
	if maxSize <= 0 {
		maxSize = defaultMaxBodySize
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		next.ServeHTTP(w, r)
	})
}

// timed records handler durations into the timing collector, if configured.
func (srv *Server) timed(name string, handler http.HandlerFunc) http.HandlerFunc {
	if srv.collector == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		defer srv.collector.Time(name)()
		handler(w, r)
	}
}
