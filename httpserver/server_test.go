package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/credagent/agent-admin-backend/profile"
	"github.com/credagent/agent-admin-backend/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "test-admin-key"

func testConfig(t *testing.T) *HTTPServerConfig {
	t.Helper()
	return &HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      slog.New(slog.NewTextHandler(io.Discard, nil)),
		AgentLabel:               "test-agent",
		AgentVersion:             "v11",
		GracefulShutdownDuration: 5 * time.Second,
		ReadTimeout:              10 * time.Second,
		WriteTimeout:             10 * time.Second,
	}
}

func newTestServer(t *testing.T, cfg *HTTPServerConfig, collector *stats.Collector) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}

	registry, err := profile.NewStaticRegistry(&profile.Profile{Label: cfg.AgentLabel, Version: cfg.AgentVersion})
	require.NoError(t, err)

	auth, err := NewAPIKeyAuthenticator([]byte(testAdminKey), cfg.EnforceUnprotectedPaths)
	require.NoError(t, err)

	srv, err := New(cfg, auth, registry, collector)
	require.NoError(t, err)
	return srv
}

func doRequest(srv *Server, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(AdminAPIKeyHeader, key)
	}
	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, req)
	return w
}

func TestHealthBeforeStart(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doRequest(srv, http.MethodGet, "/status/live", testAdminKey)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"reason": "Service not available"}`, w.Body.String())

	w = doRequest(srv, http.MethodGet, "/status/ready", testAdminKey)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"reason": "Service not ready"}`, w.Body.String())
}

func TestHealthWhenRunning(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	srv.alive.Store(true)
	srv.ready.Store(true)

	w := doRequest(srv, http.MethodGet, "/status/live", testAdminKey)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"alive": true}`, w.Body.String())

	w = doRequest(srv, http.MethodGet, "/status/ready", testAdminKey)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ready": true}`, w.Body.String())
}

func TestLivenessIgnoresReady(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	srv.alive.Store(true)
	srv.ready.Store(false)

	w := doRequest(srv, http.MethodGet, "/status/live", testAdminKey)
	assert.Equal(t, http.StatusOK, w.Code)

	// Readiness is the combined predicate
	w = doRequest(srv, http.MethodGet, "/status/ready", testAdminKey)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadinessRequiresAlive(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	srv.alive.Store(false)
	srv.ready.Store(true)

	w := doRequest(srv, http.MethodGet, "/status/ready", testAdminKey)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthWrongKey(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doRequest(srv, http.MethodGet, "/", "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(srv, http.MethodGet, "/", testAdminKey)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/doc", w.Header().Get("Location"))
}

func TestAuthOptionsBypass(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	// CORS preflight: no x-api-key header, must not be rejected.
	req := httptest.NewRequest(http.MethodOptions, "/status/reset", nil)
	req.Header.Set("Origin", "https://wallet.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, req)
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// Bare OPTIONS without preflight headers still bypasses the key check.
	w = doRequest(srv, http.MethodOptions, "/status/reset", "")
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestUnprotectedPathAllowList(t *testing.T) {
	cfg := testConfig(t)
	cfg.EnforceUnprotectedPaths = true
	srv := newTestServer(t, cfg, nil)
	srv.alive.Store(true)

	// Health probes pass without a key when the allow-list is wired in.
	w := doRequest(srv, http.MethodGet, "/status/live", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(srv, http.MethodGet, "/api/docs/swagger.json", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Exempted swagger assets resolve (via redirect) without a key.
	w = doRequest(srv, http.MethodGet, "/static/swagger/swagger-ui.css", "")
	assert.Equal(t, http.StatusFound, w.Code)

	// Protected paths still require the key.
	w = doRequest(srv, http.MethodPost, "/status/reset", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSwaggerAssetRedirect(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doRequest(srv, http.MethodGet, "/static/swagger/swagger-ui-bundle.js", testAdminKey)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js", w.Header().Get("Location"))

	// Path traversal is refused.
	w = doRequest(srv, http.MethodGet, "/static/swagger/../secret", testAdminKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusReset(t *testing.T) {
	collector := stats.NewCollector()
	collector.Record("status_live", time.Millisecond)
	srv := newTestServer(t, nil, collector)

	w := doRequest(srv, http.MethodPost, "/status/reset", testAdminKey)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())

	// The reset handler is not self-timed: the collector must be
	// observably empty once the response is written.
	assert.Empty(t, collector.Snapshot())

	// Timed endpoints repopulate it, and a second reset clears it again.
	doRequest(srv, http.MethodGet, "/status/live", testAdminKey)
	require.NotEmpty(t, collector.Snapshot())

	doRequest(srv, http.MethodPost, "/status/reset", testAdminKey)
	assert.Empty(t, collector.Snapshot())
}

func TestStatusResetWithoutCollector(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doRequest(srv, http.MethodPost, "/status/reset", testAdminKey)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestOpenAPIDocument(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doRequest(srv, http.MethodGet, "/api/docs/swagger.json", testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "test-agent", doc.Info.Title)
	assert.Equal(t, "v11", doc.Info.Version)
	assert.Contains(t, doc.Paths, "/status/live")
	assert.Contains(t, doc.Paths, "/status/ready")
	assert.Contains(t, doc.Paths, "/status/reset")
}

func TestAPIDocUI(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := doRequest(srv, http.MethodGet, "/api/doc", testAdminKey)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "test-agent")
	assert.Contains(t, w.Body.String(), "/api/docs/swagger.json")
}

func TestAdminContextAttached(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	var seen *profile.AdminContext
	handler := srv.setupAdminContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = profile.AdminContextFrom(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, seen)
	assert.Equal(t, "test-agent", seen.Profile.Label)
	assert.NotEmpty(t, seen.RequestID)
}

func TestStartBindFailure(t *testing.T) {
	// Occupy a port so Start fails.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.ListenAddr = ln.Addr().String()
	srv := newTestServer(t, cfg, nil)

	err = srv.Start()
	require.Error(t, err)

	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, cfg.ListenAddr, setupErr.Addr)

	// Flags are untouched on bind failure.
	assert.False(t, srv.IsLive())
	assert.False(t, srv.IsReady())
}

func TestServerLifecycle(t *testing.T) {
	collector := stats.NewCollector()
	srv := newTestServer(t, nil, collector)

	require.NoError(t, srv.Start())
	defer srv.Stop()

	assert.True(t, srv.IsLive())
	assert.True(t, srv.IsReady())

	baseURL := fmt.Sprintf("http://%s", srv.Addr())
	client := &http.Client{Timeout: 5 * time.Second}

	get := func(path, key string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
		require.NoError(t, err)
		if key != "" {
			req.Header.Set(AdminAPIKeyHeader, key)
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		return resp
	}

	// Correct key: 200 {"alive": true}
	resp := get("/status/live", testAdminKey)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"alive": true}`, string(body))

	// Wrong key: 401
	resp = get("/status/live", "wrong-key")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Fatal error notification: socket stays open, health checks fail.
	srv.NotifyFatalError()
	resp = get("/status/ready", testAdminKey)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp = get("/status/live", testAdminKey)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	addr := srv.Addr()
	srv.Stop()
	assert.False(t, srv.IsLive())
	assert.False(t, srv.IsReady())

	// Stop is idempotent.
	srv.Stop()

	// Connection attempts fail once the listener is closed.
	_, err = net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	cfg := testConfig(t)
	registry, err := profile.NewStaticRegistry(&profile.Profile{Label: "x"})
	require.NoError(t, err)

	_, err = New(cfg, nil, registry, nil)
	assert.Error(t, err)

	auth, err := NewAPIKeyAuthenticator([]byte("k"), false)
	require.NoError(t, err)

	_, err = New(cfg, auth, nil, nil)
	assert.Error(t, err)
}

func TestSetupErrorUnwrap(t *testing.T) {
	underlying := errors.New("address already in use")
	err := &SetupError{Addr: "127.0.0.1:8031", Err: underlying}

	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "127.0.0.1:8031")
}
