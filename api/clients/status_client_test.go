package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/credagent/agent-admin-backend/httpserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAdminServer(t *testing.T, adminKey string, ready bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	requireKey := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get(httpserver.AdminAPIKeyHeader) != adminKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return false
		}
		return true
	}

	mux.HandleFunc("GET /status/live", func(w http.ResponseWriter, r *http.Request) {
		if !requireKey(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"alive": true}`))
	})
	mux.HandleFunc("GET /status/ready", func(w http.ResponseWriter, r *http.Request) {
		if !requireKey(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"reason": "Service not ready"}`))
			return
		}
		w.Write([]byte(`{"ready": true}`))
	})
	mux.HandleFunc("POST /status/reset", func(w http.ResponseWriter, r *http.Request) {
		if !requireKey(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /api/docs/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"openapi": "3.0.3", "info": {"title": "test-agent"}}`))
	})

	return httptest.NewServer(mux)
}

func TestStatusClientHealthChecks(t *testing.T) {
	ts := newFakeAdminServer(t, "k", true)
	defer ts.Close()

	client := NewStatusClient(ts.URL, "k", 5*time.Second)
	ctx := context.Background()

	live, err := client.Live(ctx)
	require.NoError(t, err)
	assert.True(t, live)

	ready, err := client.Ready(ctx)
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestStatusClientNotReady(t *testing.T) {
	ts := newFakeAdminServer(t, "k", false)
	defer ts.Close()

	client := NewStatusClient(ts.URL, "k")

	ready, err := client.Ready(context.Background())
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestStatusClientUnauthorized(t *testing.T) {
	ts := newFakeAdminServer(t, "k", true)
	defer ts.Close()

	client := NewStatusClient(ts.URL, "wrong")

	_, err := client.Live(context.Background())
	assert.Error(t, err)

	err = client.ResetStats(context.Background())
	assert.Error(t, err)
}

func TestStatusClientReset(t *testing.T) {
	ts := newFakeAdminServer(t, "k", true)
	defer ts.Close()

	client := NewStatusClient(ts.URL, "k")
	assert.NoError(t, client.ResetStats(context.Background()))
}

func TestStatusClientDocument(t *testing.T) {
	ts := newFakeAdminServer(t, "k", true)
	defer ts.Close()

	client := NewStatusClient(ts.URL, "k")

	doc, err := client.Document(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3.0.3", doc["openapi"])
}
