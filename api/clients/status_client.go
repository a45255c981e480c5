// Package clients provides typed HTTP clients for the admin API.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/credagent/agent-admin-backend/httpserver"
)

// StatusClient interacts with the admin status server. It attaches the
// admin API key to every request and parses the JSON responses.
type StatusClient struct {
	baseURL    string
	adminKey   string
	httpClient *http.Client
}

// NewStatusClient creates a client for the admin API.
//
// Parameters:
//   - baseURL: The base URL of the admin API (e.g., "http://localhost:8031")
//   - adminKey: The admin API key sent in the x-api-key header
//   - timeout: Request timeout duration (optional, default 30 seconds)
func NewStatusClient(baseURL, adminKey string, timeout ...time.Duration) *StatusClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &StatusClient{
		baseURL:  baseURL,
		adminKey: adminKey,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

func (c *StatusClient) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(httpserver.AdminAPIKeyHeader, c.adminKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	return resp, nil
}

// Live queries the liveness endpoint. It returns false without an error when
// the server answers 503.
func (c *StatusClient) Live(ctx context.Context) (bool, error) {
	return c.healthCheck(ctx, "/status/live")
}

// Ready queries the readiness endpoint. It returns false without an error
// when the server answers 503.
func (c *StatusClient) Ready(ctx context.Context) (bool, error) {
	return c.healthCheck(ctx, "/status/ready")
}

func (c *StatusClient) healthCheck(ctx context.Context, path string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusServiceUnavailable:
		return false, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("health check %s failed with code %d: %s", path, resp.StatusCode, string(body))
	}
}

// ResetStats clears the server's timing-statistics collector.
func (c *StatusClient) ResetStats(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/status/reset")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("reset request failed with code %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Document fetches the OpenAPI document describing the admin API.
func (c *StatusClient) Document(ctx context.Context) (map[string]any, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/docs/swagger.json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("document request failed with code %d: %s", resp.StatusCode, string(body))
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode OpenAPI document: %w", err)
	}
	return doc, nil
}
