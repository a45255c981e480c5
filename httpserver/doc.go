/*
Package httpserver implements the administrative HTTP server for a
credential-agent host process.

The server exposes a small operational surface gated by a pre-shared admin
API key and tracks two health flags, alive and ready, across its lifecycle.
All credential-issuance logic lives elsewhere in the host process; this
package only provides the glue around it.

# Endpoints

  - GET  /                        - Redirect to the API documentation
  - POST /status/reset            - Reset the timing-statistics collector
  - GET  /status/live             - Liveness check
  - GET  /status/ready            - Readiness check
  - GET  /api/doc                 - Browsable documentation UI
  - GET  /api/docs/swagger.json   - OpenAPI document

# Lifecycle

Both health flags start false. Start binds the listening socket and flips
both true; on bind failure it returns a SetupError and leaves the flags
untouched. Stop marks the server not ready before the socket closes, so
in-flight health checks begin failing first, and is idempotent.
NotifyFatalError forces both flags false without closing the socket, making
health checks fail so an external supervisor (e.g. a container orchestrator)
restarts the process.

# Middleware chain

Requests pass through CORS handling, request logging, a body-size limit, the
authentication gate, and context attachment, in that order. The
authentication gate compares the x-api-key header against the configured
admin key without leaking timing information; OPTIONS requests always bypass
it because browsers cannot attach custom headers to a CORS preflight.
Authentication is an injectable strategy: the default APIKeyAuthenticator
supports an optional allow-list of unprotected paths, and
BcryptAuthenticator verifies against a hashed key instead.

# Example Usage

	auth, err := httpserver.NewAPIKeyAuthenticator(adminKey, false)
	if err != nil {
		return err
	}
	registry, _ := profile.NewStaticRegistry(&profile.Profile{Label: "agent", Version: "v11"})
	srv, err := httpserver.New(cfg, auth, registry, stats.NewCollector())
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()
*/
package httpserver
