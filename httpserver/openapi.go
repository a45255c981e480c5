package httpserver

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// routeDoc carries the documentation metadata declared for a route. The
// OpenAPI document is produced by walking the live route table and joining
// each route against its declared metadata, so routes added to the router
// show up in the document without further wiring.
type routeDoc struct {
	Summary   string
	Tag       string
	Responses map[string]responseDoc
}

type responseDoc struct {
	Description string
	Schema      map[string]any
}

var jsonBool = map[string]any{"type": "boolean", "example": true}

var routeDocs = map[string]routeDoc{
	"GET /": {
		Summary: "Redirect to API documentation",
		Tag:     "server",
		Responses: map[string]responseDoc{
			"302": {Description: "Found"},
		},
	},
	"POST /status/reset": {
		Summary: "Reset statistics",
		Tag:     "server",
		Responses: map[string]responseDoc{
			"200": {Description: "", Schema: map[string]any{"type": "object"}},
		},
	},
	"GET /status/live": {
		Summary: "Liveliness check",
		Tag:     "server",
		Responses: map[string]responseDoc{
			"200": {Description: "", Schema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"alive": jsonBool},
			}},
			"503": {Description: "Service not available"},
		},
	},
	"GET /status/ready": {
		Summary: "Readiness check",
		Tag:     "server",
		Responses: map[string]responseDoc{
			"200": {Description: "", Schema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"ready": jsonBool},
			}},
			"503": {Description: "Service not ready"},
		},
	},
}

// buildOpenAPIDocument assembles an OpenAPI 3 document from the route table.
func (srv *Server) buildOpenAPIDocument() map[string]any {
	paths := map[string]any{}

	router, ok := srv.srv.Handler.(chi.Routes)
	if ok {
		_ = chi.Walk(router, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			doc, ok := routeDocs[method+" "+route]
			if !ok {
				return nil
			}

			responses := map[string]any{}
			for status, resp := range doc.Responses {
				r := map[string]any{"description": resp.Description}
				if resp.Schema != nil {
					r["content"] = map[string]any{
						"application/json": map[string]any{"schema": resp.Schema},
					}
				}
				responses[status] = r
			}

			op := map[string]any{
				"summary":   doc.Summary,
				"tags":      []string{doc.Tag},
				"responses": responses,
			}

			pathItem, ok := paths[route].(map[string]any)
			if !ok {
				pathItem = map[string]any{}
				paths[route] = pathItem
			}
			pathItem[strings.ToLower(method)] = op
			return nil
		})
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   srv.cfg.AgentLabel,
			"version": srv.cfg.AgentVersion,
		},
		"paths": paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"ApiKeyAuth": map[string]any{
					"type": "apiKey",
					"in":   "header",
					"name": AdminAPIKeyHeader,
				},
			},
		},
		"security": []any{map[string]any{"ApiKeyAuth": []any{}}},
	}
}

func (srv *Server) handleOpenAPIDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, srv.buildOpenAPIDocument())
}

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>%s</title>
  <link rel="stylesheet" href="/static/swagger/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="/static/swagger/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/api/docs/swagger.json",
      dom_id: "#swagger-ui",
    });
  </script>
</body>
</html>
`

// swaggerDistURL is where the swagger UI assets are fetched from. The
// assets are not bundled; /static/swagger/ redirects there so the
// allow-listed asset paths resolve without auth.
const swaggerDistURL = "https://unpkg.com/swagger-ui-dist@5"

// handleAPIDoc serves the browsable documentation UI.
func (srv *Server) handleAPIDoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, swaggerUIPage, template.HTMLEscapeString(srv.cfg.AgentLabel))
}

// handleSwaggerAsset redirects a /static/swagger/ asset to its upstream
// distribution.
func (srv *Server) handleSwaggerAsset(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "*")
	if asset == "" || strings.Contains(asset, "..") {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, swaggerDistURL+"/"+asset, http.StatusFound)
}

func (srv *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
